package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
)

var (
	listFilter filterFlags
	listJSON   bool
)

func init() {
	listFilter.register(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups",
	Long: `List the backups in the backup directory, newest first.

Archives whose metadata cannot be read are skipped with a warning; run
"floorper backup verify --all" to examine them.`,
	Example: `  # List all backups
  floorper backup list

  # List Firefox backups as JSON
  floorper backup list --browser firefox --json

  See Also:
    floorper backup show   - Show one backup in detail
    floorper backup verify - Check backup integrity`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd.OutOrStdout(), newManager(cmd), listFilter.filter(), listJSON)
	},
}

func runList(w io.Writer, mgr *backup.Manager, filter backup.Filter, asJSON bool) error {
	infos, err := mgr.List(filter)
	if err != nil {
		return errors.NewSystemError(err, "check that the backup directory is readable")
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(infos), "encoding JSON")
	}

	if len(infos) == 0 {
		fmt.Fprintf(w, "No backups in %s\n", mgr.Dir())
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Create one with: floorper backup create --browser <id>")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		bold("NAME"), bold("BROWSER"), bold("PROFILE"), bold("CREATED"), bold("FILES"), bold("SIZE"))
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			info.Filename, info.BrowserID, info.ProfileName, createdLabel(info),
			info.Summary.FileCount, humanize.IBytes(uint64(info.Summary.TotalSize)))
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "writing table")
	}

	fmt.Fprintf(w, "\n%d backup(s) in %s\n", len(infos), gray(mgr.Dir()))
	return nil
}

// createdLabel renders an archive's creation time relative to now, falling
// back to the raw timestamp.
func createdLabel(info backup.Info) string {
	md := backup.Metadata{CreatedAt: info.CreatedAt}
	if t, ok := md.CreatedTime(); ok {
		return humanize.Time(t)
	}
	return info.Timestamp
}
