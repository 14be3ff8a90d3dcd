package backup

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/floorper/floorper/cmd/floorper/commands/flags"
	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
)

var (
	pruneFilter filterFlags
	pruneKeep   int
	pruneDryRun bool
	pruneJSON   bool
)

func init() {
	pruneFilter.register(pruneCmd)
	pruneCmd.Flags().IntVarP(&pruneKeep, "keep", "k", -1, "backups to keep per profile (default: retention from config)")
	pruneCmd.Flags().BoolVarP(&pruneDryRun, "dry-run", "n", false, "show what would be deleted")
	pruneCmd.Flags().BoolVar(&pruneJSON, "json", false, "output in JSON format")
	Cmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old backups",
	Long: `Delete all but the newest backups of every browser profile.

The number kept defaults to the retention setting of the config file.`,
	Example: `  # Apply the configured retention
  floorper backup prune

  # Keep only the newest Firefox backup, previewing first
  floorper backup prune --browser firefox --keep 1 --dry-run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		keep := pruneKeep
		if !cmd.Flags().Changed("keep") {
			keep = flags.Config().Retention
		}
		return runPrune(cmd.OutOrStdout(), newManager(cmd), pruneFilter.filter(), keep, pruneDryRun, pruneJSON)
	},
}

func runPrune(w io.Writer, mgr *backup.Manager, filter backup.Filter, keep int, dryRun, asJSON bool) error {
	if keep < 0 {
		return errors.NewUserError(errors.Newf("invalid --keep %d", keep), "keep must be zero or more")
	}

	var (
		removed []backup.Info
		err     error
	)
	if dryRun {
		removed, err = pruneCandidates(mgr, filter, keep)
	} else {
		removed, err = mgr.Prune(filter, keep)
	}
	if removed == nil {
		removed = []backup.Info{}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(removed); encErr != nil {
			return errors.Wrap(encErr, "encoding JSON")
		}
	} else {
		verb := "deleted"
		if dryRun {
			verb = "would delete"
		}
		for _, info := range removed {
			fmt.Fprintf(w, "%s %s %s\n", gray("-"), verb, info.Filename)
		}
		if len(removed) == 0 {
			fmt.Fprintln(w, "Nothing to prune.")
		} else {
			fmt.Fprintf(w, "\n%s %d backup(s), keeping %d per profile\n", verb, len(removed), keep)
		}
	}

	if err != nil {
		return errors.NewSystemError(err, "check permissions on the backup directory")
	}
	return nil
}

// pruneCandidates lists what Prune would delete without deleting it.
func pruneCandidates(mgr *backup.Manager, filter backup.Filter, keep int) ([]backup.Info, error) {
	infos, err := mgr.List(filter)
	if err != nil {
		return nil, err
	}
	seen := make(map[[2]string]int)
	var out []backup.Info
	for _, info := range infos {
		k := [2]string{info.BrowserID, info.ProfileName}
		seen[k]++
		if seen[k] > keep {
			out = append(out, info)
		}
	}
	return out, nil
}
