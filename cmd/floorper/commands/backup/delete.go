package backup

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
)

func init() {
	Cmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:     "delete <backup>...",
	Aliases: []string{"rm"},
	Short:   "Delete backups",
	Example: `  floorper backup delete firefox_default_20260301_142233
  floorper backup rm ~/.floorper/backups/chrome_Default_20260301_142233.zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd.OutOrStdout(), newManager(cmd), args)
	},
}

func runDelete(w io.Writer, mgr *backup.Manager, names []string) error {
	var failed int
	for _, name := range names {
		p, err := mgr.Resolve(name)
		if err == nil {
			err = mgr.Delete(p)
		}
		if err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", red("✗"), name, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "%s deleted %s\n", green("✓"), filepath.Base(p))
	}

	if failed > 0 {
		return errors.NewUserError(errors.Newf("%d of %d backups could not be deleted", failed, len(names)), "Run: floorper backup list")
	}
	return nil
}
