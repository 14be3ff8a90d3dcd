package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
)

var (
	restoreFilter      filterFlags
	restoreTarget      string
	restoreMerge       bool
	restoreInteractive bool
	restoreNoSafeguard bool
	restoreJSON        bool
)

func init() {
	restoreFilter.register(restoreCmd)
	restoreCmd.Flags().StringVarP(&restoreTarget, "target", "t", "", "directory to restore into (default: the backed-up path)")
	restoreCmd.Flags().BoolVar(&restoreMerge, "merge", false, "keep files that already exist in the target")
	restoreCmd.Flags().BoolVarP(&restoreInteractive, "interactive", "i", false, "pick the backup with a fuzzy finder")
	restoreCmd.Flags().BoolVar(&restoreNoSafeguard, "no-safeguard", false, "do not back up the target before overwriting it")
	restoreCmd.Flags().BoolVar(&restoreJSON, "json", false, "output in JSON format")
	Cmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup]",
	Short: "Restore a backup into a profile directory",
	Long: `Restore a backup into a profile directory.

Without a backup name the newest backup matching --browser/--profile is
restored, or one is picked with --interactive. The archive is verified
first and nothing is written if verification fails.

By default existing files are overwritten, and the current contents of the
target are backed up first. Use --merge to keep existing files instead.
Close the browser before restoring.`,
	Example: `  # Restore a specific backup to where it came from
  floorper backup restore firefox_default_20260301_142233

  # Restore the newest Brave backup into another directory
  floorper backup restore --browser brave --target /tmp/brave-profile

  # Pick interactively and merge
  floorper backup restore -i --merge`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) == 1 {
			name = args[0]
		}
		opts := restoreOptions{
			name:        name,
			filter:      restoreFilter.filter(),
			target:      restoreTarget,
			merge:       restoreMerge,
			interactive: restoreInteractive,
			safeguard:   !restoreNoSafeguard,
			asJSON:      restoreJSON,
		}
		return runRestore(cmd.OutOrStdout(), newManager(cmd), opts)
	},
}

type restoreOptions struct {
	name        string
	filter      backup.Filter
	target      string
	merge       bool
	interactive bool
	safeguard   bool
	asJSON      bool
}

// restoreOutput is the JSON shape of a restore.
type restoreOutput struct {
	Archive  string                `json:"archive"`
	Snapshot string                `json:"snapshot,omitempty"`
	Result   *backup.RestoreResult `json:"result"`
}

func runRestore(w io.Writer, mgr *backup.Manager, opts restoreOptions) error {
	archivePath, err := pickArchive(mgr, opts)
	if err != nil {
		if errors.Is(err, errPickerAborted) {
			return nil
		}
		return err
	}

	// Verify before the safeguard so a refused restore leaves no snapshot.
	md, err := mgr.CheckRestorable(archivePath)
	if err != nil {
		return errors.NewUserError(err, "Run: floorper backup verify "+filepath.Base(archivePath))
	}

	target := opts.target
	if target == "" {
		target = md.SourcePath
	}

	var snapshot string
	if opts.safeguard && !opts.merge {
		snapshot, err = backup.NewSafeguard(mgr).EnsureBackedUp(target, md.BrowserID, md.ProfileName)
		if err != nil {
			return errors.NewSystemError(err, "use --no-safeguard to restore without a snapshot")
		}
	}

	res, err := mgr.Restore(archivePath, opts.target, opts.merge)
	if res == nil && err != nil {
		switch {
		case errors.Is(err, backup.ErrVerificationFailed), errors.Is(err, backup.ErrNoTarget):
			return errors.NewUserError(err, "Run: floorper backup verify "+filepath.Base(archivePath))
		default:
			return errors.NewSystemError(err, "")
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(restoreOutput{Archive: archivePath, Snapshot: snapshot, Result: res}); encErr != nil {
			return errors.Wrap(encErr, "encoding JSON")
		}
	} else {
		printRestore(w, archivePath, snapshot, res)
	}

	if err != nil {
		return errors.NewSystemError(err, "check permissions on the target directory")
	}
	return nil
}

// pickArchive resolves the archive to restore: the named one, one chosen
// interactively, or the newest matching the filter.
func pickArchive(mgr *backup.Manager, opts restoreOptions) (string, error) {
	if opts.name != "" {
		p, err := mgr.Resolve(opts.name)
		if err != nil {
			return "", errors.NewUserError(err, "Run: floorper backup list")
		}
		return p, nil
	}

	if opts.interactive {
		infos, err := mgr.List(opts.filter)
		if err != nil {
			return "", errors.NewSystemError(err, "check that the backup directory is readable")
		}
		if len(infos) == 0 {
			return "", errors.NewUserError(backup.ErrNoBackupsFound, "Run: floorper backup create")
		}
		info, err := selectArchive(infos)
		if err != nil {
			return "", err
		}
		return info.Path, nil
	}

	latest, err := mgr.Latest(opts.filter)
	if err != nil {
		return "", errors.NewUserError(err, "Run: floorper backup create")
	}
	return latest.Path, nil
}

func printRestore(w io.Writer, archivePath, snapshot string, res *backup.RestoreResult) {
	if snapshot != "" {
		fmt.Fprintf(w, "%s previous contents saved to %s\n", gray("•"), filepath.Base(snapshot))
	}

	mark := green("✓")
	if len(res.Failed) > 0 {
		mark = yellow("!")
	}
	fmt.Fprintf(w, "%s restored %s into %s\n", mark, bold(filepath.Base(archivePath)), res.Target)
	fmt.Fprintf(w, "  %d restored, %d kept, %d failed\n", res.Restored, res.Skipped, len(res.Failed))
	if res.Ignored > 0 {
		fmt.Fprintf(w, "  %d unrecorded archive entries ignored\n", res.Ignored)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(w, "  %s %s: %v\n", red("✗"), f.Path, f.Err)
	}
}
