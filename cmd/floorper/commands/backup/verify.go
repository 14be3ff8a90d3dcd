package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/floorper/floorper/cmd/floorper/commands/flags"
	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
)

var (
	verifyAll    bool
	verifyStrict bool
	verifyJSON   bool
	verifyJobs   int
	verifyFilter filterFlags
)

func init() {
	verifyFilter.register(verifyCmd)
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "verify every backup")
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "re-hash every file (slower)")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "output in JSON format")
	verifyCmd.Flags().IntVarP(&verifyJobs, "jobs", "j", runtime.NumCPU(), "archives to verify in parallel")
	Cmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify [backup...]",
	Short: "Check backup integrity",
	Long: `Check that every file recorded in a backup's metadata is present in the
archive. With --strict (or verify.rehash in the config file) each file is
also re-hashed and compared with its recorded SHA-256.

Exits with status 1 if any backup is invalid.`,
	Example: `  # Verify one backup
  floorper backup verify firefox_default_20260301_142233

  # Re-hash every Chrome backup
  floorper backup verify --all --browser chrome --strict`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !verifyAll {
			return errors.NewUserError(errors.New("no backups given"), "name a backup or pass --all")
		}
		if verifyStrict {
			flags.SetStrictVerify(true)
		}
		return runVerify(cmd.OutOrStdout(), newManager(cmd), args, verifyFilter.filter(), verifyJobs, verifyJSON)
	},
}

// verifyOutcome pairs an archive with its report for output.
type verifyOutcome struct {
	Path   string               `json:"path"`
	Report *backup.VerifyReport `json:"report"`
}

func runVerify(w io.Writer, mgr *backup.Manager, names []string, filter backup.Filter, jobs int, asJSON bool) error {
	paths, err := verifyTargets(mgr, names, filter)
	if err != nil {
		return err
	}

	outcomes := make([]verifyOutcome, len(paths))
	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, p := range paths {
		g.Go(func() error {
			_, report := mgr.Verify(p)
			outcomes[i] = verifyOutcome{Path: p, Report: report}
			return nil
		})
	}
	_ = g.Wait()

	var invalid int
	for _, o := range outcomes {
		if !o.Report.IsValid {
			invalid++
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcomes); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		for _, o := range outcomes {
			printVerify(w, o)
		}
		if len(outcomes) > 1 {
			fmt.Fprintf(w, "\n%d verified, %d invalid\n", len(outcomes)-invalid, invalid)
		}
	}

	if invalid > 0 {
		return errors.NewExitError(errors.Newf("%d of %d backups failed verification", invalid, len(outcomes)), errors.ExitUser)
	}
	return nil
}

// verifyTargets resolves the archives named on the command line, or every
// archive matching filter when names is empty.
func verifyTargets(mgr *backup.Manager, names []string, filter backup.Filter) ([]string, error) {
	if len(names) == 0 {
		infos, err := mgr.List(filter)
		if err != nil {
			return nil, errors.NewSystemError(err, "check that the backup directory is readable")
		}
		if len(infos) == 0 {
			return nil, errors.NewUserError(backup.ErrNoBackupsFound, "Run: floorper backup list")
		}
		paths := make([]string, len(infos))
		for i, info := range infos {
			paths[i] = info.Path
		}
		return paths, nil
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		p, err := mgr.Resolve(name)
		if err != nil {
			// Verify reports unresolvable paths as missing files.
			p = name
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func printVerify(w io.Writer, o verifyOutcome) {
	r := o.Report
	name := filepath.Base(o.Path)
	if r.IsValid {
		fmt.Fprintf(w, "%s %s: %d files verified\n", green("✓"), name, r.VerifiedFiles)
		return
	}

	if r.Error != "" {
		fmt.Fprintf(w, "%s %s: %s\n", red("✗"), name, r.Error)
		return
	}
	fmt.Fprintf(w, "%s %s: %d missing, %d corrupted\n", red("✗"), name, len(r.MissingFiles), len(r.CorruptedFiles))
	for _, f := range r.MissingFiles {
		fmt.Fprintf(w, "  %s missing %s\n", yellow("!"), f)
	}
	for _, f := range r.CorruptedFiles {
		fmt.Fprintf(w, "  %s corrupted %s\n", red("!"), f)
	}
}
