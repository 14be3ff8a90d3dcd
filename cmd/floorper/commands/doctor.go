package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/floorper/floorper/cmd/floorper/commands/flags"
	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/browser"
	"github.com/floorper/floorper/internal/doctor"
	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/internal/logging"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"create the backup directory and tighten permissions where possible")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and backup store issues",
	Long: `Run diagnostic checks on the floorper configuration, the backup
directory, the archives in it and the detected browsers.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	PreRunE: validateDoctorFlags,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mgr := backup.NewManager(
			backup.WithBackupDir(flags.BackupDir()),
			backup.WithLogger(logging.FromContext(cmd.Context())),
			backup.WithStrictVerify(flags.StrictVerify()),
		)
		loc := browser.NewLocator(browser.WithLogger(logging.FromContext(cmd.Context())))

		runner := doctor.NewRunner()
		runner.AddCheck(doctor.NewConfigCheck(flags.ConfigPath()))
		runner.AddCheck(doctor.NewStoreCheck(flags.BackupDir()))
		runner.AddCheck(doctor.NewArchiveCheck(mgr))
		runner.AddCheck(doctor.NewBrowserCheck(loc))

		return runDoctor(cmd.OutOrStdout(), runner)
	},
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{doctorJSON, doctorQuiet, doctorVerbose} {
		if set {
			count++
		}
	}
	if count > 1 {
		return errors.NewUserError(errors.New("flags --json, --quiet, and --verbose are mutually exclusive"), "")
	}
	return nil
}

func runDoctor(w io.Writer, runner *doctor.Runner) error {
	report := runner.Run()

	if doctorFix {
		fixes := applyFixes(runner)
		if len(fixes) > 0 {
			if !doctorQuiet && !doctorJSON {
				printFixes(w, fixes)
			}
			// Re-run so the report reflects the repaired state.
			report = runner.Run()
		}
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

// applyFixes runs every registered check that can repair what it found.
func applyFixes(runner *doctor.Runner) []doctor.FixResult {
	var results []doctor.FixResult
	for _, check := range runner.Checks() {
		fixer, ok := check.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		results = append(results, fixer.Fix()...)
	}
	return results
}

func printFixes(w io.Writer, fixes []doctor.FixResult) {
	for _, f := range fixes {
		if f.Fixed {
			fmt.Fprintf(w, "✓ fixed %s: %s\n", f.Path, f.Description)
			continue
		}
		fmt.Fprintf(w, "✗ could not fix %s: %s\n", f.Path, f.Description)
	}
	fmt.Fprintln(w)
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	outputDoctorText(w, report)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) {
	// In normal mode, show only errors and warnings
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
		if result.Fixable && problem && !doctorFix {
			fmt.Fprintln(w, "  run with --fix to repair")
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// errDoctorWarnings signals exit code 1 without printing an error.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors signals exit code 2 without printing an error.
var errDoctorErrors = errors.New("errors found")
