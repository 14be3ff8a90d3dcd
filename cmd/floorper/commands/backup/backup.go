// Package backup provides CLI commands for managing browser profile backups.
package backup

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/floorper/floorper/cmd/floorper/commands/flags"
	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/browser"
	"github.com/floorper/floorper/internal/logging"
)

// Terminal styles. fatih/color disables them when stdout is not a TTY.
var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// Cmd is the root backup command.
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage browser profile backups",
	Long: `Create, inspect, verify, restore and prune browser profile backups.

Each backup is a ZIP archive named <browser>_<profile>_<timestamp>.zip in
the backup directory (~/.floorper/backups by default). Archives can be
referred to by path, by file name, or by file name without ".zip".`,
	Example: `  # Back up every detected Firefox profile
  floorper backup create --browser firefox

  # Back up an arbitrary profile directory
  floorper backup create --path ~/.mozilla/firefox/ab12.default --browser firefox

  # List backups
  floorper backup list

  # Restore the newest Chrome backup, picking interactively
  floorper backup restore --browser chrome --interactive

  # Keep the 3 newest backups of every profile
  floorper backup prune --keep 3

  See Also:
    floorper browsers - List detected browsers and profiles
    floorper doctor   - Check the backup store`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// newManager builds a Manager from the loaded config and global flags.
func newManager(cmd *cobra.Command) *backup.Manager {
	return backup.NewManager(
		backup.WithBackupDir(flags.BackupDir()),
		backup.WithLogger(logging.FromContext(cmd.Context())),
		backup.WithStrictVerify(flags.StrictVerify()),
	)
}

func newLocator(cmd *cobra.Command) *browser.Locator {
	return browser.NewLocator(browser.WithLogger(logging.FromContext(cmd.Context())))
}

// filterFlags are the --browser/--profile pair shared by several commands.
type filterFlags struct {
	browser string
	profile string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.browser, "browser", "b", "", "browser id (firefox, chrome, ...)")
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "profile name")
}

func (f *filterFlags) filter() backup.Filter {
	return backup.Filter{BrowserID: f.browser, ProfileName: f.profile}
}
