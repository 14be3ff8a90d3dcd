// Package commands implements the CLI commands for floorper.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/floorper/floorper/cmd"
	"github.com/floorper/floorper/cmd/floorper/commands/backup"
	"github.com/floorper/floorper/cmd/floorper/commands/flags"
	internalbackup "github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/config"
	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/internal/logging"
)

var (
	// verbosity holds the count of -v flags.
	verbosity int

	quiet     bool
	logFormat string
	logFile   string

	configPath string
	backupDir  string
)

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default: <config dir>/floorper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "",
		"backup directory (overrides backup_dir)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("floorper version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	internalbackup.Version = cmd.Version

	rootCmd.AddCommand(backup.Cmd)
}

func initConfig() {
	config.Init()
	flags.SetConfigPath(configPath)
	flags.SetBackupDir(backupDir)

	cfg, err := config.Load(configPath)
	configLoadErr = err
	if err == nil {
		flags.SetConfig(cfg)
	}
}

var rootCmd = &cobra.Command{
	Use:   "floorper",
	Short: "Back up and restore web browser profiles",
	Long: `floorper backs up browser profiles (Firefox, Floorp, LibreWolf, Chrome,
Brave, Edge, ...) into self-describing ZIP archives and restores them.

Each archive records every file with its SHA-256 so a backup can be
verified before it is restored. Backups live in ~/.floorper/backups unless
backup_dir or --backup-dir says otherwise.`,
	Example: `  # See which browsers and profiles floorper found
  floorper browsers

  # Back up every Firefox profile
  floorper backup create --browser firefox

  # Restore the newest Firefox backup to where it came from
  floorper backup restore --browser firefox

  # Check the installation
  floorper doctor

  See Also: floorper backup, floorper config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// closeLog releases the --log-file sink opened by setupLogging.
var closeLog = func() error { return nil }

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	logger, closeFn, err := logging.New(logging.Config{
		Verbosity: verbosity,
		Quiet:     quiet,
		Format:    logging.Format(logFormat),
		Output:    cmd.ErrOrStderr(),
		File:      logFile,
	})
	if err != nil {
		return errors.NewUserError(err, "check the --log-file path")
	}
	_ = closeLog()
	closeLog = closeFn

	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig fails commands that need a valid configuration when loading
// it failed. help, version, doctor, config init and config edit stay usable.
func checkConfig(cmd *cobra.Command) error {
	if configLoadErr == nil {
		return nil
	}
	switch cmd.Name() {
	case "help", "version", "doctor", "init", "edit":
		return nil
	}
	return errors.NewConfigError(configLoadErr)
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := rootCmd.Execute()
	_ = closeLog()
	if err == nil {
		return nil
	}

	if !errors.Is(err, errDoctorWarnings) && !errors.Is(err, errDoctorErrors) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *errors.ExitError
		if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", exitErr.Suggestion)
		}
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
		}
	}

	return errors.Wrap(err, "executing root command")
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return errors.ExitSuccess
	}
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return errors.ExitUser
}
