package commands

import (
	"encoding/json"
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/floorper/floorper/cmd/floorper/commands/flags"
	"github.com/floorper/floorper/internal/config"
	"github.com/floorper/floorper/internal/editor"
	"github.com/floorper/floorper/internal/errors"
)

var (
	configShowFormat string
	configInitForce  bool
	configInitPath   string
)

func init() {
	configShowCmd.Flags().StringVarP(&configShowFormat, "format", "o", "yaml", "output format: yaml, json, toml")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "where to write the file (default: --config or the default location)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage floorper configuration",
	Long: `Manage the floorper configuration file.

Settings are read from config.yaml in the current directory or the user
config directory, and can be overridden with FLOORPER_* environment
variables (FLOORPER_BACKUP_DIR, FLOORPER_VERIFY_REHASH, ...).

Without a subcommand, shows the effective configuration.`,
	Example: `  # Show the effective configuration
  floorper config

  # Write a default config file
  floorper config init

  See Also: floorper doctor`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShow(cmd.OutOrStdout(), flags.Config(), configShowFormat)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShow(cmd.OutOrStdout(), flags.Config(), configShowFormat)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  `Get a single configuration value. Nested keys use dot notation.`,
	Example: `  floorper config get backup_dir
  floorper config get verify.rehash`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGet(cmd.OutOrStdout(), args[0])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the config file in use",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		if used := config.Used(); used != "" {
			fmt.Fprintln(w, used)
			return nil
		}
		fmt.Fprintf(w, "%s (not present, defaults in effect)\n", config.DefaultPath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Example: `  floorper config init
  floorper config init --path ./config.yaml --force`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configInitPath
		if path == "" {
			path = flags.ConfigPath()
		}
		if path == "" {
			path = config.DefaultPath()
		}
		return runConfigInit(cmd.OutOrStdout(), path, configInitForce)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the config file in your editor ($EDITOR, then $VISUAL, nano
or vi). A default file is written first if none exists.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := config.Used()
		if path == "" {
			path = flags.ConfigPath()
		}
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.WriteDefault(path, false); err != nil && !errors.Is(err, config.ErrConfigExists) {
			return errors.NewSystemError(err, "")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)
		return editor.Open(path)
	},
}

func runConfigShow(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(cfg), "encoding JSON")
	case "toml":
		return errors.Wrap(toml.NewEncoder(w).Encode(cfg), "encoding TOML")
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "use one of: yaml, json, toml")
	}
}

func runConfigGet(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		return errors.NewUserError(errors.Newf("unknown config key %q", key), "Run: floorper config show")
	}

	switch v := viper.Get(key).(type) {
	case map[string]any:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	default:
		fmt.Fprintln(w, v)
		return nil
	}
}

func runConfigInit(w io.Writer, path string, force bool) error {
	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return errors.NewUserError(err, "use --force to overwrite it")
		}
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}
