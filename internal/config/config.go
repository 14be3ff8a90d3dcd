// Package config provides configuration management for floorper using Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/floorper/floorper/internal/backup"
	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/internal/paths"
	"github.com/floorper/floorper/pkg/fileutil"
)

// EnvPrefix prefixes environment overrides: FLOORPER_BACKUP_DIR,
// FLOORPER_VERIFY_REHASH, ...
const EnvPrefix = "FLOORPER"

// ErrConfigExists is returned by WriteDefault when the file already exists.
var ErrConfigExists = errors.New("config file already exists")

// Config represents the top-level configuration structure.
type Config struct {
	Version        int          `mapstructure:"version" yaml:"version" json:"version" toml:"version"`
	BackupDir      string       `mapstructure:"backup_dir" yaml:"backup_dir" json:"backup_dir" toml:"backup_dir"`
	Retention      int          `mapstructure:"retention" yaml:"retention" json:"retention" toml:"retention"`
	Verify         VerifyConfig `mapstructure:"verify" yaml:"verify" json:"verify" toml:"verify"`
	DefaultBrowser string       `mapstructure:"default_browser" yaml:"default_browser,omitempty" json:"default_browser,omitempty" toml:"default_browser,omitempty"`
}

// VerifyConfig controls archive verification.
type VerifyConfig struct {
	// Rehash re-hashes archived files against their recorded digests.
	Rehash bool `mapstructure:"rehash" yaml:"rehash" json:"rehash" toml:"rehash"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Version:   1,
		BackupDir: backup.DefaultBackupDir(),
		Retention: backup.DefaultRetentionCount,
	}
}

// DefaultPath returns <xdg-config>/floorper/config.yaml.
func DefaultPath() string {
	return filepath.Join(paths.ConfigDir(), "config.yaml")
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	d := Defaults()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("backup_dir", d.BackupDir)
	viper.SetDefault("retention", d.Retention)
	viper.SetDefault("verify.rehash", d.Verify.Rehash)
	viper.SetDefault("default_browser", "")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches the default locations and falls back to
// defaults when no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load: defaults apply.
		case errors.As(err, &notFound), os.IsNotExist(err):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrInvalidConfig)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}
	cfg.BackupDir = paths.ExpandHome(cfg.BackupDir)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errs[0], "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// Used returns the config file Viper read, or "" when defaults are in effect.
func Used() string {
	return viper.ConfigFileUsed()
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.Wrapf(ErrConfigExists, "%s", path)
		}
	}

	if err := paths.EnsureDir(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	return fileutil.AtomicWriteYAML(path, Defaults(), 0o600)
}
