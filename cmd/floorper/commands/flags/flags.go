// Package flags provides shared flag and config accessors for CLI commands.
// This package exists to avoid import cycles between the root command
// and noun subpackages (backup, ...).
package flags

import "github.com/floorper/floorper/internal/config"

var (
	loaded       *config.Config
	configPath   string
	backupDir    string
	verifyStrict bool
)

// Config returns the loaded configuration, or the defaults when none was
// loaded.
func Config() *config.Config {
	if loaded == nil {
		return config.Defaults()
	}
	return loaded
}

// SetConfig stores the configuration loaded by the root command.
func SetConfig(cfg *config.Config) {
	loaded = cfg
}

// ConfigPath returns the value of the --config flag.
func ConfigPath() string {
	return configPath
}

// SetConfigPath sets the --config flag value.
func SetConfigPath(path string) {
	configPath = path
}

// BackupDir returns the --backup-dir flag value, falling back to the
// configured backup_dir.
func BackupDir() string {
	if backupDir != "" {
		return backupDir
	}
	return Config().BackupDir
}

// SetBackupDir sets the --backup-dir flag value.
func SetBackupDir(dir string) {
	backupDir = dir
}

// StrictVerify reports whether archives should be re-hashed on verify,
// either from --strict or verify.rehash.
func StrictVerify() bool {
	return verifyStrict || Config().Verify.Rehash
}

// SetStrictVerify sets the --strict flag value.
func SetStrictVerify(strict bool) {
	verifyStrict = strict
}
