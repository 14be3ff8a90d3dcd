// Package config loads floorper's own configuration.
//
// # Configuration File
//
// The configuration file lives at <xdg-config>/floorper/config.yaml
// (~/.config/floorper/config.yaml on Linux); a config.yaml in the working
// directory takes precedence. Every key is optional:
//
//	version: 1
//	backup_dir: ~/.floorper/backups
//	retention: 5            # archives kept per profile by "backup prune"
//	verify:
//	  rehash: false         # re-hash every file when verifying
//	default_browser: firefox
//
// Each key can be overridden from the environment with the FLOORPER_
// prefix, dots becoming underscores: FLOORPER_BACKUP_DIR,
// FLOORPER_VERIFY_REHASH.
//
// # Loading Configuration
//
// Call [Init] once, then [Load] with an explicit path or "" to search the
// default locations:
//
//	config.Init()
//	cfg, err := config.Load("")
//
// [Validate] reports every invalid field at once. [WriteDefault] creates a
// starter file for "floorper config init".
package config
