package doctor

import (
	"fmt"
	"os"

	"github.com/floorper/floorper/internal/config"
)

// ConfigCheck reports whether floorper's configuration loads and validates.
type ConfigCheck struct {
	path string
	load func(path string) (*config.Config, error)
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a check of the config file at path. An empty path
// means the default search locations.
func NewConfigCheck(path string) *ConfigCheck {
	return &ConfigCheck{path: path, load: config.Load}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run loads the configuration and reports the outcome.
func (c *ConfigCheck) Run() *CheckResult {
	cfg, err := c.load(c.path)
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  err.Error(),
			Details:  map[string]any{"path": c.path},
			FixHint:  "fix the file or regenerate it with: floorper config init --force",
		}
	}

	used := config.Used()
	if used == "" {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no config file found; using defaults",
			Details:  map[string]any{"default_path": config.DefaultPath()},
			FixHint:  "create one with: floorper config init",
		}
	}

	details := map[string]any{
		"path":       used,
		"backup_dir": cfg.BackupDir,
		"retention":  cfg.Retention,
	}
	if info, err := os.Stat(used); err == nil && info.Mode().Perm()&0o022 != 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("config file is writable by other users (mode %s)", formatPermissions(info.Mode())),
			Details:  details,
			FixHint:  "chmod 600 " + used,
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "config loaded from " + used,
		Details:  details,
	}
}
