package doctor

import (
	"fmt"

	"github.com/floorper/floorper/internal/backup"
)

// ArchiveCheck verifies every archive in the backup store.
type ArchiveCheck struct {
	mgr *backup.Manager
}

var _ Check = (*ArchiveCheck)(nil)

// NewArchiveCheck creates a check that verifies the archives managed by mgr.
func NewArchiveCheck(mgr *backup.Manager) *ArchiveCheck {
	return &ArchiveCheck{mgr: mgr}
}

// Name returns the unique identifier for this check.
func (c *ArchiveCheck) Name() string {
	return "archive-integrity"
}

// Category returns the grouping for this check.
func (c *ArchiveCheck) Category() string {
	return "archives"
}

// Run verifies each listed archive.
func (c *ArchiveCheck) Run() *CheckResult {
	infos, err := c.mgr.List(backup.Filter{})
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  fmt.Sprintf("cannot list backups: %v", err),
		}
	}

	if len(infos) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no backups to verify",
		}
	}

	var invalid []map[string]any
	for _, info := range infos {
		ok, report := c.mgr.Verify(info.Path)
		if ok {
			continue
		}
		entry := map[string]any{
			"archive": info.Filename,
			"missing": len(report.MissingFiles),
		}
		if len(report.CorruptedFiles) > 0 {
			entry["corrupted"] = len(report.CorruptedFiles)
		}
		if report.Error != "" {
			entry["error"] = report.Error
		}
		invalid = append(invalid, entry)
	}

	details := map[string]any{
		"total":   len(infos),
		"invalid": len(invalid),
	}

	if len(invalid) > 0 {
		details["archives"] = invalid
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  fmt.Sprintf("%d of %d backups failed verification", len(invalid), len(infos)),
			Details:  details,
			FixHint:  "inspect with: floorper backup verify <name>",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("all %d backups verified", len(infos)),
		Details:  details,
	}
}
