package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/floorper/floorper/internal/backup"
)

// Target permissions for the backup store. Archives carry cookies and
// saved logins.
const (
	storeDirPerm os.FileMode = 0o700
	archivePerm  os.FileMode = 0o600
)

// StoreCheck validates the backup root: that it is a writable directory
// and that neither it nor its archives are readable by other users.
type StoreCheck struct {
	PermissionFixer

	dir string
}

var (
	_ Check = (*StoreCheck)(nil)
	_ Fixer = (*StoreCheck)(nil)
)

// NewStoreCheck creates a check of the backup root dir.
func NewStoreCheck(dir string) *StoreCheck {
	return &StoreCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *StoreCheck) Name() string {
	return "backup-store"
}

// Category returns the grouping for this check.
func (c *StoreCheck) Category() string {
	return "storage"
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file", "directory" or "missing"
	Problem     string
	Severity    Severity
	Permissions string
	Fixable     bool
	FixHint     string
}

// Run executes the backup store check.
func (c *StoreCheck) Run() *CheckResult {
	issues, archives := c.inspect()
	c.setIssues(issues)
	return c.buildResult(issues, archives)
}

func (c *StoreCheck) inspect() ([]pathIssue, int) {
	if c.dir == "" {
		return []pathIssue{{
			Type:     "directory",
			Problem:  "backup directory is not configured",
			Severity: SeverityError,
			FixHint:  "set backup_dir in the config file",
		}}, 0
	}

	info, err := os.Stat(c.dir)
	if os.IsNotExist(err) {
		return []pathIssue{{
			Path:     c.dir,
			Type:     "missing",
			Problem:  "backup directory does not exist yet",
			Severity: SeverityInfo,
			Fixable:  true,
			FixHint:  "mkdir -m 700 " + c.dir,
		}}, 0
	}
	if err != nil {
		return []pathIssue{{
			Path:     c.dir,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		}}, 0
	}
	if !info.IsDir() {
		return []pathIssue{{
			Path:     c.dir,
			Type:     "directory",
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		}}, 0
	}

	var issues []pathIssue
	if !isDirectoryWritable(c.dir) {
		issues = append(issues, pathIssue{
			Path:        c.dir,
			Type:        "directory",
			Problem:     "directory is not writable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + c.dir,
		})
	}

	// Unix permissions don't apply on Windows.
	checkPerms := runtime.GOOS != "windows"
	if checkPerms && info.Mode().Perm()&0o077 != 0 {
		issues = append(issues, pathIssue{
			Path:        c.dir,
			Type:        "directory",
			Problem:     "backup directory is accessible by other users",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 700 " + c.dir,
		})
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		issues = append(issues, pathIssue{
			Path:     c.dir,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot read directory: %v", err),
			Severity: SeverityError,
		})
		return issues, 0
	}

	var archives int
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), backup.ArchiveExt) {
			continue
		}
		archives++
		if !checkPerms {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.Mode().Perm()&0o077 != 0 {
			p := filepath.Join(c.dir, e.Name())
			issues = append(issues, pathIssue{
				Path:        p,
				Type:        "file",
				Problem:     "archive is readable by other users",
				Severity:    SeverityWarning,
				Permissions: formatPermissions(fi.Mode()),
				Fixable:     true,
				FixHint:     "chmod 600 " + p,
			})
		}
	}

	return issues, archives
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *StoreCheck) buildResult(issues []pathIssue, archives int) *CheckResult {
	details := map[string]any{
		"backup_dir": c.dir,
		"archives":   archives,
	}

	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("backup directory is writable and private (%d archives)", archives),
			Details:  details,
		}
	}

	highest := SeverityPass
	issueDetails := make([]map[string]any, 0, len(issues))
	var fixHints []string
	fixable := false
	for _, issue := range issues {
		highest = max(highest, issue.Severity)

		m := map[string]any{
			"path":     issue.Path,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			m["permissions"] = issue.Permissions
		}
		issueDetails = append(issueDetails, m)

		if issue.FixHint != "" {
			fixHints = append(fixHints, issue.FixHint)
		}
		fixable = fixable || issue.Fixable
	}
	details["issues"] = issueDetails

	message := issues[0].Problem
	if len(issues) > 1 {
		message = fmt.Sprintf("found %d issues in the backup directory", len(issues))
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   highest,
		Message:  message,
		Details:  details,
		Fixable:  fixable,
		FixHint:  strings.Join(fixHints, "; "),
	}
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) bool {
	f, err := os.CreateTemp(path, ".floorper-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}
