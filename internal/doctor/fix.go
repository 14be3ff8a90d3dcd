package doctor

import (
	"fmt"
	"os"

	"github.com/floorper/floorper/internal/errors"
)

// Fixer is an optional interface that checks can implement to support auto-remediation.
// Checks that implement Fixer can fix issues they detect when the --fix flag is used.
type Fixer interface {
	// CanFix returns true if this check has fixable issues.
	// Must be called after Run() to check if there are issues that can be fixed.
	CanFix() bool

	// Fix attempts to remediate the issues found by Run().
	// Must be called after Run().
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file or directory that was targeted for fixing.
	Path string `json:"path"`

	// Fixed indicates whether the fix was successfully applied.
	Fixed bool `json:"fixed"`

	// Description explains what was fixed or why it couldn't be fixed.
	Description string `json:"description"`

	// Error contains the error if the fix failed.
	Error error `json:"-"`
}

// PermissionFixer tightens permissions of the backup store and creates it
// when missing. It is embedded in StoreCheck.
type PermissionFixer struct {
	issues []pathIssue
}

// CanFix returns true if there are any fixable issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// Fix attempts to fix all fixable issues.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if issue.Fixable {
			results = append(results, f.fixIssue(issue))
		}
	}
	return results
}

// fixIssue attempts to fix a single issue.
func (f *PermissionFixer) fixIssue(issue pathIssue) FixResult {
	result := FixResult{Path: issue.Path}

	var (
		perm os.FileMode
		err  error
	)
	switch issue.Type {
	case "missing":
		perm = storeDirPerm
		err = os.MkdirAll(issue.Path, perm)
	case "directory":
		perm = storeDirPerm
		err = os.Chmod(issue.Path, perm)
	case "file":
		perm = archivePerm
		err = os.Chmod(issue.Path, perm)
	default:
		result.Description = "unknown type: " + issue.Type
		result.Error = errors.Newf("cannot fix unknown type: %s", issue.Type)
		return result
	}

	if err != nil {
		result.Description = fmt.Sprintf("failed to apply %04o: %v", perm, err)
		result.Error = errors.Wrapf(err, "fixing %s", issue.Path)
		return result
	}

	result.Fixed = true
	if issue.Type == "missing" {
		result.Description = fmt.Sprintf("created with mode %04o", perm)
	} else {
		result.Description = fmt.Sprintf("chmod %04o", perm)
	}
	return result
}

// setIssues stores the issues found by the check for later fixing.
func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	count := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			count++
		}
	}
	return count
}
