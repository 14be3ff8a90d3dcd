package backup

import (
	"cmp"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/floorper/floorper/internal/paths"
)

// maxNameComponent bounds each sanitized component of an archive file name.
const maxNameComponent = 100

// DefaultBackupDir returns the default backup root, ~/.floorper/backups.
// It returns an empty string when the home directory is unknown.
func DefaultBackupDir() string {
	home := paths.AppHome()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "backups")
}

// ArchiveName returns the file name for a backup of the given profile taken
// at timestamp. A positive attempt appends "-<attempt>" before the
// extension to step around an existing archive of the same second.
func ArchiveName(browserID, profileName, timestamp string, attempt int) string {
	base := fmt.Sprintf("%s_%s_%s", sanitizeName(browserID), sanitizeName(profileName), timestamp)
	if attempt > 0 {
		base = fmt.Sprintf("%s-%d", base, attempt)
	}
	return base + ArchiveExt
}

// splitAttempt splits an archive file name into its name without the
// collision suffix and the suffix number (0 when absent).
func splitAttempt(filename string) (string, int) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	i := strings.LastIndexByte(stem, '-')
	if i < 0 {
		return stem, 0
	}
	suffix := stem[i+1:]
	if suffix == "" || strings.Trim(suffix, "0123456789") != "" {
		return stem, 0
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n <= 0 {
		return stem, 0
	}
	return stem[:i], n
}

// compareArchiveNames orders archives of the same second: names ascending,
// and for one name the later collision suffix first, so "-2" precedes "-1"
// which precedes the unsuffixed archive.
func compareArchiveNames(a, b string) int {
	stemA, attemptA := splitAttempt(a)
	stemB, attemptB := splitAttempt(b)
	if c := strings.Compare(stemA, stemB); c != 0 {
		return c
	}
	if c := cmp.Compare(attemptB, attemptA); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// sanitizeName replaces characters that are invalid in file names on common
// filesystems with "_" and truncates overly long names.
func sanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), r < 0x20, r == 0x7f:
			return '_'
		}
		return r
	}, strings.TrimSpace(s))

	if s == "" {
		s = "unnamed"
	}

	if r := []rune(s); len(r) > maxNameComponent {
		s = string(r[:maxNameComponent-3]) + "..."
	}
	return s
}

// entryName returns the archive entry name for a profile-relative path.
func entryName(rel string) string {
	return ProfilePrefix + filepath.ToSlash(rel)
}
