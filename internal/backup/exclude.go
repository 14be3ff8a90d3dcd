package backup

import "strings"

// volatileMarkers are matched case-insensitively against base names.
// Files or directories whose name contains any of them are never archived:
// lock files, caches and temp files are rebuilt by the browser and are
// often held open while it runs.
var volatileMarkers = []string{"cache", "lock", "tmp", "temp"}

// IsExcluded reports whether a file or directory name is volatile and must
// be left out of an archive.
func IsExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range volatileMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
