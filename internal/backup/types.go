package backup

import (
	"encoding/json"
	"time"

	"github.com/floorper/floorper/internal/errors"
)

// MetadataVersion is the metadata format version written by this package.
// Archives without a version field predate versioning and are read as 0.
const MetadataVersion = 1

// Archive layout constants.
const (
	// MetadataEntry is the archive entry holding the JSON metadata record.
	MetadataEntry = "metadata.json"

	// ProfilePrefix is the archive directory holding the profile tree.
	ProfilePrefix = "profile/"

	// ArchiveExt is the file extension of backup archives.
	ArchiveExt = ".zip"

	// TimestampLayout formats the second-granularity timestamp used in
	// archive names and the metadata timestamp field.
	TimestampLayout = "20060102_150405"
)

// DefaultRetentionCount is the default number of archives Prune keeps per profile.
const DefaultRetentionCount = 5

// Sentinel errors for backup operations.
var (
	// ErrNotFound indicates a profile directory or archive does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoBackupsFound indicates no archive matched a lookup.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupFailed indicates the archive could not be written.
	ErrBackupFailed = errors.New("backup failed")

	// ErrCorruptArchive indicates the archive cannot be opened or has no
	// parseable metadata entry.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrVerificationFailed indicates Restore refused an archive that did
	// not pass verification.
	ErrVerificationFailed = errors.New("backup verification failed")

	// ErrNoTarget indicates Restore has neither a target path nor a
	// recorded source path.
	ErrNoTarget = errors.New("no restore target")

	// ErrRestoreFailed indicates one or more files could not be restored.
	ErrRestoreFailed = errors.New("restore failed")
)

// Metadata is the record stored as metadata.json in every archive.
type Metadata struct {
	// Version is the metadata format version.
	Version int `json:"version" yaml:"version" toml:"version"`

	// BrowserID identifies the browser the profile belongs to (firefox, chrome, ...).
	BrowserID string `json:"browser_id" yaml:"browser_id" toml:"browser_id"`

	// ProfileName is the profile's display name.
	ProfileName string `json:"profile_name" yaml:"profile_name" toml:"profile_name"`

	// Timestamp is the creation time in TimestampLayout.
	Timestamp string `json:"timestamp" yaml:"timestamp" toml:"timestamp"`

	// SourcePath is the absolute path of the backed-up profile directory.
	SourcePath string `json:"source_path" yaml:"source_path" toml:"source_path"`

	// CreatedAt is the creation time as an ISO-8601 string.
	CreatedAt string `json:"created_at" yaml:"created_at" toml:"created_at"`

	// Files lists the archived files in archive order.
	Files []FileEntry `json:"files" yaml:"files" toml:"files"`

	// Summary aggregates Files.
	Summary Summary `json:"summary" yaml:"summary" toml:"summary"`

	// FloorperVersion is the version of floorper that wrote the archive.
	FloorperVersion string `json:"floorper_version,omitempty" yaml:"floorper_version,omitempty" toml:"floorper_version,omitempty"`
}

// FileEntry describes one archived file.
//
// The relative path is written under the key "path", the key existing
// floorper archives use on disk, so older releases can read new archives.
// Readers also accept "relative_path" (see UnmarshalJSON).
type FileEntry struct {
	// Path is the slash-separated path relative to the profile root.
	Path string `json:"path" yaml:"path" toml:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size" toml:"size"`

	// Hash is the hex-encoded SHA-256 of the file contents.
	Hash string `json:"hash" yaml:"hash" toml:"hash"`
}

// UnmarshalJSON accepts "relative_path" as an alias for "path".
func (e *FileEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path         string `json:"path"`
		RelativePath string `json:"relative_path"`
		Size         int64  `json:"size"`
		Hash         string `json:"hash"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Path = raw.Path
	if e.Path == "" {
		e.Path = raw.RelativePath
	}
	e.Size = raw.Size
	e.Hash = raw.Hash
	return nil
}

// Summary aggregates an archive's file list.
type Summary struct {
	FileCount int   `json:"file_count" yaml:"file_count" toml:"file_count"`
	TotalSize int64 `json:"total_size" yaml:"total_size" toml:"total_size"`
}

// summarize computes the Summary of files.
func summarize(files []FileEntry) Summary {
	s := Summary{FileCount: len(files)}
	for _, f := range files {
		s.TotalSize += f.Size
	}
	return s
}

// createdAtLayouts are tried in order by CreatedTime. The last covers
// archives written without a zone offset.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// CreatedTime parses CreatedAt. The boolean is false when CreatedAt is
// empty or in an unrecognized format.
func (m *Metadata) CreatedTime() (time.Time, bool) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, m.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Info summarizes one archive for listing.
type Info struct {
	Path        string  `json:"path"`
	Filename    string  `json:"filename"`
	BrowserID   string  `json:"browser_id"`
	ProfileName string  `json:"profile_name"`
	Timestamp   string  `json:"timestamp"`
	CreatedAt   string  `json:"created_at"`
	Summary     Summary `json:"summary"`
}

// Filter restricts List to archives whose metadata matches every non-empty field.
type Filter struct {
	BrowserID   string
	ProfileName string
}

func (f Filter) match(m *Metadata) bool {
	if f.BrowserID != "" && m.BrowserID != f.BrowserID {
		return false
	}
	if f.ProfileName != "" && m.ProfileName != f.ProfileName {
		return false
	}
	return true
}

// FileOutcome records a file that could not be archived or restored.
type FileOutcome struct {
	// Path is the slash-separated path relative to the profile root.
	Path string `json:"path"`

	// Err is the failure. It is nil for files that succeeded.
	Err error `json:"-"`
}

// MarshalJSON renders Err as a string.
func (o FileOutcome) MarshalJSON() ([]byte, error) {
	var msg string
	if o.Err != nil {
		msg = o.Err.Error()
	}
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error,omitempty"`
	}{o.Path, msg})
}

// CreateResult is returned by Manager.Create.
type CreateResult struct {
	// Path is the absolute path of the new archive.
	Path string `json:"path"`

	// Metadata is the record written into the archive.
	Metadata *Metadata `json:"metadata"`

	// Excluded counts files skipped by the volatile-name rules.
	Excluded int `json:"excluded"`

	// Skipped lists files that failed to archive.
	Skipped []FileOutcome `json:"skipped"`
}

// VerifyReport is produced by Manager.Verify.
type VerifyReport struct {
	Metadata       *Metadata `json:"metadata,omitempty"`
	VerifiedFiles  int       `json:"verified_files"`
	MissingFiles   []string  `json:"missing_files"`
	CorruptedFiles []string  `json:"corrupted_files"`
	IsValid        bool      `json:"is_valid"`

	// Error is set when the archive could not be examined at all.
	Error string `json:"error,omitempty"`
}

// RestoreResult is returned by Manager.Restore.
type RestoreResult struct {
	// Target is the directory the archive was restored into.
	Target string `json:"target"`

	// Restored counts files written to Target.
	Restored int `json:"restored"`

	// Skipped counts files left untouched because merge mode kept the
	// existing destination.
	Skipped int `json:"skipped"`

	// Ignored counts profile entries with no metadata record.
	Ignored int `json:"ignored"`

	// Failed lists files that could not be written.
	Failed []FileOutcome `json:"failed"`
}
