package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/juju/clock"

	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/internal/paths"
	"github.com/floorper/floorper/pkg/fileutil"
)

// Version is recorded as floorper_version in new archives. The CLI sets it
// to the build version on startup.
var Version = "dev"

// maxNameAttempts bounds the "-N" suffixes tried when archives collide.
const maxNameAttempts = 100

// File permissions for the backup store. Archives hold browser data such
// as cookies and saved logins, so they are private to the user.
const (
	dirPerm     = 0o700
	archivePerm = 0o600
)

// Manager creates, lists, verifies, restores and deletes profile backups
// stored under a single backup root.
type Manager struct {
	rootDir      string
	clock        clock.Clock
	logger       *slog.Logger
	strictVerify bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithClock sets the clock used for archive timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger for per-file and per-operation events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStrictVerify makes Verify re-hash every archived file against its
// recorded digest in addition to checking presence.
func WithStrictVerify(strict bool) Option {
	return func(m *Manager) {
		m.strictVerify = strict
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir: DefaultBackupDir(),
		clock:   clock.WallClock,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the backup root.
func (m *Manager) Dir() string {
	return m.rootDir
}

// Create archives the profile directory at profilePath.
//
// Volatile files (see IsExcluded) are left out. A file that cannot be read
// is logged, recorded in CreateResult.Skipped and omitted; the rest of the
// profile is still archived. The archive is written to a temp file and
// published under its final name only once complete.
func (m *Manager) Create(profilePath, browserID, profileName string) (*CreateResult, error) {
	if m.rootDir == "" {
		return nil, errors.Wrap(ErrBackupFailed, "backup directory is not configured")
	}

	src, err := filepath.Abs(paths.ExpandHome(profilePath))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", profilePath)
	}

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "profile path %s", src)
		}
		return nil, errors.Wrapf(err, "stat %s", src)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotFound, "profile path %s is not a directory", src)
	}

	// WalkDir does not descend into a symlinked root.
	src, err = filepath.EvalSymlinks(src)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", profilePath)
	}

	if err := paths.EnsureDir(m.rootDir, dirPerm); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "creating backup directory"), ErrBackupFailed)
	}

	// The backup root may live inside the profile; never archive it.
	storeDir, err := filepath.Abs(m.rootDir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", m.rootDir)
	}
	if real, err := filepath.EvalSymlinks(storeDir); err == nil {
		storeDir = real
	}

	now := m.clock.Now()
	timestamp := now.Format(TimestampLayout)

	md := &Metadata{
		Version:         MetadataVersion,
		BrowserID:       browserID,
		ProfileName:     profileName,
		Timestamp:       timestamp,
		SourcePath:      src,
		CreatedAt:       now.Format(time.RFC3339),
		FloorperVersion: Version,
	}
	result := &CreateResult{Metadata: md}

	archivePath, err := fileutil.AtomicCreateUnique(m.rootDir, archivePerm, func(w io.Writer) error {
		aw := newArchiveWriter(w)
		files, skipped, excluded, err := m.archiveTree(aw, src, storeDir)
		if err != nil {
			return err
		}
		md.Files = files
		md.Summary = summarize(files)
		result.Skipped = skipped
		result.Excluded = excluded
		return aw.writeMetadata(md, now)
	}, maxNameAttempts, func(attempt int) string {
		return ArchiveName(browserID, profileName, timestamp, attempt)
	})
	if err != nil {
		m.logger.Error("backup failed", "profile_path", src, "error", err)
		return nil, errors.Mark(errors.Wrapf(err, "creating backup of %s", src), ErrBackupFailed)
	}

	result.Path = archivePath
	m.logger.Info("created backup",
		"archive_path", archivePath,
		"file_count", md.Summary.FileCount,
		"total_size", md.Summary.TotalSize,
		"skipped", len(result.Skipped),
		"excluded", result.Excluded)

	return result, nil
}

// archiveTree walks root and stores every non-volatile regular file outside
// storeDir. It returns the recorded entries, the per-file failures and the
// count of excluded files. The error is non-nil only when the archive
// stream itself failed.
func (m *Manager) archiveTree(aw *archiveWriter, root, storeDir string) ([]FileEntry, []FileOutcome, int, error) {
	var (
		files    []FileEntry
		failures []FileOutcome
		excluded int
	)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if p == root {
			return walkErr
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		if walkErr != nil {
			m.logger.Warn("skipping unreadable path", "path", p, "error", walkErr)
			failures = append(failures, FileOutcome{Path: filepath.ToSlash(rel), Err: walkErr})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if IsExcluded(d.Name()) {
			if d.IsDir() {
				m.logger.Debug("excluding volatile directory", "path", p)
				return fs.SkipDir
			}
			excluded++
			return nil
		}

		if d.IsDir() {
			if p == storeDir {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			m.logger.Debug("skipping non-regular file", "path", p, "type", d.Type().String())
			return nil
		}

		entry, outcome := aw.addFile(p, rel)
		if outcome.Err != nil {
			if errors.Is(outcome.Err, errArchiveWrite) {
				return outcome.Err
			}
			m.logger.Warn("error adding file to backup", "path", p, "error", outcome.Err)
			failures = append(failures, outcome)
			return nil
		}

		files = append(files, entry)
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}

	return files, failures, excluded, nil
}

// Get returns the metadata of the archive at archivePath.
func (m *Manager) Get(archivePath string) (*Metadata, error) {
	return readMetadataFile(archivePath)
}

// Resolve maps a bare archive name (with or without ".zip") to a path in
// the backup root. Existing paths are returned unchanged.
func (m *Manager) Resolve(nameOrPath string) (string, error) {
	candidates := []string{nameOrPath}
	if !strings.ContainsAny(nameOrPath, `/\`) {
		inRoot := filepath.Join(m.rootDir, nameOrPath)
		candidates = append(candidates, inRoot)
		if !strings.EqualFold(filepath.Ext(nameOrPath), ArchiveExt) {
			candidates = append(candidates, inRoot+ArchiveExt)
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", errors.Wrapf(ErrNotFound, "backup %s", nameOrPath)
}

// List returns the archives in the backup root whose metadata matches
// filter, newest first. Archives without readable metadata are logged and
// omitted. A missing backup root yields an empty list.
func (m *Manager) List(filter Filter) ([]Info, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || fileutil.IsTempFile(name) || !strings.EqualFold(filepath.Ext(name), ArchiveExt) {
			continue
		}

		archivePath := filepath.Join(m.rootDir, name)
		md, err := readMetadataFile(archivePath)
		if err != nil {
			m.logger.Warn("skipping unreadable backup", "archive_path", archivePath, "error", err)
			continue
		}
		if !filter.match(md) {
			continue
		}

		infos = append(infos, Info{
			Path:        archivePath,
			Filename:    name,
			BrowserID:   md.BrowserID,
			ProfileName: md.ProfileName,
			Timestamp:   md.Timestamp,
			CreatedAt:   md.CreatedAt,
			Summary:     md.Summary,
		})
	}

	slices.SortFunc(infos, func(a, b Info) int {
		if c := strings.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return compareArchiveNames(a.Filename, b.Filename)
	})

	return infos, nil
}

// Latest returns the newest archive matching filter.
func (m *Manager) Latest(filter Filter) (*Info, error) {
	infos, err := m.List(filter)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, ErrNoBackupsFound
	}
	return &infos[0], nil
}

// Verify checks that every file recorded in the archive's metadata is
// present under profile/. With strict verification it also re-hashes each
// file and reports digest mismatches as corrupted. Verify never returns an
// error; problems are described by the report.
func (m *Manager) Verify(archivePath string) (bool, *VerifyReport) {
	report := &VerifyReport{
		MissingFiles:   []string{},
		CorruptedFiles: []string{},
	}

	zr, err := openArchive(archivePath)
	if err != nil {
		report.Error = verifyErrorText(err)
		return false, report
	}
	defer zr.Close()

	idx := indexEntries(&zr.Reader)
	md, err := readMetadata(idx)
	if err != nil {
		report.Error = verifyErrorText(err)
		return false, report
	}
	report.Metadata = md

	for _, entry := range md.Files {
		f, ok := idx[entryName(entry.Path)]
		if !ok {
			report.MissingFiles = append(report.MissingFiles, entry.Path)
			continue
		}

		if m.strictVerify {
			if err := checkEntry(f, entry); err != nil {
				m.logger.Warn("archived file is corrupted", "archive_path", archivePath, "file", entry.Path, "error", err)
				report.CorruptedFiles = append(report.CorruptedFiles, entry.Path)
				continue
			}
		}

		report.VerifiedFiles++
	}

	report.IsValid = len(report.MissingFiles) == 0 && len(report.CorruptedFiles) == 0
	return report.IsValid, report
}

// verifyErrorText renders a verification failure for VerifyReport.Error.
func verifyErrorText(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "backup file does not exist"
	}
	return err.Error()
}

// checkEntry re-hashes an archived file and compares it with its record.
// Reading to EOF also validates the zip CRC.
func checkEntry(f *zip.File, entry FileEntry) error {
	rc, err := f.Open()
	if err != nil {
		return errors.Wrap(err, "opening entry")
	}
	defer rc.Close()

	sum, n, err := hashReader(rc)
	if err != nil {
		return err
	}
	if n != entry.Size {
		return errors.Newf("size %d, recorded %d", n, entry.Size)
	}
	if entry.Hash != "" && !strings.EqualFold(sum, entry.Hash) {
		return errors.Newf("hash %s, recorded %s", sum, entry.Hash)
	}
	return nil
}

// Restore extracts the archive's profile files into targetPath. When
// targetPath is empty the recorded source path is used. With merge,
// existing destination files are kept; otherwise they are overwritten.
//
// The archive must pass Verify; if it does not, nothing is written. A file
// that cannot be written is logged and recorded in RestoreResult.Failed,
// and the remaining files are still restored. There is no rollback: the
// returned result describes the partially restored target alongside an
// ErrRestoreFailed error.
func (m *Manager) Restore(archivePath, targetPath string, merge bool) (*RestoreResult, error) {
	md, err := m.CheckRestorable(archivePath)
	if err != nil {
		return nil, err
	}

	target := targetPath
	if target == "" {
		target = md.SourcePath
	}
	if target == "" {
		return nil, errors.Wrap(ErrNoTarget, "no target path specified and no source path in metadata")
	}
	target = paths.ExpandHome(target)

	strayDir := filepath.Join(target, strings.TrimSuffix(ProfilePrefix, "/"))
	_, strayErr := os.Lstat(strayDir)
	strayExisted := strayErr == nil

	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "creating target %s", target), ErrRestoreFailed)
	}

	zr, err := openArchive(archivePath)
	if err != nil {
		return nil, errors.Mark(err, ErrRestoreFailed)
	}
	defer zr.Close()
	idx := indexEntries(&zr.Reader)

	result := &RestoreResult{Target: target, Failed: []FileOutcome{}}
	recorded := make(map[string]struct{}, len(md.Files))
	buf := make([]byte, hashChunkSize)

	for _, entry := range md.Files {
		name := entryName(entry.Path)
		recorded[name] = struct{}{}

		dest, err := safeJoin(target, entry.Path)
		if err != nil {
			m.logger.Warn("rejecting archive entry", "file", entry.Path, "error", err)
			result.Failed = append(result.Failed, FileOutcome{Path: entry.Path, Err: err})
			continue
		}

		if merge {
			if _, err := os.Lstat(dest); err == nil {
				m.logger.Debug("keeping existing file", "path", dest)
				result.Skipped++
				continue
			}
		}

		if err := extractEntry(idx[name], dest, buf); err != nil {
			m.logger.Warn("error restoring file", "path", dest, "error", err)
			result.Failed = append(result.Failed, FileOutcome{Path: entry.Path, Err: err})
			continue
		}
		result.Restored++
	}

	for name, f := range idx {
		if !strings.HasPrefix(name, ProfilePrefix) || name == ProfilePrefix || f.FileInfo().IsDir() {
			continue
		}
		if _, ok := recorded[name]; !ok {
			result.Ignored++
		}
	}
	if result.Ignored > 0 {
		m.logger.Debug("ignored unrecorded archive entries", "count", result.Ignored)
	}

	if !strayExisted {
		// Only succeeds when empty; a restored "profile" directory with
		// content stays.
		_ = os.Remove(strayDir)
	}

	if len(result.Failed) > 0 {
		m.logger.Error("restore incomplete", "target_path", target, "failed", len(result.Failed))
		return result, errors.Wrapf(ErrRestoreFailed, "%d of %d files could not be restored", len(result.Failed), len(md.Files))
	}

	m.logger.Info("restored backup",
		"archive_path", archivePath,
		"target_path", target,
		"restored", result.Restored,
		"skipped", result.Skipped)
	return result, nil
}

// CheckRestorable verifies archivePath the way Restore does and returns its
// metadata. Callers that act on the target before restoring use it to refuse
// an invalid archive first. Errors wrap ErrVerificationFailed.
func (m *Manager) CheckRestorable(archivePath string) (*Metadata, error) {
	ok, report := m.Verify(archivePath)
	if !ok {
		reason := report.Error
		if reason == "" {
			reason = describeInvalid(report)
		}
		m.logger.Error("backup verification failed", "archive_path", archivePath, "reason", reason)
		return nil, errors.Wrapf(ErrVerificationFailed, "%s: %s", filepath.Base(archivePath), reason)
	}
	return report.Metadata, nil
}

func describeInvalid(r *VerifyReport) string {
	var parts []string
	if n := len(r.MissingFiles); n > 0 {
		parts = append(parts, pluralize(n, "missing file"))
	}
	if n := len(r.CorruptedFiles); n > 0 {
		parts = append(parts, pluralize(n, "corrupted file"))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// extractEntry writes one archived file to dest, creating parents.
func extractEntry(f *zip.File, dest string, buf []byte) error {
	if f == nil {
		return errors.Wrap(ErrNotFound, "archive entry")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrap(err, "opening archive entry")
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	// A symlink at dest could point outside the target; replace it.
	if fi, err := os.Lstat(dest); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(dest); err != nil {
			return errors.Wrap(err, "removing symlink")
		}
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}

	if _, err := io.CopyBuffer(out, rc, buf); err != nil {
		out.Close()
		return errors.Wrap(err, "writing file")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "closing file")
	}

	if !f.Modified.IsZero() {
		_ = os.Chtimes(dest, f.Modified, f.Modified)
	}
	return nil
}

// Delete removes the archive at archivePath.
func (m *Manager) Delete(archivePath string) error {
	info, err := os.Lstat(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "backup %s", archivePath)
		}
		return errors.Wrapf(err, "stat %s", archivePath)
	}
	if info.IsDir() {
		return errors.Newf("%s is a directory, not a backup archive", archivePath)
	}

	if err := os.Remove(archivePath); err != nil {
		m.logger.Error("error deleting backup", "archive_path", archivePath, "error", err)
		return errors.Wrapf(err, "deleting %s", archivePath)
	}

	m.logger.Info("deleted backup", "archive_path", archivePath)
	return nil
}

// Prune deletes all but the newest keep archives of every
// (browser, profile) pair matching filter. It returns the deleted archives.
func (m *Manager) Prune(filter Filter, keep int) ([]Info, error) {
	if keep < 0 {
		return nil, errors.New("keep must be non-negative")
	}

	infos, err := m.List(filter)
	if err != nil {
		return nil, err
	}

	type profileKey struct{ browser, profile string }
	seen := make(map[profileKey]int)

	var removed []Info
	// List is newest first, so the first keep of each profile survive.
	for _, info := range infos {
		k := profileKey{info.BrowserID, info.ProfileName}
		seen[k]++
		if seen[k] <= keep {
			continue
		}
		if err := m.Delete(info.Path); err != nil {
			return removed, errors.Wrapf(err, "pruning %s", info.Filename)
		}
		removed = append(removed, info)
	}

	return removed, nil
}
