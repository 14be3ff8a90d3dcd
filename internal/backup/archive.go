package backup

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/pkg/fileutil"
)

// archiveWriter appends profile files and the metadata record to a zip stream.
type archiveWriter struct {
	zw  *zip.Writer
	buf []byte
}

func newArchiveWriter(w io.Writer) *archiveWriter {
	return &archiveWriter{
		zw:  zip.NewWriter(w),
		buf: make([]byte, hashChunkSize),
	}
}

// errArchiveWrite marks failures of the archive stream itself. They abort
// the backup, unlike per-file read failures.
var errArchiveWrite = errors.New("archive write failed")

// addFile stores the file at abs under profile/<rel>. Failures reading the
// source are returned in the outcome; failures writing the archive are
// marked with errArchiveWrite and must abort the backup.
func (a *archiveWriter) addFile(abs, rel string) (FileEntry, FileOutcome) {
	rel = filepath.ToSlash(rel)
	outcome := FileOutcome{Path: rel}

	f, err := os.Open(abs)
	if err != nil {
		outcome.Err = errors.Wrap(err, "opening")
		return FileEntry{}, outcome
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		outcome.Err = errors.Wrap(err, "stat")
		return FileEntry{}, outcome
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		outcome.Err = errors.Wrap(err, "preparing archive header")
		return FileEntry{}, outcome
	}
	header.Name = entryName(rel)
	header.Method = zip.Deflate

	w, err := a.zw.CreateHeader(header)
	if err != nil {
		outcome.Err = errors.Mark(errors.Wrap(err, "creating archive entry"), errArchiveWrite)
		return FileEntry{}, outcome
	}

	res := hashCopy(w, f, a.buf)
	switch {
	case res.writeErr != nil:
		outcome.Err = errors.Mark(res.writeErr, errArchiveWrite)
		return FileEntry{}, outcome
	case res.readErr != nil:
		// The partial body stays in the zip stream but has no metadata
		// record, so Verify and Restore never look at it.
		outcome.Err = res.readErr
		return FileEntry{}, outcome
	}

	return FileEntry{Path: rel, Size: res.n, Hash: res.sum}, outcome
}

// writeMetadata appends metadata.json and finalizes the zip central directory.
func (a *archiveWriter) writeMetadata(md *Metadata, modified time.Time) error {
	header := &zip.FileHeader{
		Name:   MetadataEntry,
		Method: zip.Deflate,
	}
	header.Modified = modified

	w, err := a.zw.CreateHeader(header)
	if err != nil {
		return errors.Wrap(err, "creating metadata entry")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(md); err != nil {
		return errors.Wrap(err, "encoding metadata")
	}

	return errors.Wrap(a.zw.Close(), "finalizing archive")
}

// openArchive opens a backup archive for reading.
func openArchive(archivePath string) (*zip.ReadCloser, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "archive %s", archivePath)
		}
		return nil, errors.Wrapf(err, "stat %s", archivePath)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(ErrCorruptArchive, "%s is a directory", archivePath)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "opening %s", archivePath), ErrCorruptArchive)
	}
	return zr, nil
}

// indexEntries maps entry names to files. Later duplicates win, matching
// archives that were written with the metadata entry twice.
func indexEntries(zr *zip.Reader) map[string]*zip.File {
	idx := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		idx[f.Name] = f
	}
	return idx
}

// readMetadata decodes the metadata entry of an open archive.
func readMetadata(idx map[string]*zip.File) (*Metadata, error) {
	f, ok := idx[MetadataEntry]
	if !ok {
		return nil, errors.Wrap(ErrCorruptArchive, "no metadata found in backup")
	}

	rc, err := f.Open()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "opening metadata"), ErrCorruptArchive)
	}
	defer rc.Close()

	data, err := fileutil.ReadAllWithLimit(rc, fileutil.MaxMetadataSize)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "reading metadata"), ErrCorruptArchive)
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing metadata"), ErrCorruptArchive)
	}
	return &md, nil
}

// readMetadataFile opens archivePath just far enough to decode its metadata.
func readMetadataFile(archivePath string) (*Metadata, error) {
	zr, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readMetadata(indexEntries(&zr.Reader))
}

// safeJoin resolves a slash-separated archive path under root, rejecting
// absolute paths and any path that would escape root.
func safeJoin(root, rel string) (string, error) {
	if rel == "" || strings.HasPrefix(rel, "/") || (filepath.Separator == '\\' && strings.Contains(rel, `\`)) {
		return "", errors.Newf("invalid entry path %q", rel)
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Newf("entry path %q escapes target", rel)
	}
	dest := filepath.Join(root, filepath.FromSlash(clean))
	if filepath.VolumeName(filepath.FromSlash(clean)) != "" {
		return "", errors.Newf("invalid entry path %q", rel)
	}
	return dest, nil
}
