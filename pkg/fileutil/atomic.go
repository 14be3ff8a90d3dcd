// Package fileutil provides file system utilities including atomic write operations.
package fileutil

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/floorper/floorper/internal/errors"
)

// tempPattern names in-flight files. Readers of a directory should ignore
// files matching it; they never carry a final extension.
const tempPattern = ".floorper-atomic-*.partial"

// ErrExists is returned by AtomicCreateStream when the destination already exists.
var ErrExists = errors.New("destination already exists")

// WriteFunc streams content into an in-flight file.
type WriteFunc func(w io.Writer) error

// AtomicWriteStream writes the output of fn to path atomically using a
// temp file + rename pattern, replacing any existing file.
// Interrupted writes leave the original file (if any) intact.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteStream(path string, perm os.FileMode, fn WriteFunc) error {
	return atomicWrite(filepath.Dir(path), perm, fn, func(tmp string) error {
		return errors.Wrap(os.Rename(tmp, path), "renaming temp file")
	})
}

// AtomicCreateStream is like AtomicWriteStream but never replaces an existing
// file: if path exists when the content is published, ErrExists is returned
// and the temp file is discarded.
func AtomicCreateStream(path string, perm os.FileMode, fn WriteFunc) error {
	_, err := AtomicCreateUnique(filepath.Dir(path), perm, fn, 1, func(int) string {
		return filepath.Base(path)
	})
	return err
}

// AtomicCreateUnique streams fn into a temp file in dir and publishes it
// under the first name returned by name(0), name(1), ... name(attempts-1)
// that does not exist yet. The content is written once regardless of how
// many names are tried. It returns the published path, or ErrExists when
// every candidate was taken.
func AtomicCreateUnique(dir string, perm os.FileMode, fn WriteFunc, attempts int, name func(attempt int) string) (string, error) {
	var published string
	err := atomicWrite(dir, perm, fn, func(tmp string) error {
		for i := range attempts {
			dst := filepath.Join(dir, name(i))
			err := publishExclusive(tmp, dst)
			if err == nil {
				published = dst
				return nil
			}
			if !errors.Is(err, ErrExists) {
				return err
			}
		}
		return errors.Wrapf(ErrExists, "no free name after %d attempts", attempts)
	})
	return published, err
}

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteStream(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicWriteYAML writes v as YAML to path atomically with the given permissions.
// Appends a trailing newline for POSIX compliance.
func AtomicWriteYAML(path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(path, data, perm)
}

// IsTempFile reports whether name was produced by the atomic writers.
func IsTempFile(name string) bool {
	ok, _ := filepath.Match(tempPattern, filepath.Base(name))
	return ok
}

func atomicWrite(dir string, perm os.FileMode, fn WriteFunc, publish func(tmp string) error) error {
	// Create temp file in same directory for atomic rename (same filesystem required)
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if publish failed (file still exists)
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err := fn(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	return publish(tmpName)
}

// publishExclusive hard-links tmp to dst so that an existing dst is never
// replaced, falling back to stat+rename where links are unsupported.
func publishExclusive(tmp, dst string) error {
	err := os.Link(tmp, dst)
	switch {
	case err == nil:
		// The deferred cleanup in atomicWrite retries if this fails.
		_ = os.Remove(tmp)
		return nil
	case os.IsExist(err):
		return errors.Wrapf(ErrExists, "%s", dst)
	}

	if _, statErr := os.Lstat(dst); statErr == nil {
		return errors.Wrapf(ErrExists, "%s", dst)
	}
	return errors.Wrap(os.Rename(tmp, dst), "renaming temp file")
}
