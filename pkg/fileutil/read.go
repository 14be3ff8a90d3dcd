package fileutil

import (
	"io"

	"github.com/floorper/floorper/internal/errors"
)

// MaxMetadataSize bounds how much of a single archive entry is read into
// memory when decoding structured content such as metadata.json.
const MaxMetadataSize = 64 * 1024 * 1024 // 64MB

// ErrTooLarge indicates that content exceeded the permitted size.
var ErrTooLarge = errors.New("content exceeds maximum size")

// ReadAllWithLimit reads r to EOF, failing with ErrTooLarge if more than
// limit bytes are available.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading content")
	}

	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrTooLarge, "limit %d bytes", limit)
	}

	return data, nil
}
