package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"

	"github.com/floorper/floorper/internal/errors"
)

// hashChunkSize is the fixed read size used while hashing and archiving,
// keeping memory flat regardless of file size.
const hashChunkSize = 32 * 1024

// copyResult separates read failures (the source) from write failures (the
// archive) so callers can skip a file without abandoning the archive.
type copyResult struct {
	n        int64
	sum      string
	readErr  error
	writeErr error
}

// hashCopy streams src into dst in hashChunkSize chunks, hashing the bytes
// read. dst may be nil to hash only.
func hashCopy(dst io.Writer, src io.Reader, buf []byte) copyResult {
	h := sha256.New()
	var res copyResult
	for {
		n, err := src.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			if dst != nil {
				if _, werr := dst.Write(buf[:n]); werr != nil {
					res.writeErr = errors.Wrap(werr, "writing archive entry")
					return res
				}
			}
			res.n += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			res.readErr = errors.Wrap(err, "reading")
			return res
		}
	}
	res.sum = hexSum(h)
	return res
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// hashReader returns the hex SHA-256 of everything read from r.
func hashReader(r io.Reader) (string, int64, error) {
	res := hashCopy(nil, r, make([]byte, hashChunkSize))
	if res.readErr != nil {
		return "", res.n, res.readErr
	}
	return res.sum, res.n, nil
}
