package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

const blanks = " \t\r"

// Reader hashes everything read through it.
// Thread-Safety: NOT safe for concurrent use.
type Reader struct {
	src        io.Reader
	raw        hash.Hash
	normalized hash.Hash
	blankTail  []byte // blanks at the end of the current line seen so far
	n          int64
}

// NewReader wraps src.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src, raw: sha256.New(), normalized: sha256.New()}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.raw.Write(p[:n])
		r.feed(p[:n])
		r.n += int64(n)
	}
	return n, err
}

// feed writes b to the normalized hash line by line. Blanks are held back
// until something other than a line end follows them.
func (r *Reader) feed(b []byte) {
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			r.hold(b)
			return
		}
		r.hold(b[:i])
		r.blankTail = r.blankTail[:0]
		r.normalized.Write([]byte{'\n'})
		b = b[i+1:]
	}
}

func (r *Reader) hold(b []byte) {
	content := bytes.TrimRight(b, blanks)
	if len(content) == 0 {
		r.blankTail = append(r.blankTail, b...)
		return
	}
	r.normalized.Write(r.blankTail)
	r.normalized.Write(content)
	r.blankTail = append(r.blankTail[:0], b[len(content):]...)
}

// BytesRead returns the number of bytes read so far.
func (r *Reader) BytesRead() int64 { return r.n }

// Raw returns the hex SHA-256 of the bytes read so far.
func (r *Reader) Raw() string {
	return hex.EncodeToString(r.raw.Sum(nil))
}

// Normalized returns the hex SHA-256 of the bytes read so far with trailing
// blanks and carriage returns removed from every line.
func (r *Reader) Normalized() string {
	return hex.EncodeToString(r.normalized.Sum(nil))
}

// Sum returns the hex SHA-256 of content.
func Sum(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
