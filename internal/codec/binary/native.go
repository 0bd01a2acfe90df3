// Package binary implements the little-endian record formats of a project:
// resource (.res) and chunk (.chunk) records, the linked-asset sidecar
// (.bin) written next to an asset file, and opaque handler payloads (.mres).
package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vbxproj/vbxproj/internal/asset"
)

// ErrTruncated is returned when a record ends before all of its fields.
var ErrTruncated = errors.New("record truncated")

// Writer appends little-endian primitives to an in-memory buffer.
type Writer struct {
	buf []byte
}

// Bytes returns the encoded data.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) Int32(v int32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v)) }

func (w *Writer) Uint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *Writer) Int64(v int64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v)) }

func (w *Writer) Uint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

// Raw appends b without a length prefix.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// LenBytes appends an int32 length followed by b.
func (w *Writer) LenBytes(b []byte) {
	w.Int32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// CString appends s followed by a NUL terminator.
func (w *Writer) CString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// CStrings appends an int32 count followed by each string.
func (w *Writer) CStrings(ss []string) {
	w.Int32(int32(len(ss)))
	for _, s := range ss {
		w.CString(s)
	}
}

// Guid appends id in the 16-byte mixed-endian layout used by the host
// tools: the first three groups little-endian, the last eight bytes as is.
func (w *Writer) Guid(id uuid.UUID) {
	w.buf = append(w.buf, id[3], id[2], id[1], id[0], id[5], id[4], id[7], id[6])
	w.buf = append(w.buf, id[8:]...)
}

func (w *Writer) Sha1(s asset.Sha1) { w.buf = append(w.buf, s[:]...) }

// Reader decodes little-endian primitives. The first error is sticky and
// every later read returns a zero value.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first decode error.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("offset %d: %w", r.pos, err)
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.fail(ErrTruncated)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) Bool() bool {
	b := r.take(1)
	return b != nil && b[0] != 0
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) Int64() int64 {
	return int64(r.Uint64())
}

func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Raw reads n bytes into a fresh slice.
func (r *Reader) Raw(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return bytes.Clone(b)
}

// Len reads an int32 length or count and rejects negative values.
func (r *Reader) Len() int {
	n := r.Int32()
	if n < 0 {
		r.fail(fmt.Errorf("negative length %d", n))
		return 0
	}
	return int(n)
}

// LenBytes reads an int32 length followed by that many bytes.
func (r *Reader) LenBytes() []byte {
	n := r.Len()
	if r.err != nil {
		return nil
	}
	b := r.take(n)
	if b == nil {
		return nil
	}
	return bytes.Clone(b)
}

// CString reads a NUL-terminated string.
func (r *Reader) CString() string {
	if r.err != nil {
		return ""
	}
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end < 0 {
		r.fail(fmt.Errorf("unterminated string: %w", ErrTruncated))
		return ""
	}
	s := string(r.data[r.pos : r.pos+end])
	r.pos += end + 1
	return s
}

// CStrings reads an int32 count followed by that many strings.
func (r *Reader) CStrings() []string {
	n := r.Len()
	if r.err != nil || n == 0 {
		return nil
	}
	// Every string needs at least its terminator.
	if n > r.Remaining() {
		r.fail(ErrTruncated)
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.CString())
	}
	return out
}

// Guid reads a GUID written by Writer.Guid.
func (r *Reader) Guid() uuid.UUID {
	b := r.take(16)
	if b == nil {
		return uuid.Nil
	}
	var id uuid.UUID
	id[0], id[1], id[2], id[3] = b[3], b[2], b[1], b[0]
	id[4], id[5] = b[5], b[4]
	id[6], id[7] = b[7], b[6]
	copy(id[8:], b[8:])
	return id
}

func (r *Reader) Sha1() asset.Sha1 {
	var s asset.Sha1
	if b := r.take(len(s)); b != nil {
		copy(s[:], b)
	}
	return s
}
