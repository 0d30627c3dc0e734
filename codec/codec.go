// Package codec holds the big-endian primitives shared by the chain and wire
// encodings. Readers never read past the end of their input.
package codec

import (
	"encoding/binary"

	"github.com/kostaleonard/leocoin/errors"
)

// Writer appends big-endian fields to a growing buffer.
type Writer struct {
	buf []byte
}

func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

func (w *Writer) Uint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Uint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

func (w *Writer) Bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Result() []byte {
	return w.buf
}

// Reader is a bounds-checked cursor over an input buffer.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errors.Newf(errors.CodeBufferTooSmall,
			"need %d bytes at offset %d, have %d", n, r.off, r.Remaining())
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Fixed copies exactly len(dst) bytes into dst.
func (r *Reader) Fixed(dst []byte) error {
	b, err := r.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Count reads a u64 element count and checks that count elements of at least
// minElemSize bytes each could fit in the remaining input. The returned
// count is therefore safe to use as an allocation hint.
func (r *Reader) Count(minElemSize int) (int, error) {
	n, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	if minElemSize < 1 {
		minElemSize = 1
	}
	if n > uint64(r.Remaining()/minElemSize) {
		return 0, errors.Newf(errors.CodeBufferTooSmall,
			"count %d needs at least %d bytes per element, have %d", n, minElemSize, r.Remaining())
	}
	return int(n), nil
}
