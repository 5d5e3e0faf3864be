// Package binreader provides sequential little-endian reads over a fully
// buffered byte source with end-of-stream tracking.
package binreader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnexpectedEOF is returned when a read needs more bytes than remain.
var ErrUnexpectedEOF = errors.New("unexpected end of stream")

// Reader reads typed values from an in-memory buffer.
// A Reader is not safe for concurrent use.
type Reader struct {
	data []byte
	pos  int
}

// New returns a Reader positioned at the start of data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Size returns the total length of the underlying buffer.
func (r *Reader) Size() int {
	return len(r.data)
}

// EOF reports whether every byte has been consumed.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.data)
}

// next returns the following n bytes and advances past them.
func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrUnexpectedEOF, n, r.pos, r.Len())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Byte reads one unsigned byte.
func (r *Reader) Byte() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes fills dst with the following len(dst) bytes.
func (r *Reader) ReadBytes(dst []byte) error {
	b, err := r.next(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// Int16 reads a signed 16-bit integer.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint16 reads an unsigned 16-bit integer.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Int32 reads a signed 32-bit integer.
func (r *Reader) Int32() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Float32 reads an IEEE 754 single-precision float.
func (r *Reader) Float32() (float32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// Float32s fills dst with consecutive floats. On error dst is left untouched.
func (r *Reader) Float32s(dst []float32) error {
	b, err := r.next(4 * len(dst))
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return nil
}

// Struct decodes a fixed-size value laid out as encoding/binary describes
// (no padding, exported fields only).
func (r *Reader) Struct(v any) error {
	n := binary.Size(v)
	if n < 0 {
		return fmt.Errorf("binreader: %T has no fixed size", v)
	}
	b, err := r.next(n)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, v)
}

// Matrix4x4 reads sixteen floats in stored order.
func (r *Reader) Matrix4x4() ([16]float32, error) {
	var m [16]float32
	err := r.Float32s(m[:])
	return m, err
}
