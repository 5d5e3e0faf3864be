package binreader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestReader_TypedReads(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.WriteByte(7)
	binary.Write(buf, binary.LittleEndian, int16(-3))
	binary.Write(buf, binary.LittleEndian, uint16(0xBEEF))
	binary.Write(buf, binary.LittleEndian, int32(94132117))
	binary.Write(buf, binary.LittleEndian, float32(1.5))

	r := New(buf.Bytes())

	b, err := r.Byte()
	if err != nil || b != 7 {
		t.Fatalf("Byte() = %d, %v; want 7", b, err)
	}
	i16, err := r.Int16()
	if err != nil || i16 != -3 {
		t.Fatalf("Int16() = %d, %v; want -3", i16, err)
	}
	u16, err := r.Uint16()
	if err != nil || u16 != 0xBEEF {
		t.Fatalf("Uint16() = %x, %v; want beef", u16, err)
	}
	i32, err := r.Int32()
	if err != nil || i32 != 94132117 {
		t.Fatalf("Int32() = %d, %v; want 94132117", i32, err)
	}
	f, err := r.Float32()
	if err != nil || f != 1.5 {
		t.Fatalf("Float32() = %f, %v; want 1.5", f, err)
	}

	if !r.EOF() {
		t.Errorf("expected EOF, %d bytes left", r.Len())
	}
	if r.Pos() != r.Size() {
		t.Errorf("Pos() = %d, want %d", r.Pos(), r.Size())
	}
}

func TestReader_Matrix4x4(t *testing.T) {
	buf := new(bytes.Buffer)
	for i := 0; i < 16; i++ {
		binary.Write(buf, binary.LittleEndian, float32(i))
	}

	m, err := New(buf.Bytes()).Matrix4x4()
	if err != nil {
		t.Fatalf("Matrix4x4 failed: %v", err)
	}
	for i, v := range m {
		if v != float32(i) {
			t.Errorf("m[%d] = %f, want %d", i, v, i)
		}
	}
}

func TestReader_UnexpectedEOF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(*Reader) error
	}{
		{"byte on empty", nil, func(r *Reader) error { _, err := r.Byte(); return err }},
		{"int16 on one byte", []byte{1}, func(r *Reader) error { _, err := r.Int16(); return err }},
		{"int32 on three bytes", []byte{1, 2, 3}, func(r *Reader) error { _, err := r.Int32(); return err }},
		{"float32 on two bytes", []byte{1, 2}, func(r *Reader) error { _, err := r.Float32(); return err }},
		{"floats past end", make([]byte, 8), func(r *Reader) error { return r.Float32s(make([]float32, 3)) }},
		{"bytes past end", []byte{1}, func(r *Reader) error { return r.ReadBytes(make([]byte, 2)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.data)
			err := tt.read(r)
			if !errors.Is(err, ErrUnexpectedEOF) {
				t.Fatalf("got %v, want ErrUnexpectedEOF", err)
			}
			if r.Pos() != 0 {
				t.Errorf("failed read advanced position to %d", r.Pos())
			}
		})
	}
}

func TestReader_ReadBytesCopies(t *testing.T) {
	data := []byte{1, 2, 3}
	r := New(data)

	dst := make([]byte, 2)
	if err := r.ReadBytes(dst); err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	data[0] = 9
	if dst[0] != 1 {
		t.Error("ReadBytes result aliases the source buffer")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestReader_Struct(t *testing.T) {
	type record struct {
		ID   int32
		Kind int16
		Box  [2]float32
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(42))
	binary.Write(buf, binary.LittleEndian, int16(498))
	binary.Write(buf, binary.LittleEndian, [2]float32{1, 2})

	r := New(buf.Bytes())
	var rec record
	if err := r.Struct(&rec); err != nil {
		t.Fatalf("Struct failed: %v", err)
	}
	if rec.ID != 42 || rec.Kind != 498 || rec.Box != [2]float32{1, 2} {
		t.Errorf("got %+v", rec)
	}
	if !r.EOF() {
		t.Errorf("expected EOF after 14-byte record, %d bytes left", r.Len())
	}

	short := New(buf.Bytes()[:9])
	if err := short.Struct(&rec); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("short record: got %v, want ErrUnexpectedEOF", err)
	}
}
