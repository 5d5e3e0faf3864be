package wexbim

import (
	"fmt"

	"github.com/Faultbox/wexbim-go/pkg/binreader"
)

// ShapeGeometry is the local geometry of one shared shape.
type ShapeGeometry struct {
	Vertices []float32 // x,y,z triples in shape space
	Indices  []uint32  // three corners per triangle, into Vertices/3
	Normals  []uint8   // two packed bytes per corner
}

// VertexCount returns the number of vertices.
func (s *ShapeGeometry) VertexCount() int {
	return len(s.Vertices) / 3
}

// validate checks the output contract every ShapeDecoder must meet.
func (s *ShapeGeometry) validate() error {
	if len(s.Vertices)%3 != 0 {
		return fmt.Errorf("%w: %d vertex floats is not a multiple of 3", ErrInvalidShape, len(s.Vertices))
	}
	if len(s.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d corners is not a multiple of 3", ErrInvalidShape, len(s.Indices))
	}
	if len(s.Normals) != 2*len(s.Indices) {
		return fmt.Errorf("%w: %d normal bytes for %d corners", ErrInvalidShape, len(s.Normals), len(s.Indices))
	}
	nv := uint32(s.VertexCount())
	for i, idx := range s.Indices {
		if idx >= nv {
			return fmt.Errorf("%w: corner %d references vertex %d of %d", ErrInvalidShape, i, idx, nv)
		}
	}
	return nil
}

// ShapeDecoder reads one shared-geometry block from the stream.
type ShapeDecoder interface {
	DecodeShape(r *binreader.Reader) (*ShapeGeometry, error)
}

// TriangulatedShapeDecoder reads the triangulated shape block written by the
// standard exporter. Faces are either planar (one normal for all corners) or
// curved (a normal per corner). Index width depends on the vertex count.
type TriangulatedShapeDecoder struct{}

// DecodeShape implements ShapeDecoder.
func (TriangulatedShapeDecoder) DecodeShape(r *binreader.Reader) (*ShapeGeometry, error) {
	var hdr struct {
		Version      uint8
		NumVertices  int32
		NumTriangles int32
	}
	if err := r.Struct(&hdr); err != nil {
		return nil, readErr("shape header", err)
	}
	if hdr.NumVertices < 0 || hdr.NumTriangles < 0 {
		return nil, fmt.Errorf("%w: shape with %d vertices, %d triangles", ErrInvalidCount, hdr.NumVertices, hdr.NumTriangles)
	}
	if int64(hdr.NumVertices)*12 > int64(r.Len()) {
		return nil, fmt.Errorf("%w: shape declares %d vertices, %d bytes left", ErrTruncated, hdr.NumVertices, r.Len())
	}

	shape := &ShapeGeometry{Vertices: make([]float32, int(hdr.NumVertices)*3)}
	if err := r.Float32s(shape.Vertices); err != nil {
		return nil, readErr("shape vertices", err)
	}

	numFaces, err := r.Int32()
	if err != nil {
		return nil, readErr("shape face count", err)
	}
	// Vertices of a shape without triangles still take their place in the
	// shared vertex buffer.
	if hdr.NumVertices == 0 || hdr.NumTriangles == 0 {
		return shape, nil
	}

	// Each corner costs at least one index of the narrowest width.
	width := indexWidth(hdr.NumVertices)
	if int64(hdr.NumTriangles)*3*int64(width) > int64(r.Len()) {
		return nil, fmt.Errorf("%w: shape declares %d triangles, %d bytes left", ErrTruncated, hdr.NumTriangles, r.Len())
	}

	corners := int(hdr.NumTriangles) * 3
	shape.Indices = make([]uint32, corners)
	shape.Normals = make([]uint8, corners*2)
	readIndex := indexReader(r, hdr.NumVertices)

	at := 0
	for f := int32(0); f < numFaces; f++ {
		n, err := r.Int32()
		if err != nil {
			return nil, readErr(fmt.Sprintf("face %d size", f), err)
		}
		if n == 0 {
			continue
		}

		planar := n > 0
		if !planar {
			n = -n
		}
		count := int(n) * 3
		if at+count > corners {
			return nil, fmt.Errorf("%w: faces exceed %d declared triangles", ErrInvalidShape, hdr.NumTriangles)
		}

		if planar {
			var normal [2]uint8
			if err := r.ReadBytes(normal[:]); err != nil {
				return nil, readErr(fmt.Sprintf("face %d normal", f), err)
			}
			for j := 0; j < count; j++ {
				if shape.Indices[at], err = readIndex(); err != nil {
					return nil, readErr(fmt.Sprintf("face %d index", f), err)
				}
				shape.Normals[2*at] = normal[0]
				shape.Normals[2*at+1] = normal[1]
				at++
			}
			continue
		}

		for j := 0; j < count; j++ {
			if shape.Indices[at], err = readIndex(); err != nil {
				return nil, readErr(fmt.Sprintf("face %d index", f), err)
			}
			if err := r.ReadBytes(shape.Normals[2*at : 2*at+2]); err != nil {
				return nil, readErr(fmt.Sprintf("face %d normal", f), err)
			}
			at++
		}
	}

	if at != corners {
		return nil, fmt.Errorf("%w: faces supply %d of %d corners", ErrInvalidShape, at, corners)
	}
	return shape, nil
}

// indexWidth returns the size in bytes of one index for a shape with
// numVertices vertices.
func indexWidth(numVertices int32) int {
	switch {
	case numVertices <= 0xFF:
		return 1
	case numVertices <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

// indexReader picks the narrowest index encoding able to address numVertices.
func indexReader(r *binreader.Reader, numVertices int32) func() (uint32, error) {
	switch indexWidth(numVertices) {
	case 1:
		return func() (uint32, error) {
			v, err := r.Byte()
			return uint32(v), err
		}
	case 2:
		return func() (uint32, error) {
			v, err := r.Uint16()
			return uint32(v), err
		}
	default:
		return func() (uint32, error) {
			v, err := r.Int32()
			return uint32(v), err
		}
	}
}
