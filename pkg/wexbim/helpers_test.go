package wexbim

import (
	"bytes"
	"encoding/binary"
)

// Test fixtures are built field by field the same way the exporter writes them.

type testStyle struct {
	id   int32
	rgba [4]float32
}

type testProduct struct {
	id   int32
	typ  int16
	bbox [6]float32
}

type testInstance struct {
	product int32
	typ     int16
	label   int32
	style   int32
	matrix  [16]float32
}

type testFace struct {
	planar  bool
	normal  [2]uint8   // planar faces
	indices []uint32   // three per triangle
	normals [][2]uint8 // curved faces, one per index
}

type testShape struct {
	instances []testInstance
	vertices  []float32
	faces     []testFace
}

type testModel struct {
	meter     float32
	regions   []Region
	styles    []testStyle
	products  []testProduct
	shapes    []testShape
	triangles int32 // overrides the computed triangle count when non-zero
	trailing  []byte
}

func (s *testShape) triangleCount() int {
	n := 0
	for _, f := range s.faces {
		n += len(f.indices) / 3
	}
	return n
}

func (m *testModel) encode() []byte {
	buf := new(bytes.Buffer)
	w := func(v any) {
		binary.Write(buf, binary.LittleEndian, v)
	}

	var vertices, triangles, matrices int32
	for i := range m.shapes {
		s := &m.shapes[i]
		vertices += int32(len(s.vertices) / 3)
		triangles += int32(s.triangleCount() * len(s.instances))
		if len(s.instances) > 1 {
			matrices += int32(len(s.instances))
		}
	}
	if m.triangles != 0 {
		triangles = m.triangles
	}

	w(MagicNumber)
	w(uint8(3))
	w(int32(len(m.shapes)))
	w(vertices)
	w(triangles)
	w(matrices)
	w(int32(len(m.products)))
	w(int32(len(m.styles)))
	w(m.meter)
	w(int16(len(m.regions)))

	for _, r := range m.regions {
		w(r)
	}
	for _, s := range m.styles {
		w(s.id)
		w(s.rgba)
	}
	for _, p := range m.products {
		w(p.id)
		w(p.typ)
		w(p.bbox)
	}
	for i := range m.shapes {
		s := &m.shapes[i]
		w(int32(len(s.instances)))
		for _, in := range s.instances {
			w(in.product)
			w(in.typ)
			w(in.label)
			w(in.style)
			if len(s.instances) > 1 {
				w(in.matrix)
			}
		}
		s.encode(buf)
	}

	buf.Write(m.trailing)
	return buf.Bytes()
}

// encode writes the triangulated shape block.
func (s *testShape) encode(buf *bytes.Buffer) {
	w := func(v any) {
		binary.Write(buf, binary.LittleEndian, v)
	}
	nv := len(s.vertices) / 3
	writeIndex := func(idx uint32) {
		switch {
		case nv <= 0xFF:
			w(uint8(idx))
		case nv <= 0xFFFF:
			w(uint16(idx))
		default:
			w(int32(idx))
		}
	}

	w(uint8(1))
	w(int32(nv))
	w(int32(s.triangleCount()))
	w(s.vertices)
	w(int32(len(s.faces)))

	for _, f := range s.faces {
		tris := int32(len(f.indices) / 3)
		if !f.planar {
			tris = -tris
		}
		w(tris)
		if tris == 0 {
			continue
		}
		if f.planar {
			w(f.normal)
			for _, idx := range f.indices {
				writeIndex(idx)
			}
			continue
		}
		for j, idx := range f.indices {
			writeIndex(idx)
			w(f.normals[j])
		}
	}
}

func opaque(id int32) testStyle {
	return testStyle{id: id, rgba: [4]float32{0.5, 0.5, 0.5, 1}}
}

func transparent(id int32) testStyle {
	return testStyle{id: id, rgba: [4]float32{0, 0, 1, 0.5}}
}

func product(id int32) testProduct {
	return testProduct{id: id, typ: 1, bbox: [6]float32{0, 0, 0, 1, 1, 1}}
}

// triangle is a single planar triangle with vertices offset by z.
func triangle(z float32, instances ...testInstance) testShape {
	return testShape{
		instances: instances,
		vertices:  []float32{0, 0, z, 1, 0, z, 0, 1, z},
		faces:     []testFace{{planar: true, normal: [2]uint8{10, 20}, indices: []uint32{0, 1, 2}}},
	}
}

// quad is two planar triangles sharing an edge.
func quad(instances ...testInstance) testShape {
	return testShape{
		instances: instances,
		vertices:  []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		faces:     []testFace{{planar: true, normal: [2]uint8{30, 40}, indices: []uint32{0, 1, 2, 0, 2, 3}}},
	}
}

func translation(x, y, z float32) [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, x, y, z, 1}
}

// minimalModel has one opaque triangle for product 1.
func minimalModel() *testModel {
	return &testModel{
		meter:    1000,
		styles:   []testStyle{opaque(1)},
		products: []testProduct{product(1)},
		shapes:   []testShape{triangle(0, testInstance{product: 1, style: 1})},
	}
}
