package wexbim

import (
	"fmt"

	"github.com/Faultbox/wexbim-go/pkg/math"
)

// ModelGeometry is the decode result.
//
// Vertices, Styles and Matrices are padded to square RGBA textures (see
// SquareLength). Indices, Products, StyleIndices and Transformations hold one
// entry per corner, Normals and States two bytes per corner. All corners of
// opaque styles precede all corners of transparent styles.
//
// Every buffer except States is read-only once decoding returns. States is
// owned by the caller for visibility and restyle toggling; ModelGeometry does
// no locking, so concurrent writers must synchronise externally.
type ModelGeometry struct {
	Header Header
	Meter  float32

	Regions    []Region
	StyleMap   []Style   // Decode order; Style.Index addresses Styles
	ProductMap []Product // Decode order

	Vertices []float32
	Styles   []uint8
	Matrices []float32

	Indices         []float32
	// Products holds the owning product id of each corner as a float32, so
	// ids above 1<<24 are rounded to the nearest representable value. Use
	// ProductMap spans for exact ownership.
	Products        []float32
	StyleIndices    []uint16
	Transformations []float32
	States          []uint8
	Normals         []uint8

	productIndex     map[int32]int
	transparentStart int
}

// Corners returns the number of entries in each per-corner stream.
func (g *ModelGeometry) Corners() int {
	return len(g.Indices)
}

// Product returns the product with the given id.
func (g *ModelGeometry) Product(id int32) (*Product, bool) {
	i, ok := g.productIndex[id]
	if !ok {
		return nil, false
	}
	return &g.ProductMap[i], true
}

// Style returns the style stored at a dense index.
func (g *ModelGeometry) Style(index uint16) (Style, bool) {
	if int(index) >= len(g.StyleMap) {
		return Style{}, false
	}
	return g.StyleMap[index], true
}

// Matrix returns the transform stored in a slot.
func (g *ModelGeometry) Matrix(slot TransformSlot) (math.Mat4, bool) {
	if !slot.Valid {
		return math.Identity(), true
	}
	off := slot.Index * 16
	if slot.Index < 0 || off+16 > len(g.Matrices) {
		return math.Mat4{}, false
	}
	return math.Mat4From(g.Matrices[off:]), true
}

// Bounds returns the union of all region boxes.
func (g *ModelGeometry) Bounds() (math.BBox, bool) {
	if len(g.Regions) == 0 {
		return math.BBox{}, false
	}
	b := g.Regions[0].Bounds()
	for _, r := range g.Regions[1:] {
		b = b.Union(r.Bounds())
	}
	return b, true
}

// SpanBounds returns the box around the corners of one span, in model
// space. Vertices are moved by the span's transform when it has one.
func (g *ModelGeometry) SpanBounds(s Span) (math.BBox, bool) {
	if s.Len() <= 0 || int(s.End) > len(g.Indices) {
		return math.BBox{}, false
	}

	var local math.BBox
	for i := s.Begin; i < s.End; i++ {
		v := math.Vec3From(g.Vertices[3*int(g.Indices[i]):])
		if i == s.Begin {
			local = math.BBox{Min: v, Max: v}
			continue
		}
		local.Min = local.Min.Min(v)
		local.Max = local.Max.Max(v)
	}

	m, ok := g.Matrix(TransformSlotOf(g.Transformations[s.Begin]))
	if !ok || m.IsIdentity() {
		return local, true
	}
	return local.Transform(m), true
}

// ProductExtent returns the box around every corner of a product. Unlike
// Product.Bounds it is computed from the decoded geometry.
func (g *ModelGeometry) ProductExtent(productID int32) (math.BBox, bool) {
	p, ok := g.Product(productID)
	if !ok {
		return math.BBox{}, false
	}
	var (
		out   math.BBox
		found bool
	)
	for _, s := range p.Spans {
		b, ok := g.SpanBounds(s)
		if !ok {
			continue
		}
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, found
}

// TransparentStart returns the first corner of the transparent range.
// Corners before it are opaque.
func (g *ModelGeometry) TransparentStart() int {
	return g.transparentStart
}

// SetState writes s over every corner of a product.
func (g *ModelGeometry) SetState(productID int32, s State) error {
	return g.eachCorner(productID, func(i int) {
		g.States[2*i] = uint8(s)
	})
}

// SetRestyle overrides the style of every corner of a product. Passing
// RestyleUnset restores the decoded style.
func (g *ModelGeometry) SetRestyle(productID int32, styleIndex uint8) error {
	if styleIndex != RestyleUnset && int(styleIndex) >= len(g.StyleMap) {
		return fmt.Errorf("%w: style index %d", ErrStyleNotFound, styleIndex)
	}
	return g.eachCorner(productID, func(i int) {
		g.States[2*i+1] = styleIndex
	})
}

// ProductState returns the state of the first corner of a product.
// Products without geometry report StateUndefined.
func (g *ModelGeometry) ProductState(productID int32) (State, error) {
	p, ok := g.Product(productID)
	if !ok {
		return 0, fmt.Errorf("%w: product %d", ErrProductNotFound, productID)
	}
	for _, s := range p.Spans {
		if s.Len() > 0 {
			return State(g.States[2*s.Begin]), nil
		}
	}
	return StateUndefined, nil
}

func (g *ModelGeometry) eachCorner(productID int32, fn func(int)) error {
	p, ok := g.Product(productID)
	if !ok {
		return fmt.Errorf("%w: product %d", ErrProductNotFound, productID)
	}
	for _, s := range p.Spans {
		for i := s.Begin; i < s.End; i++ {
			fn(int(i))
		}
	}
	return nil
}
