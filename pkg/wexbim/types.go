// Package wexbim decodes the compact binary model-geometry container into
// fixed-size, GPU-ready buffers for vertex-pulling renderers.
package wexbim

import (
	"fmt"

	"github.com/Faultbox/wexbim-go/pkg/math"
)

// MagicNumber identifies a model-geometry stream.
const MagicNumber int32 = 94132117

// Header holds the counts declared at the start of a stream. All buffer
// sizes derive from these values.
type Header struct {
	Version      uint8
	NumShapes    int32
	NumVertices  int32
	NumTriangles int32
	NumMatrices  int32
	NumProducts  int32
	NumStyles    int32
	Meter        float32 // Model units per real-world meter
	NumRegions   int16
}

// Region summarises a spatial cluster of elements.
type Region struct {
	Population int32
	Centre     [3]float32
	BBox       [6]float32 // min x,y,z then max x,y,z
}

// Bounds returns the region box as a math.BBox.
func (r Region) Bounds() math.BBox {
	return math.BBoxFrom(r.BBox)
}

// Style is one entry of the style table.
type Style struct {
	ID          int32
	Index       uint16 // Dense position in the styles buffer
	Color       [4]uint8
	Transparent bool
}

// ProductType classifies a product. Values follow the exporter's IFC type ids.
type ProductType int16

// Product types that are not rendered by default.
const (
	ProductTypeSpace          ProductType = 454
	ProductTypeOpeningElement ProductType = 498
)

// HiddenByDefault reports whether corners of this product type start hidden.
func (t ProductType) HiddenByDefault() bool {
	return t == ProductTypeSpace || t == ProductTypeOpeningElement
}

// String returns a human-readable type name.
func (t ProductType) String() string {
	switch t {
	case ProductTypeSpace:
		return "IfcSpace"
	case ProductTypeOpeningElement:
		return "IfcOpeningElement"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Span is a half-open range [Begin, End) of the per-corner output stream
// written for one shape instance.
type Span struct {
	Begin int32
	End   int32

	InstanceLabel int32
	InstanceType  int16
}

// Len returns the number of corners covered.
func (s Span) Len() int {
	return int(s.End - s.Begin)
}

// Product is a logical building element and the spans its instances occupy.
type Product struct {
	ID    int32
	Type  ProductType
	BBox  [6]float32
	Spans []Span
}

// Bounds returns the product box as a math.BBox.
func (p *Product) Bounds() math.BBox {
	return math.BBoxFrom(p.BBox)
}

// Corners returns the total number of corners across all spans.
func (p *Product) Corners() int {
	n := 0
	for _, s := range p.Spans {
		n += s.Len()
	}
	return n
}

// State is the first byte of the per-corner state pair.
type State uint8

// Defined states.
const (
	StateUndefined   State = 0xFF // Visible, default appearance
	StateHidden      State = 0xFE
	StateHighlighted State = 0xFD
	StateXRayVisible State = 0xFC
	StateUnstyled    State = 0xE1
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUndefined:
		return "Undefined"
	case StateHidden:
		return "Hidden"
	case StateHighlighted:
		return "Highlighted"
	case StateXRayVisible:
		return "XRayVisible"
	case StateUnstyled:
		return "Unstyled"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// RestyleUnset is the second byte of the state pair when no override style
// is applied.
const RestyleUnset uint8 = 0xFF

// noTransformValue is what the transformations buffer holds for instances
// that use shape space directly.
const noTransformValue = 0xFFFF

// TransformSlot refers to a 16-float block of the matrices buffer.
type TransformSlot struct {
	Index int
	Valid bool
}

// NoTransform marks an instance drawn in shared shape space.
var NoTransform = TransformSlot{}

// Value returns the encoding written to the transformations buffer.
func (s TransformSlot) Value() float32 {
	if !s.Valid {
		return noTransformValue
	}
	return float32(s.Index)
}

// TransformSlotOf decodes a transformations buffer entry.
func TransformSlotOf(v float32) TransformSlot {
	if v == noTransformValue {
		return NoTransform
	}
	return TransformSlot{Index: int(v), Valid: true}
}

// ShapeInstance is one placement of a shared shape.
type ShapeInstance struct {
	ProductID     int32
	InstanceType  int16
	InstanceLabel int32
	StyleIndex    uint16
	Transparent   bool
	Transform     TransformSlot
}
