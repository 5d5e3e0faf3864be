package wexbim

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/wexbim-go/pkg/binreader"
)

// DuplicatePolicy decides what happens when a style or product id repeats.
type DuplicatePolicy int

const (
	// RejectDuplicates fails the decode with ErrDuplicateID.
	RejectDuplicates DuplicatePolicy = iota
	// LastWins lets the later record shadow the earlier one in lookups.
	// Both records keep their own buffer slot.
	LastWins
)

// String returns the config spelling of the policy.
func (d DuplicatePolicy) String() string {
	switch d {
	case RejectDuplicates:
		return "reject"
	case LastWins:
		return "last_wins"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(d))
	}
}

// ParseDuplicatePolicy parses "reject" or "last_wins".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RejectDuplicates, nil
	case "last_wins", "last-wins":
		return LastWins, nil
	default:
		return 0, fmt.Errorf("%w: unknown duplicate id policy %q", ErrArgument, s)
	}
}

// Options configures a Decoder. The zero value is usable.
type Options struct {
	Logger     *zap.Logger  // Defaults to a no-op logger
	Shapes     ShapeDecoder // Defaults to TriangulatedShapeDecoder
	Duplicates DuplicatePolicy
}

// Decoder turns model-geometry streams into ModelGeometry values.
type Decoder struct {
	opts Options
}

// NewDecoder returns a Decoder with the given options.
func NewDecoder(opts Options) *Decoder {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Shapes == nil {
		opts.Shapes = TriangulatedShapeDecoder{}
	}
	return &Decoder{opts: opts}
}

// Parse decodes data with default options.
func Parse(data []byte) (*ModelGeometry, error) {
	return NewDecoder(Options{}).Decode(data)
}

// ParseFile decodes a model-geometry file from disk with default options.
func ParseFile(path string) (*ModelGeometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wexbim file: %w", err)
	}
	return Parse(data)
}

// Decode runs a single pass over data. On error no geometry is returned.
func (d *Decoder) Decode(data []byte) (*ModelGeometry, error) {
	p := &parser{
		r:      binreader.New(data),
		opts:   d.opts,
		log:    d.opts.Logger,
		shapes: d.opts.Shapes,
		g:      &ModelGeometry{},
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.g, nil
}

// parser holds the write cursors of one decode.
type parser struct {
	r      *binreader.Reader
	opts   Options
	log    *zap.Logger
	shapes ShapeDecoder
	g      *ModelGeometry
	styles map[int32]*Style

	vertex    int // next free float in Vertices
	forward   int // opaque corners grow up from 0
	backward  int // transparent corners grow down from the top
	matrix    int // next free float in Matrices
	transform int // next transform slot
}

func (p *parser) parse() error {
	if err := p.readHeader(); err != nil {
		return err
	}
	h := p.g.Header

	if err := p.allocate(); err != nil {
		return err
	}
	if err := p.readRegions(int(h.NumRegions)); err != nil {
		return err
	}
	if err := p.readStyles(int(h.NumStyles)); err != nil {
		return err
	}
	if err := p.readProducts(int(h.NumProducts)); err != nil {
		return err
	}

	for i := int32(0); i < h.NumShapes; i++ {
		if err := p.readShape(); err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
	}

	if !p.r.EOF() {
		return fmt.Errorf("%w: %d bytes left at offset %d", ErrTrailingData, p.r.Len(), p.r.Pos())
	}
	if p.forward != p.backward {
		return fmt.Errorf("%w: opaque cursor %d, transparent cursor %d", ErrCursorMismatch, p.forward, p.backward)
	}
	p.g.transparentStart = p.forward

	p.log.Debug("wexbim decoded",
		zap.Int("corners", p.forward),
		zap.Int("vertexFloats", p.vertex),
		zap.Int("transforms", p.transform))
	return nil
}

// readHeader validates the magic number and reads the declared counts.
func (p *parser) readHeader() error {
	magic, err := p.r.Int32()
	if err != nil {
		return readErr("magic number", err)
	}
	if magic != MagicNumber {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, magic, MagicNumber)
	}

	h := &p.g.Header
	if err := p.r.Struct(h); err != nil {
		return readErr("header", err)
	}

	counts := []struct {
		name string
		n    int32
	}{
		{"shapes", h.NumShapes},
		{"vertices", h.NumVertices},
		{"triangles", h.NumTriangles},
		{"matrices", h.NumMatrices},
		{"products", h.NumProducts},
		{"styles", h.NumStyles},
		{"regions", int32(h.NumRegions)},
	}
	for _, c := range counts {
		if c.n < 0 {
			return fmt.Errorf("%w: %d %s", ErrInvalidCount, c.n, c.name)
		}
	}
	// Dense style indices are stored as uint16.
	if h.NumStyles > 1<<16 {
		return fmt.Errorf("%w: %d styles", ErrInvalidCount, h.NumStyles)
	}

	p.g.Meter = h.Meter
	p.log.Debug("wexbim header",
		zap.Uint8("version", h.Version),
		zap.Int32("shapes", h.NumShapes),
		zap.Int32("vertices", h.NumVertices),
		zap.Int32("triangles", h.NumTriangles),
		zap.Int32("matrices", h.NumMatrices),
		zap.Int32("products", h.NumProducts),
		zap.Int32("styles", h.NumStyles),
		zap.Int16("regions", h.NumRegions),
		zap.Float32("meter", h.Meter))
	return nil
}

// allocate sizes every output buffer from the header. Nothing grows later.
func (p *parser) allocate() error {
	h := p.g.Header
	corners := int(h.NumTriangles) * 3

	vertices, err := SquareLength(ArityFloat32, int(h.NumVertices)*3)
	if err != nil {
		return err
	}
	styles, err := SquareLength(ArityByte, int(h.NumStyles)*4)
	if err != nil {
		return err
	}
	matrices, err := SquareLength(ArityFloat32, int(h.NumMatrices)*16)
	if err != nil {
		return err
	}

	g := p.g
	g.Vertices = make([]float32, vertices)
	g.Styles = make([]uint8, styles)
	g.Matrices = make([]float32, matrices)
	g.Normals = make([]uint8, corners*2)
	g.Indices = make([]float32, corners)
	g.Products = make([]float32, corners)
	g.StyleIndices = make([]uint16, corners)
	g.Transformations = make([]float32, corners)
	g.States = make([]uint8, corners*2)

	p.backward = corners
	return nil
}

// readShape reads one shape's instance list and local geometry, then merges
// every instance into the output buffers.
func (p *parser) readShape() error {
	repetition, err := p.r.Int32()
	if err != nil {
		return readErr("repetition", err)
	}
	if repetition < 0 {
		return fmt.Errorf("%w: repetition %d", ErrInvalidCount, repetition)
	}

	instances := make([]ShapeInstance, 0, min(int(repetition), p.r.Len()/14))
	for i := int32(0); i < repetition; i++ {
		inst, err := p.readInstance(repetition > 1)
		if err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
		instances = append(instances, inst)
	}

	shape, err := p.shapes.DecodeShape(p.r)
	if err != nil {
		return err
	}
	if err := shape.validate(); err != nil {
		return err
	}

	for i := range instances {
		if err := p.place(&instances[i], shape); err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
	}

	// Appended after all instances so they share the pre-append vertex base.
	if p.vertex+len(shape.Vertices) > len(p.g.Vertices) {
		return fmt.Errorf("%w: vertices %d+%d over %d", ErrBufferOverflow, p.vertex, len(shape.Vertices), len(p.g.Vertices))
	}
	copy(p.g.Vertices[p.vertex:], shape.Vertices)
	p.vertex += len(shape.Vertices)
	return nil
}

// readInstance reads one instance record and, for repeated shapes, its matrix.
func (p *parser) readInstance(transformed bool) (ShapeInstance, error) {
	var rec instanceRecord
	if err := p.r.Struct(&rec); err != nil {
		return ShapeInstance{}, readErr("instance", err)
	}

	slot := NoTransform
	if transformed {
		m, err := p.r.Matrix4x4()
		if err != nil {
			return ShapeInstance{}, readErr("transform", err)
		}
		if p.matrix+16 > len(p.g.Matrices) || p.transform >= noTransformValue {
			return ShapeInstance{}, fmt.Errorf("%w: transform slot %d", ErrBufferOverflow, p.transform)
		}
		copy(p.g.Matrices[p.matrix:], m[:])
		p.matrix += 16
		slot = TransformSlot{Index: p.transform, Valid: true}
		p.transform++
	}

	style, ok := p.styles[rec.StyleID]
	if !ok {
		return ShapeInstance{}, fmt.Errorf("%w: style %d", ErrStyleNotFound, rec.StyleID)
	}

	return ShapeInstance{
		ProductID:     rec.ProductID,
		InstanceType:  rec.InstanceType,
		InstanceLabel: rec.InstanceLabel,
		StyleIndex:    style.Index,
		Transparent:   style.Transparent,
		Transform:     slot,
	}, nil
}

// place writes one instance of shape into the per-corner buffers. Opaque
// instances fill from the bottom, transparent ones from the top, so a
// renderer can draw the two ranges without sorting.
func (p *parser) place(inst *ShapeInstance, shape *ShapeGeometry) error {
	pi, ok := p.g.productIndex[inst.ProductID]
	if !ok {
		return fmt.Errorf("%w: product %d", ErrProductNotFound, inst.ProductID)
	}
	product := &p.g.ProductMap[pi]

	n := len(shape.Indices)
	cursor := p.forward
	if inst.Transparent {
		cursor = p.backward - n
	}
	if cursor < p.forward || cursor+n > p.backward {
		return fmt.Errorf("%w: %d corners at %d, free range [%d, %d)", ErrBufferOverflow, n, cursor, p.forward, p.backward)
	}

	g := p.g
	begin := cursor
	copy(g.Normals[cursor*2:], shape.Normals)

	base := p.vertex / 3
	state := StateUndefined
	if product.Type.HiddenByDefault() {
		state = StateHidden
	}
	productID := float32(inst.ProductID)
	transform := inst.Transform.Value()

	for _, idx := range shape.Indices {
		g.Indices[cursor] = float32(int(idx) + base)
		g.Products[cursor] = productID
		g.StyleIndices[cursor] = inst.StyleIndex
		g.Transformations[cursor] = transform
		g.States[2*cursor] = uint8(state)
		g.States[2*cursor+1] = RestyleUnset
		cursor++
	}

	product.Spans = append(product.Spans, Span{
		Begin:         int32(begin),
		End:           int32(cursor),
		InstanceLabel: inst.InstanceLabel,
		InstanceType:  inst.InstanceType,
	})

	if inst.Transparent {
		p.backward -= n
	} else {
		p.forward += n
	}
	return nil
}
