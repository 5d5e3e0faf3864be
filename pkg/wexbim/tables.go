package wexbim

import (
	"fmt"
	"math"
)

// Fixed-size records as stored in the stream.
type (
	regionRecord struct {
		Population int32
		Centre     [3]float32
		BBox       [6]float32
	}
	styleRecord struct {
		ID    int32
		Color [4]float32 // RGBA in 0-1
	}
	productRecord struct {
		ID   int32
		Type int16
		BBox [6]float32
	}
	instanceRecord struct {
		ProductID     int32
		InstanceType  int16
		InstanceLabel int32
		StyleID       int32
	}
)

// transparencyThreshold is the alpha byte below which a style blends.
const transparencyThreshold = 254

// readRegions decodes the region table.
func (p *parser) readRegions(n int) error {
	p.g.Regions = make([]Region, n)
	for i := 0; i < n; i++ {
		var rec regionRecord
		if err := p.r.Struct(&rec); err != nil {
			return readErr(fmt.Sprintf("region %d", i), err)
		}
		p.g.Regions[i] = Region(rec)
	}
	return nil
}

// readStyles decodes the style table into the styles buffer and the id lookup.
func (p *parser) readStyles(n int) error {
	p.g.StyleMap = make([]Style, n)
	p.styles = make(map[int32]*Style, n)

	for i := 0; i < n; i++ {
		var rec styleRecord
		if err := p.r.Struct(&rec); err != nil {
			return readErr(fmt.Sprintf("style %d", i), err)
		}

		style := &p.g.StyleMap[i]
		style.ID = rec.ID
		style.Index = uint16(i)
		for c, v := range rec.Color {
			style.Color[c] = colorByte(v)
		}
		style.Transparent = rec.Color[3]*255 < transparencyThreshold
		copy(p.g.Styles[i*4:], style.Color[:])

		if _, dup := p.styles[rec.ID]; dup && p.opts.Duplicates == RejectDuplicates {
			return fmt.Errorf("%w: style %d", ErrDuplicateID, rec.ID)
		}
		p.styles[rec.ID] = style
	}
	return nil
}

// readProducts decodes the product table and registers every product by id.
func (p *parser) readProducts(n int) error {
	p.g.ProductMap = make([]Product, n)
	p.g.productIndex = make(map[int32]int, n)

	for i := 0; i < n; i++ {
		var rec productRecord
		if err := p.r.Struct(&rec); err != nil {
			return readErr(fmt.Sprintf("product %d", i), err)
		}

		p.g.ProductMap[i] = Product{
			ID:   rec.ID,
			Type: ProductType(rec.Type),
			BBox: rec.BBox,
		}

		if _, dup := p.g.productIndex[rec.ID]; dup && p.opts.Duplicates == RejectDuplicates {
			return fmt.Errorf("%w: product %d", ErrDuplicateID, rec.ID)
		}
		p.g.productIndex[rec.ID] = i
	}
	return nil
}

// colorByte scales a 0-1 channel to a byte, truncating toward zero.
func colorByte(v float32) uint8 {
	f := float64(v) * 255
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}
