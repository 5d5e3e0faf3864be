package wexbim

import (
	"fmt"
	"math"
)

// Element byte widths of the texture-packed buffers.
const (
	ArityByte    = 1
	ArityFloat32 = 4
)

// SquareLength returns the number of elements to allocate for count
// elements of the given byte width so the buffer packs into a square RGBA
// texture. The result is never smaller than count and is 0 for count 0.
func SquareLength(arity, count int) (int, error) {
	if arity <= 0 || count < 0 {
		return 0, fmt.Errorf("%w: arity=%d count=%d", ErrInvalidDimension, arity, count)
	}
	if count == 0 {
		return 0, nil
	}

	byteLength := count * arity
	side := int(math.Ceil(math.Sqrt(float64(byteLength) / 4)))

	// Each texel row must hold a whole number of elements.
	for (side*4)%arity != 0 {
		side++
	}

	return side * side * 4 / arity, nil
}

// TextureSide returns the side in texels of a square RGBA texture holding
// length elements of the given width, as sized by SquareLength.
func TextureSide(arity, length int) int {
	if length == 0 {
		return 0
	}
	return int(math.Sqrt(float64(length*arity) / 4))
}
