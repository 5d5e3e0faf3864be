package math

// BBox is an axis-aligned box stored as its minimum and maximum corners.
type BBox struct {
	Min, Max Vec3
}

// BBoxFrom builds a box from six floats laid out as min x,y,z then max x,y,z.
func BBoxFrom(s [6]float32) BBox {
	return BBox{
		Min: Vec3{s[0], s[1], s[2]},
		Max: Vec3{s[3], s[4], s[5]},
	}
}

// Array returns the box in its six-float stored layout.
func (b BBox) Array() [6]float32 {
	return [6]float32{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z}
}

// Size returns the extent along each axis.
func (b BBox) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Centre returns the midpoint of the box.
func (b BBox) Centre() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Union returns the smallest box containing both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Contains reports whether p lies inside or on the box.
func (b BBox) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transform returns the axis-aligned box enclosing all eight corners of b
// after transformation by m.
func (b BBox) Transform(m Mat4) BBox {
	var out BBox
	for i := 0; i < 8; i++ {
		c := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := m.TransformVec3(c)
		if i == 0 {
			out = BBox{Min: p, Max: p}
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}
