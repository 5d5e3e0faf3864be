package math

import "testing"

func translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

func scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	if !m.IsIdentity() {
		t.Error("IsIdentity() = false for Identity()")
	}
	if translate(1, 0, 0).IsIdentity() {
		t.Error("IsIdentity() = true for a translation")
	}
}

func TestMat4From(t *testing.T) {
	s := make([]float32, 20)
	for i := range s {
		s[i] = float32(i)
	}
	m := Mat4From(s[4:])
	if m[0] != 4 || m[15] != 19 {
		t.Errorf("Mat4From: got m[0]=%f m[15]=%f, want 4 and 19", m[0], m[15])
	}
}

func TestTransformVec3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		p    Vec3
		want Vec3
	}{
		{"identity", Identity(), Vec3{1, 2, 3}, Vec3{1, 2, 3}},
		{"translate", translate(10, 20, 30), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", scale(2, 2, 2), Vec3{1, 2, 3}, Vec3{2, 4, 6}},
		{"scale and translate", Mat4{2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 4, 0, 1, 1, 1, 1}, Vec3{1, 1, 1}, Vec3{3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformVec3(tt.p); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3From(t *testing.T) {
	if got := Vec3From([]float32{0, 1, 2, 3, 4}[1:]); got != (Vec3{1, 2, 3}) {
		t.Errorf("Vec3From: got %v", got)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}

	if got := a.Min(b); got != (Vec3{1, -1, -2}) {
		t.Errorf("Min: got %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, 0}) {
		t.Errorf("Max: got %v", got)
	}
	if got := (Vec3{3, 4, 0}).Length(); got != 5 {
		t.Errorf("Length: got %f, want 5", got)
	}
}

func TestBBox(t *testing.T) {
	b := BBoxFrom([6]float32{0, 0, 0, 2, 4, 6})

	if b.Size() != (Vec3{2, 4, 6}) {
		t.Errorf("Size: got %v", b.Size())
	}
	if b.Centre() != (Vec3{1, 2, 3}) {
		t.Errorf("Centre: got %v", b.Centre())
	}
	if b.Array() != [6]float32{0, 0, 0, 2, 4, 6} {
		t.Errorf("Array: got %v", b.Array())
	}
	if !b.Contains(Vec3{1, 1, 1}) || b.Contains(Vec3{3, 1, 1}) {
		t.Error("Contains returned wrong result")
	}

	u := b.Union(BBoxFrom([6]float32{-1, 1, 1, 1, 5, 5}))
	if u.Min != (Vec3{-1, 0, 0}) || u.Max != (Vec3{2, 5, 6}) {
		t.Errorf("Union: got %v", u)
	}
}

func TestBBoxTransform(t *testing.T) {
	b := BBoxFrom([6]float32{0, 0, 0, 1, 1, 1})

	moved := b.Transform(translate(10, 0, -5))
	if moved.Min != (Vec3{10, 0, -5}) || moved.Max != (Vec3{11, 1, -4}) {
		t.Errorf("translated box: got %v", moved)
	}

	flipped := b.Transform(scale(-2, 1, 1))
	if flipped.Min != (Vec3{-2, 0, 0}) || flipped.Max != (Vec3{0, 1, 1}) {
		t.Errorf("mirrored box: got %v", flipped)
	}
}
