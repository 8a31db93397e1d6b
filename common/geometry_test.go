package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func approxVec3(a, b mgl32.Vec3) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

func testFrustum() Frustum {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	return ExtractFrustum(proj.Mul4(view))
}

func TestMergeAABB(t *testing.T) {
	a := NewAABBFromMinMax(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	b := NewAABBFromMinMax(mgl32.Vec3{-2, 0.5, 0}, mgl32.Vec3{0, 3, 0.5})

	m := MergeAABB(a, b)
	if !approxVec3(m.Min(), mgl32.Vec3{-2, 0, 0}) {
		t.Errorf("expected min (-2, 0, 0), got %v", m.Min())
	}
	if !approxVec3(m.Max(), mgl32.Vec3{1, 3, 1}) {
		t.Errorf("expected max (1, 3, 1), got %v", m.Max())
	}
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Center: mgl32.Vec3{1, 0, 0}, HalfExtents: mgl32.Vec3{1, 2, 3}}

	moved := box.Transform(mgl32.Translate3D(0, 5, 0))
	if !approxVec3(moved.Center, mgl32.Vec3{1, 5, 0}) {
		t.Errorf("expected center (1, 5, 0), got %v", moved.Center)
	}
	if !approxVec3(moved.HalfExtents, box.HalfExtents) {
		t.Errorf("translation changed extents: %v", moved.HalfExtents)
	}

	rotated := box.Transform(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))
	if !approxVec3(rotated.HalfExtents, mgl32.Vec3{2, 1, 3}) {
		t.Errorf("expected extents (2, 1, 3), got %v", rotated.HalfExtents)
	}
	if !approxVec3(rotated.Center, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("expected center (0, 1, 0), got %v", rotated.Center)
	}
}

func TestToBoundingSphere(t *testing.T) {
	box := AABB{Center: mgl32.Vec3{1, 2, 3}, HalfExtents: mgl32.Vec3{2, 3, 6}}
	s := box.ToBoundingSphere()
	if s.Center != box.Center {
		t.Errorf("expected center %v, got %v", box.Center, s.Center)
	}
	if !approx(s.Radius, 7) {
		t.Errorf("expected radius 7, got %f", s.Radius)
	}
	if s.Empty() {
		t.Error("expected non-empty sphere")
	}
	if !(Sphere{}).Empty() {
		t.Error("expected zero sphere to be empty")
	}
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := testFrustum()

	cases := []struct {
		name string
		box  AABB
		want bool
	}{
		{"in front", AABB{Center: mgl32.Vec3{0, 0, -10}, HalfExtents: mgl32.Vec3{1, 1, 1}}, true},
		{"behind", AABB{Center: mgl32.Vec3{0, 0, 10}, HalfExtents: mgl32.Vec3{1, 1, 1}}, false},
		{"far right", AABB{Center: mgl32.Vec3{100, 0, -10}, HalfExtents: mgl32.Vec3{1, 1, 1}}, false},
		{"beyond far", AABB{Center: mgl32.Vec3{0, 0, -200}, HalfExtents: mgl32.Vec3{1, 1, 1}}, false},
		{"straddling near", AABB{Center: mgl32.Vec3{0, 0, 0}, HalfExtents: mgl32.Vec3{1, 1, 1}}, true},
	}
	for _, c := range cases {
		if got := f.IntersectsAABB(c.box); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := testFrustum()
	if !f.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, -50}, Radius: 1}) {
		t.Error("expected sphere in front to intersect")
	}
	if f.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, 20}, Radius: 5}) {
		t.Error("expected sphere behind camera to be rejected")
	}
	if !f.IntersectsSphere(Sphere{Center: mgl32.Vec3{0, 0, 3}, Radius: 5}) {
		t.Error("expected sphere overlapping the near plane to intersect")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
