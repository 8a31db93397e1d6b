package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box stored as a center and half extents.
type AABB struct {
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
}

// Sphere is a bounding sphere. A zero radius sphere is treated as empty.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// NewAABBFromMinMax creates a box spanning the two corners.
//
// Parameters:
//   - minV: the minimum corner
//   - maxV: the maximum corner
//
// Returns:
//   - AABB: the box covering [minV, maxV]
func NewAABBFromMinMax(minV, maxV mgl32.Vec3) AABB {
	return AABB{
		Center:      minV.Add(maxV).Mul(0.5),
		HalfExtents: maxV.Sub(minV).Mul(0.5),
	}
}

// Min returns the minimum corner of the box.
func (a AABB) Min() mgl32.Vec3 {
	return a.Center.Sub(a.HalfExtents)
}

// Max returns the maximum corner of the box.
func (a AABB) Max() mgl32.Vec3 {
	return a.Center.Add(a.HalfExtents)
}

// MergeAABB returns the smallest box containing both a and b.
//
// Parameters:
//   - a: the first box
//   - b: the second box
//
// Returns:
//   - AABB: the union of both boxes
func MergeAABB(a, b AABB) AABB {
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	minV := mgl32.Vec3{min(aMin[0], bMin[0]), min(aMin[1], bMin[1]), min(aMin[2], bMin[2])}
	maxV := mgl32.Vec3{max(aMax[0], bMax[0]), max(aMax[1], bMax[1]), max(aMax[2], bMax[2])}
	return NewAABBFromMinMax(minV, maxV)
}

// Transform returns the box enclosing a after it has been transformed by m. The center
// is transformed as a point and the extents by the absolute rotation-scale part of m.
//
// Parameters:
//   - m: the model-to-world matrix
//
// Returns:
//   - AABB: the world-space box
func (a AABB) Transform(m mgl32.Mat4) AABB {
	center := m.Mul4x1(a.Center.Vec4(1)).Vec3()
	var half mgl32.Vec3
	for row := 0; row < 3; row++ {
		half[row] = abs32(m.At(row, 0))*a.HalfExtents[0] +
			abs32(m.At(row, 1))*a.HalfExtents[1] +
			abs32(m.At(row, 2))*a.HalfExtents[2]
	}
	return AABB{Center: center, HalfExtents: half}
}

// ToBoundingSphere returns the sphere centered on the box that touches its corners.
//
// Returns:
//   - Sphere: the enclosing sphere
func (a AABB) ToBoundingSphere() Sphere {
	return Sphere{Center: a.Center, Radius: a.HalfExtents.Len()}
}

// Empty reports whether the sphere has no volume.
func (s Sphere) Empty() bool {
	return s.Radius <= 0
}
