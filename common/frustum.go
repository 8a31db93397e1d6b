package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the distance of p from the plane. Positive values are on the
// side the normal points to.
//
// Parameters:
//   - v: the world-space point
//
// Returns:
//   - float32: the signed distance
func (p Plane) SignedDistance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a combined View * Projection matrix
// using the Gribb/Hartmann method. Each plane is a sum or difference of the fourth
// matrix row with one of the first three.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the view-projection matrix (column-major, OpenGL clip conventions)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	rows := [6]mgl32.Vec4{
		FrustumLeft:   r3.Add(r0),
		FrustumRight:  r3.Sub(r0),
		FrustumBottom: r3.Add(r1),
		FrustumTop:    r3.Sub(r1),
		FrustumNear:   r3.Add(r2),
		FrustumFar:    r3.Sub(r2),
	}

	for i, r := range rows {
		f.Planes[i] = normalizedPlane(r)
	}
	return f
}

// IntersectsAABB reports whether the box touches the frustum. A box is rejected only
// when it lies entirely on the negative side of at least one plane, so boxes on the
// boundary count as visible.
//
// Parameters:
//   - box: the world-space bounds to test
//
// Returns:
//   - bool: false if the box is fully outside
func (f *Frustum) IntersectsAABB(box AABB) bool {
	for _, p := range f.Planes {
		// projected radius of the box onto the plane normal
		r := box.HalfExtents.X()*abs32(p.Normal.X()) +
			box.HalfExtents.Y()*abs32(p.Normal.Y()) +
			box.HalfExtents.Z()*abs32(p.Normal.Z())
		if p.SignedDistance(box.Center)+r < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether the sphere touches the frustum.
//
// Parameters:
//   - s: the world-space sphere to test
//
// Returns:
//   - bool: false if the sphere is fully outside
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// normalizedPlane builds a plane from (a, b, c, d) coefficients scaled so the normal has
// unit length. Degenerate rows are returned unscaled.
func normalizedPlane(v mgl32.Vec4) Plane {
	p := Plane{Normal: v.Vec3(), Distance: v.W()}
	if length := p.Normal.Len(); length > 0 {
		inv := 1.0 / length
		p.Normal = p.Normal.Mul(inv)
		p.Distance *= inv
	}
	return p
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
