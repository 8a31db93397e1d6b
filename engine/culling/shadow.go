package culling

import (
	"github.com/Carmen-Shannon/oxy-runtime/engine/light"

	"github.com/go-gl/mathgl/mgl32"
)

// UpdatePlanarProj computes the matrix that flattens geometry onto the receiving plane
// of shadows along the direction of a directional light. The result is stored in
// shadows.MatLight and written to the plane projection range of ubo when ubo is not nil.
//
// Parameters:
//   - shadows: the shadow state providing the plane and receiving the matrix
//   - l: the directional light
//   - ubo: the shadow uniform block, may be nil
func UpdatePlanarProj(shadows *light.Shadows, l light.Light, ubo *light.UBOShadow) {
	dir := l.Direction()
	n := shadows.Normal
	d := shadows.Distance + light.PlaneEpsilon

	ndl := n.Dot(dir)
	if ndl == 0 {
		return
	}
	lv := dir.Mul(1 / ndl)
	lx, ly, lz := lv.Elem()
	nx, ny, nz := n.Elem()

	shadows.MatLight = mgl32.Mat4{
		1 - nx*lx, -nx * ly, -nx * lz, 0,
		-ny * lx, 1 - ny*ly, -ny * lz, 0,
		-nz * lx, -nz * ly, 1 - nz*lz, 0,
		lx * d, ly * d, lz * d, 1,
	}
	if ubo != nil {
		ubo.SetMat4(light.UBOShadowMatLightPlaneProjOffset, shadows.MatLight)
	}
}

// UpdateSphereLight computes the planar projection matrix for a point light, projecting
// from the light position onto the receiving plane.
//
// Parameters:
//   - shadows: the shadow state providing the plane and receiving the matrix
//   - l: the point light
//   - ubo: the shadow uniform block, may be nil
func UpdateSphereLight(shadows *light.Shadows, l light.Light, ubo *light.UBOShadow) {
	pos := l.Position()
	n := shadows.Normal
	d := shadows.Distance + light.PlaneEpsilon

	ndl := n.Dot(pos)
	lx, ly, lz := pos.Elem()
	nx, ny, nz := n.Elem()

	shadows.MatLight = mgl32.Mat4{
		ndl - d - lx*nx, -ly * nx, -lz * nx, -nx,
		-lx * ny, ndl - d - ly*ny, -lz * ny, -ny,
		-lx * nz, -ly * nz, ndl - d - lz*nz, -nz,
		lx * d, ly * d, lz * d, ndl,
	}
	if ubo != nil {
		ubo.SetMat4(light.UBOShadowMatLightPlaneProjOffset, shadows.MatLight)
	}
}

// ShadowWorldMatrix places a shadow camera behind the caster sphere of shadows, looking
// along dir, far enough back to see every caster.
//
// Parameters:
//   - shadows: the shadow state providing the caster sphere
//   - rotation: the light rotation
//   - dir: the light direction
//
// Returns:
//   - mgl32.Mat4: the shadow camera world matrix
//   - mgl32.Vec3: the shadow camera position
func ShadowWorldMatrix(shadows *light.Shadows, rotation mgl32.Quat, dir mgl32.Vec3) (mgl32.Mat4, mgl32.Vec3) {
	distance := shadows.Sphere.Radius * light.CoefficientOfExpansion
	pos := dir.Mul(-distance).Add(shadows.Sphere.Center)
	m := mgl32.Translate3D(pos[0], pos[1], pos[2]).Mul4(rotation.Normalize().Mat4())
	return m, pos
}
