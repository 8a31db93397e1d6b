package light

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowsBuilderOption is a function that configures Shadows during construction.
type ShadowsBuilderOption func(*Shadows)

// WithShadowsEnabled is an option builder that turns shadows on or off.
//
// Parameters:
//   - enabled: true to enable shadows
//
// Returns:
//   - ShadowsBuilderOption: a function that applies the enabled option to Shadows
func WithShadowsEnabled(enabled bool) ShadowsBuilderOption {
	return func(s *Shadows) {
		s.Enabled = enabled
	}
}

// WithShadowType is an option builder that selects planar shadows or a shadow map.
//
// Parameters:
//   - t: the shadow type
//
// Returns:
//   - ShadowsBuilderOption: a function that applies the type option to Shadows
func WithShadowType(t ShadowType) ShadowsBuilderOption {
	return func(s *Shadows) {
		s.Type = t
	}
}

// WithShadowPlane is an option builder that sets the receiving plane of planar shadows.
// The normal is normalized before storing; a zero normal is ignored.
//
// Parameters:
//   - normal: the plane normal
//   - distance: the plane distance from the origin along the normal
//
// Returns:
//   - ShadowsBuilderOption: a function that applies the plane option to Shadows
func WithShadowPlane(normal mgl32.Vec3, distance float32) ShadowsBuilderOption {
	return func(s *Shadows) {
		if normal.Len() > 0 {
			s.Normal = normal.Normalize()
		}
		s.Distance = distance
	}
}

// WithShadowColor is an option builder that sets the linear RGBA shadow colour.
// Use ParseShadowColor to convert from an sRGB hex string.
func WithShadowColor(c mgl32.Vec4) ShadowsBuilderOption {
	return func(s *Shadows) {
		s.ShadowColor = c
	}
}

// WithShadowMap is an option builder that configures the shadow map projection.
//
// Parameters:
//   - size: the resolution in texels, zero keeps the default
//   - near: the near plane
//   - far: the far plane
//   - bias: the depth bias
//
// Returns:
//   - ShadowsBuilderOption: a function that applies the shadow map options to Shadows
func WithShadowMap(size uint32, near, far, bias float32) ShadowsBuilderOption {
	return func(s *Shadows) {
		if size > 0 {
			s.Size = size
		}
		s.Near = near
		s.Far = far
		s.Bias = bias
	}
}
