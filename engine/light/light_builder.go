package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// LightBuilderOption configures a light created by NewLight.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position. Directional lights ignore it.
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection sets the light direction, or the cone axis of a spot light.
// A zero vector is kept as zero; anything else is normalized.
//
// Parameters:
//   - x, y, z: direction components in world space
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize3(x, y, z)
	}
}

// WithColor sets the linear RGB colour.
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithColorHex sets the colour from an sRGB hex string such as "#ffd8a0". An invalid string
// leaves the colour unchanged.
//
// Parameters:
//   - hex: the colour in #rrggbb form
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithColorHex(hex string) LightBuilderOption {
	return func(l *lightImpl) {
		c, err := colorful.Hex(hex)
		if err != nil {
			return
		}
		r, g, b := c.LinearRgb()
		l.color = mgl32.Vec3{float32(r), float32(g), float32(b)}
	}
}

func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange sets the radius of the influence sphere used by light collection.
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotCone sets the inner and outer cone half-angles of a spot light in degrees.
// Both are stored as cosines.
//
// Parameters:
//   - innerDeg: inner half-angle
//   - outerDeg: outer half-angle
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	}
}

// WithEnabled sets whether light collection considers the light.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

func WithName(name string) LightBuilderOption {
	return func(l *lightImpl) {
		l.name = name
	}
}

// WithCastsShadows marks the light as a shadow source. Only the scene's main directional
// light feeds planar projection.
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

func normalize3(x, y, z float32) mgl32.Vec3 {
	v := mgl32.Vec3{x, y, z}
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(mgl32.DegToRad(deg))))
}
