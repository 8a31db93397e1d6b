package light

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-runtime/common"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// ShadowType selects how shadows are produced.
type ShadowType int

const (
	// ShadowTypePlanar flattens casters onto a single receiving plane with a projection
	// matrix. No caster list is kept.
	ShadowTypePlanar ShadowType = iota

	// ShadowTypeShadowMap renders casters into a depth texture. Culling collects the
	// caster list and the bounding sphere that sizes the light frustum.
	ShadowTypeShadowMap
)

// ShadowMapResolution is the default width and height in texels of the shadow
// depth texture.
const ShadowMapResolution = 2048

// DefaultShadowNear is the default near plane of the shadow light projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane of the shadow light projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// CoefficientOfExpansion scales the caster sphere radius when placing the shadow camera
// behind the casters.
var CoefficientOfExpansion = float32(2 * math.Sqrt(3))

// PlaneEpsilon is added to the receiving plane distance so the flattened casters do not
// z-fight with the plane.
const PlaneEpsilon float32 = 0.001

// DefaultShadowColor is the linear RGBA colour of planar shadows: black at 30% opacity.
var DefaultShadowColor = mgl32.Vec4{0, 0, 0, 76.0 / 255.0}

// Shadows is the camera independent shadow state of a scene. The culling pass recomputes
// MatLight and Sphere every frame a shadow-casting light exists.
type Shadows struct {
	Enabled bool
	Type    ShadowType

	// Normal and Distance describe the receiving plane n·p = d of planar shadows.
	Normal   mgl32.Vec3
	Distance float32

	// ShadowColor is the linear RGBA colour written to the shadow uniform block.
	ShadowColor mgl32.Vec4

	// MatLight is the planar projection or the shadow light transform.
	MatLight mgl32.Mat4

	// Sphere bounds every shadow caster of the last culled frame. SphereValid is false
	// when no model cast a shadow, in which case Sphere is empty.
	Sphere      common.Sphere
	SphereValid bool

	// Size is the shadow map resolution; Near, Far and Bias configure its projection.
	Size uint32
	Near float32
	Far  float32
	Bias float32
}

// NewShadows creates disabled planar shadows on the y = 0 plane with any provided
// options applied.
//
// Parameters:
//   - options: a variadic list of ShadowsBuilderOption functions
//
// Returns:
//   - *Shadows: the shadow state
func NewShadows(options ...ShadowsBuilderOption) *Shadows {
	s := &Shadows{
		Type:        ShadowTypePlanar,
		Normal:      mgl32.Vec3{0, 1, 0},
		ShadowColor: DefaultShadowColor,
		MatLight:    mgl32.Ident4(),
		Size:        ShadowMapResolution,
		Near:        DefaultShadowNear,
		Far:         DefaultShadowFar,
		Bias:        DefaultShadowBias,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// SetShadowColorHex sets the shadow colour from an sRGB hex string such as "#00000040".
//
// Parameters:
//   - hex: "#rrggbb" or "#rrggbbaa"
//
// Returns:
//   - error: error if hex is not a valid colour
func (s *Shadows) SetShadowColorHex(hex string) error {
	c, err := ParseShadowColor(hex)
	if err != nil {
		return err
	}
	s.ShadowColor = c
	return nil
}

// ParseShadowColor converts an sRGB hex string to linear RGBA. A missing alpha byte
// means fully opaque.
//
// Parameters:
//   - hex: "#rrggbb" or "#rrggbbaa"
//
// Returns:
//   - mgl32.Vec4: the linear colour
//   - error: error if hex is not a valid colour
func ParseShadowColor(hex string) (mgl32.Vec4, error) {
	alpha := float32(1)
	rgb := hex
	if len(hex) == 9 {
		var a uint8
		if _, err := fmt.Sscanf(hex[7:], "%02x", &a); err != nil {
			return mgl32.Vec4{}, fmt.Errorf("invalid shadow colour alpha %q: %w", hex, err)
		}
		alpha = float32(a) / 255
		rgb = hex[:7]
	}
	c, err := colorful.Hex(rgb)
	if err != nil {
		return mgl32.Vec4{}, fmt.Errorf("invalid shadow colour %q: %w", hex, err)
	}
	r, g, b := c.LinearRgb()
	return mgl32.Vec4{float32(r), float32(g), float32(b), alpha}, nil
}
