package culling

import (
	"github.com/Carmen-Shannon/oxy-runtime/engine/light"
	"github.com/Carmen-Shannon/oxy-runtime/engine/model"
)

// CullerBuilderOption is a functional option for configuring a Culler via NewCuller.
type CullerBuilderOption func(*cullerImpl)

// WithShadows sets the shadow state shared by every camera culled through the Culler.
//
// Parameters:
//   - shadows: the shadow state
//
// Returns:
//   - CullerBuilderOption: a function that applies the shadows option to a cullerImpl
func WithShadows(shadows *light.Shadows) CullerBuilderOption {
	return func(c *cullerImpl) {
		c.sceneData.Shadows = shadows
	}
}

// WithSkybox enables the skybox and sets its model.
//
// Parameters:
//   - m: the skybox model
//
// Returns:
//   - CullerBuilderOption: a function that applies the skybox option to a cullerImpl
func WithSkybox(m model.Model) CullerBuilderOption {
	return func(c *cullerImpl) {
		c.sceneData.Skybox = Skybox{Enabled: m != nil, Model: m}
	}
}

// WithPoolCapacity sets the number of render objects pre-allocated per list.
func WithPoolCapacity(n int) CullerBuilderOption {
	return func(c *cullerImpl) {
		if n > 0 {
			c.poolCapacity = n
		}
	}
}
