package camera

import (
	"github.com/Carmen-Shannon/oxy-runtime/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithName sets the camera name.
func WithName(name string) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.name = name
	}
}

// WithScene attaches the camera to a scene.
//
// Parameters:
//   - s: the scene the camera culls
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's scene
func WithScene(s scene.Scene) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.scene = s
	}
}

// WithLookAt sets the camera position and look-at point.
//
// Parameters:
//   - pos: the camera position
//   - target: the look-at point
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's placement
func WithLookAt(pos, target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = pos
		c.target = target
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFov sets the camera's field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNearFar sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clipping planes
func WithNearFar(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithVisibility sets the layer mask of the camera. Defaults to VisibilityAll.
func WithVisibility(visibility uint32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.visibility = visibility
	}
}

// WithClearFlag sets the clear flags of the camera. Defaults to colour and depth.
//
// Parameters:
//   - flag: the clear flags
//
// Returns:
//   - CameraBuilderOption: a function that sets the clear flags
func WithClearFlag(flag ClearFlag) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.clearFlag = flag
	}
}

// WithController attaches a controller that drives position and target on Update.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: a function that sets the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
		if ctrl != nil {
			c.position = ctrl.Position()
			c.target = ctrl.Target()
		}
	}
}
