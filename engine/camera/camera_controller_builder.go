package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*orbitController)

// WithRadius sets the initial distance from the target.
//
// Parameters:
//   - radius: distance from target
//
// Returns:
//   - CameraControllerOption: a function that sets the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle in radians.
//
// Parameters:
//   - azimuth: horizontal angle around the Y axis
//
// Returns:
//   - CameraControllerOption: a function that sets the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle in radians.
//
// Parameters:
//   - elevation: vertical angle from the horizontal plane
//
// Returns:
//   - CameraControllerOption: a function that sets the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.elevation = elevation
	}
}

// WithTarget sets the pivot point.
//
// Parameters:
//   - target: world-space coordinates
//
// Returns:
//   - CameraControllerOption: a function that sets the target
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *orbitController) {
		cc.target = target
	}
}

// WithRadiusBounds sets the minimum and maximum orbit radius.
//
// Parameters:
//   - lo: minimum radius
//   - hi: maximum radius
//
// Returns:
//   - CameraControllerOption: a function that sets the radius bounds
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.minRadius = lo
		cc.maxRadius = hi
	}
}

// WithElevationBounds sets the minimum and maximum elevation in radians.
//
// Parameters:
//   - lo: minimum elevation
//   - hi: maximum elevation
//
// Returns:
//   - CameraControllerOption: a function that sets the elevation bounds
func WithElevationBounds(lo, hi float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.minElevation = lo
		cc.maxElevation = hi
	}
}

// WithZoomSpeed sets the multiplier applied to Zoom deltas.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.zoomSpeed = speed
	}
}

// WithAutoOrbit sets the azimuth speed in radians per second applied by Advance.
func WithAutoOrbit(speed float32) CameraControllerOption {
	return func(cc *orbitController) {
		cc.autoSpeed = speed
	}
}
