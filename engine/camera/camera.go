package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// ClearFlag selects which buffers a camera clears before drawing.
type ClearFlag uint32

const (
	ClearFlagColor   ClearFlag = 1 << 0
	ClearFlagDepth   ClearFlag = 1 << 1
	ClearFlagStencil ClearFlag = 1 << 2
	// ClearFlagSkybox draws the skybox in place of the colour clear.
	ClearFlagSkybox ClearFlag = 1 << 3
)

// VisibilityAll matches every layer.
const VisibilityAll uint32 = math.MaxUint32

type cameraImpl struct {
	mu *sync.RWMutex

	name  string
	scene scene.Scene

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	visibility uint32
	clearFlag  ClearFlag

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	frustum              common.Frustum

	controller CameraController
}

// Camera holds a perspective view of a scene. Update recomputes the view and projection
// matrices and the world-space frustum that culling tests against.
type Camera interface {
	// Name returns the camera name.
	Name() string

	// Scene returns the scene the camera looks at, or nil.
	//
	// Returns:
	//   - scene.Scene: the scene or nil
	Scene() scene.Scene

	// SetScene attaches the camera to a scene.
	//
	// Parameters:
	//   - s: the scene
	SetScene(s scene.Scene)

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Forward returns the unit view direction, or the zero vector when position and
	// target coincide.
	//
	// Returns:
	//   - mgl32.Vec3: the forward axis
	Forward() mgl32.Vec3

	// LookAt places the camera at pos looking at target and recomputes matrices.
	//
	// Parameters:
	//   - pos: the camera position
	//   - target: the look-at point
	LookAt(pos, target mgl32.Vec3)

	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// SetUp sets the camera's up vector and recomputes matrices.
	SetUp(up mgl32.Vec3)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// SetFov sets the field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio and recomputes matrices.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// SetNear sets the near plane distance and recomputes matrices.
	SetNear(near float32)

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFar sets the far plane distance and recomputes matrices.
	SetFar(far float32)

	// Visibility returns the layer mask of the camera.
	//
	// Returns:
	//   - uint32: the visibility bits
	Visibility() uint32

	// SetVisibility sets the layer mask of the camera.
	//
	// Parameters:
	//   - visibility: the visibility bits
	SetVisibility(visibility uint32)

	// ClearFlag returns the clear flags of the camera.
	ClearFlag() ClearFlag

	// SetClearFlag sets the clear flags of the camera.
	SetClearFlag(flag ClearFlag)

	// ViewMatrix returns the current view matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined view-projection matrix.
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the world-space frustum as of the last matrix update.
	//
	// Returns:
	//   - common.Frustum: the frustum
	Frustum() common.Frustum

	// Controller returns the attached CameraController, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// SetController attaches a controller that drives position and target on Update.
	// Pass nil to detach.
	//
	// Parameters:
	//   - ctrl: the controller
	SetController(ctrl CameraController)

	// Update reads position and target from the controller, when one is attached,
	// and recomputes matrices. Should be called once per frame before culling.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera looking down -Z from (0, 0, 10) with the given options applied.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.RWMutex{},
		position:   mgl32.Vec3{0, 0, 10},
		up:         mgl32.Vec3{0, 1, 0},
		fov:        mgl32.DegToRad(45),
		aspect:     16.0 / 9.0,
		near:       0.1,
		far:        1000,
		visibility: VisibilityAll,
		clearFlag:  ClearFlagColor | ClearFlagDepth,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *cameraImpl) Scene() scene.Scene {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scene
}

func (c *cameraImpl) SetScene(s scene.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scene = s
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return forward(c.position, c.target)
}

func (c *cameraImpl) LookAt(pos, target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.up
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Near() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.near
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) Far() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.far
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) Visibility() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visibility
}

func (c *cameraImpl) SetVisibility(visibility uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visibility = visibility
}

func (c *cameraImpl) ClearFlag() ClearFlag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clearFlag
}

func (c *cameraImpl) SetClearFlag(flag ClearFlag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearFlag = flag
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frustum
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller != nil {
		c.position = c.controller.Position()
		c.target = c.controller.Target()
	}
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices and
// the frustum. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.frustum = common.ExtractFrustum(c.viewProjectionMatrix)
}

// forward returns normalize(target - pos), or zero when they coincide.
func forward(pos, target mgl32.Vec3) mgl32.Vec3 {
	d := target.Sub(pos)
	if d.Len() < 1e-8 {
		return mgl32.Vec3{}
	}
	return d.Normalize()
}
