package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-runtime/engine/light"
	"github.com/Carmen-Shannon/oxy-runtime/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultLayer is the layer bit objects are created on.
const DefaultLayer uint32 = 1 << 0

type gameObject struct {
	id      uint64
	enabled atomic.Bool
	layer   atomic.Uint32

	mu            sync.RWMutex
	mdl           model.Model
	attachedLight light.Light
	position      mgl32.Vec3
	scale         mgl32.Vec3
	rotation      mgl32.Vec3
	rotationSpeed mgl32.Vec3
}

// GameObject is a scene entity carrying a transform, a layer and optionally a Model and
// a Light. It implements model.Node, so an attached model follows its transform.
type GameObject interface {
	model.Node

	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object takes part in culling.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Position returns the object's position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's Euler rotation in radians, applied X then Y then Z.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// WorldRotation returns the object's rotation as a quaternion.
	//
	// Returns:
	//   - mgl32.Quat: the rotation
	WorldRotation() mgl32.Quat

	// RotationSpeed returns the angular velocity applied by Update, in radians per second.
	//
	// Returns:
	//   - rx, ry, rz: rotation speed values
	RotationSpeed() (rx, ry, rz float32)

	// Scale returns the object's scale.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object takes part in culling.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetLayer sets the layer bit tested against camera visibility.
	//
	// Parameters:
	//   - layer: the layer bit
	SetLayer(layer uint32)

	// SetModel assigns a Model to this object and attaches the model to it.
	//
	// Parameters:
	//   - m: the Model to associate, or nil to detach
	SetModel(m model.Model)

	// SetPosition moves the object.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the object's Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed sets the angular velocity applied by Update.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation speed values
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale sets the object's scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// Update advances the rotation by the rotation speed and syncs the attached model
	// bounds and light position.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// Light returns the Light attached to this object, or nil if none is set.
	//
	// Returns:
	//   - light.Light: the attached light or nil
	Light() light.Light

	// SetLight attaches a Light to this object. Its position follows the object's
	// position from then on. Pass nil to detach.
	//
	// Parameters:
	//   - l: the Light to attach, or nil to detach
	SetLight(l light.Light)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale: mgl32.Vec3{1, 1, 1},
	}
	obj.enabled.Store(true)
	obj.layer.Store(DefaultLayer)
	for _, option := range options {
		option(obj)
	}
	if obj.mdl != nil {
		obj.mdl.SetNode(obj)
	}
	obj.sync()
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Layer() uint32 {
	return g.layer.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mdl
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position.Elem()
}

func (g *gameObject) WorldPosition() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation.Elem()
}

func (g *gameObject) WorldRotation() mgl32.Quat {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return mgl32.AnglesToQuat(g.rotation[0], g.rotation[1], g.rotation[2], mgl32.XYZ)
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotationSpeed.Elem()
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale.Elem()
}

func (g *gameObject) WorldMatrix() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t := mgl32.Translate3D(g.position[0], g.position[1], g.position[2])
	r := mgl32.AnglesToQuat(g.rotation[0], g.rotation[1], g.rotation[2], mgl32.XYZ).Mat4()
	s := mgl32.Scale3D(g.scale[0], g.scale[1], g.scale[2])
	return t.Mul4(r).Mul4(s)
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetLayer(layer uint32) {
	g.layer.Store(layer)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	prev := g.mdl
	g.mdl = m
	g.mu.Unlock()
	if prev != nil && prev != m {
		prev.SetNode(nil)
	}
	if m != nil {
		m.SetNode(g)
	}
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	g.position = mgl32.Vec3{x, y, z}
	g.mu.Unlock()
	g.sync()
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	g.rotation = mgl32.Vec3{rx, ry, rz}
	g.mu.Unlock()
	g.sync()
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationSpeed = mgl32.Vec3{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	g.scale = mgl32.Vec3{sx, sy, sz}
	g.mu.Unlock()
	g.sync()
}

func (g *gameObject) Update(dt float32) {
	g.mu.Lock()
	moved := g.rotationSpeed != (mgl32.Vec3{})
	if moved {
		g.rotation = g.rotation.Add(g.rotationSpeed.Mul(dt))
	}
	g.mu.Unlock()
	if moved {
		g.sync()
	}
}

func (g *gameObject) Light() light.Light {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.attachedLight
}

func (g *gameObject) SetLight(l light.Light) {
	g.mu.Lock()
	g.attachedLight = l
	g.mu.Unlock()
	g.sync()
}

// sync pushes the current transform to the attached model and light.
func (g *gameObject) sync() {
	g.mu.RLock()
	m, l, pos := g.mdl, g.attachedLight, g.position
	g.mu.RUnlock()
	if m != nil {
		m.UpdateWorldBounds()
	}
	if l != nil && l.Type() != light.LightTypeDirectional {
		l.SetPosition(pos[0], pos[1], pos[2])
	}
}
