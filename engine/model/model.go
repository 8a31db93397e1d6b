package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is the scene graph transform a model is attached to.
type Node interface {
	// WorldPosition returns the world-space translation of the node.
	WorldPosition() mgl32.Vec3

	// WorldMatrix returns the local-to-world transform of the node.
	WorldMatrix() mgl32.Mat4

	// Layer returns the layer bit of the node, tested against camera visibility.
	Layer() uint32
}

// model is the implementation of the Model interface.
type model struct {
	mu sync.RWMutex

	name       string
	node       Node
	enabled    bool
	visFlags   uint32
	castShadow bool
	mesh       *asset.MeshAsset

	localBounds common.AABB
	hasBounds   bool
	worldBounds common.AABB
}

// Model is a renderable instance as seen by culling: its visibility flags, whether it
// casts a shadow and its world-space bounds. Geometry lives in the optional mesh asset.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Node returns the transform the model is attached to, or nil.
	//
	// Returns:
	//   - Node: the node or nil
	Node() Node

	// SetNode attaches the model to a node and refreshes the world bounds.
	//
	// Parameters:
	//   - n: the node, may be nil
	SetNode(n Node)

	// Enabled reports whether the model takes part in culling.
	Enabled() bool

	// SetEnabled enables or disables the model.
	SetEnabled(enabled bool)

	// VisFlags returns the visibility bits matched against camera visibility when the
	// node layer test fails.
	VisFlags() uint32

	// SetVisFlags sets the visibility bits.
	SetVisFlags(flags uint32)

	// CastShadow reports whether the model casts a shadow.
	CastShadow() bool

	// SetCastShadow sets whether the model casts a shadow.
	SetCastShadow(cast bool)

	// Mesh returns the mesh asset supplying the local bounds, or nil.
	Mesh() *asset.MeshAsset

	// SetMesh assigns a mesh asset and takes its bounds as the local bounds.
	//
	// Parameters:
	//   - m: the mesh asset, may be nil
	SetMesh(m *asset.MeshAsset)

	// LocalBounds returns the model-space bounds.
	//
	// Returns:
	//   - common.AABB: the local bounds
	//   - bool: false if the model declares no bounds
	LocalBounds() (common.AABB, bool)

	// SetLocalBounds sets the model-space bounds and refreshes the world bounds.
	//
	// Parameters:
	//   - bounds: the local bounds
	SetLocalBounds(bounds common.AABB)

	// WorldBounds returns the bounds in world space as of the last UpdateWorldBounds.
	//
	// Returns:
	//   - common.AABB: the world bounds
	//   - bool: false if the model declares no bounds; such models are never frustum culled
	WorldBounds() (common.AABB, bool)

	// UpdateWorldBounds recomputes the world bounds from the node transform. Models
	// without a node use their local bounds as world bounds.
	UpdateWorldBounds()
}

var _ Model = &model{}

// NewModel creates an enabled Model with any provided options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{enabled: true}
	for _, opt := range options {
		opt(m)
	}
	m.UpdateWorldBounds()
	return m
}

func (m *model) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

func (m *model) Node() Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.node
}

func (m *model) SetNode(n Node) {
	m.mu.Lock()
	m.node = n
	m.mu.Unlock()
	m.UpdateWorldBounds()
}

func (m *model) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

func (m *model) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

func (m *model) VisFlags() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visFlags
}

func (m *model) SetVisFlags(flags uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visFlags = flags
}

func (m *model) CastShadow() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.castShadow
}

func (m *model) SetCastShadow(cast bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.castShadow = cast
}

func (m *model) Mesh() *asset.MeshAsset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mesh
}

func (m *model) SetMesh(mesh *asset.MeshAsset) {
	m.mu.Lock()
	m.mesh = mesh
	if mesh != nil {
		m.localBounds = mesh.Bounds()
		m.hasBounds = true
	}
	m.mu.Unlock()
	m.UpdateWorldBounds()
}

func (m *model) LocalBounds() (common.AABB, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.localBounds, m.hasBounds
}

func (m *model) SetLocalBounds(bounds common.AABB) {
	m.mu.Lock()
	m.localBounds = bounds
	m.hasBounds = true
	m.mu.Unlock()
	m.UpdateWorldBounds()
}

func (m *model) WorldBounds() (common.AABB, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.worldBounds, m.hasBounds
}

func (m *model) UpdateWorldBounds() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasBounds {
		return
	}
	if m.node == nil {
		m.worldBounds = m.localBounds
		return
	}
	m.worldBounds = m.localBounds.Transform(m.node.WorldMatrix())
}
