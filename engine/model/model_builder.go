package model

import (
	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName sets the model identifier.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithNode attaches the model to a node.
//
// Parameters:
//   - n: the node
//
// Returns:
//   - ModelBuilderOption: a function that applies the node option to a model
func WithNode(n Node) ModelBuilderOption {
	return func(m *model) {
		m.node = n
	}
}

// WithEnabled sets whether the model takes part in culling. Models are enabled by default.
func WithEnabled(enabled bool) ModelBuilderOption {
	return func(m *model) {
		m.enabled = enabled
	}
}

// WithVisFlags sets the visibility bits of the model.
//
// Parameters:
//   - flags: the visibility bits
//
// Returns:
//   - ModelBuilderOption: a function that applies the visibility option to a model
func WithVisFlags(flags uint32) ModelBuilderOption {
	return func(m *model) {
		m.visFlags = flags
	}
}

// WithCastShadow sets whether the model casts a shadow.
func WithCastShadow(cast bool) ModelBuilderOption {
	return func(m *model) {
		m.castShadow = cast
	}
}

// WithLocalBounds sets the model-space bounds.
//
// Parameters:
//   - bounds: the local bounds
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounds option to a model
func WithLocalBounds(bounds common.AABB) ModelBuilderOption {
	return func(m *model) {
		m.localBounds = bounds
		m.hasBounds = true
	}
}

// WithMesh assigns a mesh asset whose bounds become the local bounds.
//
// Parameters:
//   - mesh: the loaded mesh asset
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(mesh *asset.MeshAsset) ModelBuilderOption {
	return func(m *model) {
		m.mesh = mesh
		if mesh != nil {
			m.localBounds = mesh.Bounds()
			m.hasBounds = true
		}
	}
}
