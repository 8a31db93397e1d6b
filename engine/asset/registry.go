package asset

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/gfx"

	"github.com/go-gl/mathgl/mgl32"
)

// Constructor builds an asset from its serialized form. The native payload and the
// dependencies are attached afterwards by the loader.
type Constructor func(data *ImportData) (Asset, error)

// registryImpl is the implementation of the Registry interface.
type registryImpl struct {
	mu           sync.RWMutex
	uploader     gfx.Uploader
	constructors map[string]Constructor
}

// Registry maps serialized type names to asset constructors.
type Registry interface {
	// Register adds or replaces the constructor for a type name.
	//
	// Parameters:
	//   - typeName: the __type__ value
	//   - ctor: the constructor
	Register(typeName string, ctor Constructor)

	// Deserialize builds an asset from its serialized form.
	//
	// Parameters:
	//   - data: the decoded import data
	//
	// Returns:
	//   - Asset: the new asset, not yet loaded
	//   - error: error if the type is unknown or the content is malformed
	Deserialize(data *ImportData) (Asset, error)

	// Types returns the registered type names in sorted order.
	//
	// Returns:
	//   - []string: the type names
	Types() []string
}

var _ Registry = &registryImpl{}

// NewRegistry creates a Registry that knows every built-in asset type, with the provided
// options applied.
//
// Parameters:
//   - options: a variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registryImpl{
		constructors: make(map[string]Constructor),
	}
	for _, opt := range options {
		opt(r)
	}

	r.registerDefault(TypeJSON, func(d *ImportData) (Asset, error) {
		var content any
		if err := d.decodeContent(&content); err != nil {
			return nil, err
		}
		return NewJSONAsset(d.Name, content), nil
	})
	r.registerDefault(TypeText, func(d *ImportData) (Asset, error) {
		var text string
		if err := d.decodeContent(&text); err != nil {
			return nil, err
		}
		return NewTextAsset(d.Name, text), nil
	})
	r.registerDefault(TypeBuffer, func(d *ImportData) (Asset, error) {
		return NewBufferAsset(d.Name, nil), nil
	})
	r.registerDefault(TypeImage, func(d *ImportData) (Asset, error) {
		return NewImageAsset(d.Name, nil)
	})
	r.registerDefault(TypeTexture2D, func(d *ImportData) (Asset, error) {
		return NewTexture2D(d.Name, r.uploader), nil
	})
	r.registerDefault(TypeFont, func(d *ImportData) (Asset, error) {
		return NewFontAsset(d.Name, nil), nil
	})
	r.registerDefault(TypeMesh, func(d *ImportData) (Asset, error) {
		var bounds struct {
			Min []float32 `json:"min"`
			Max []float32 `json:"max"`
		}
		if err := d.decodeContent(&bounds); err != nil {
			return nil, err
		}
		var box common.AABB
		if len(bounds.Min) == 3 && len(bounds.Max) == 3 {
			box = common.NewAABBFromMinMax(
				mgl32.Vec3{bounds.Min[0], bounds.Min[1], bounds.Min[2]},
				mgl32.Vec3{bounds.Max[0], bounds.Max[1], bounds.Max[2]},
			)
		}
		return NewMeshAsset(d.Name, box), nil
	})
	r.registerDefault(TypeScene, func(d *ImportData) (Asset, error) {
		return NewSceneAsset(d.Name, d.AutoRelease), nil
	})

	return r
}

func (r *registryImpl) Register(typeName string, ctor Constructor) {
	if ctor == nil {
		panic("asset: nil constructor for " + typeName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[typeName] = ctor
}

func (r *registryImpl) Deserialize(data *ImportData) (Asset, error) {
	if data == nil {
		return nil, fmt.Errorf("nil import data")
	}
	r.mu.RLock()
	ctor, ok := r.constructors[data.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown asset type %q", data.Type)
	}
	a, err := ctor(data)
	if err != nil {
		return nil, fmt.Errorf("failed to construct %s: %w", data.Type, err)
	}
	return a, nil
}

func (r *registryImpl) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.constructors))
}

// registerDefault installs a built-in constructor unless an option already supplied one.
func (r *registryImpl) registerDefault(typeName string, ctor Constructor) {
	if _, ok := r.constructors[typeName]; !ok {
		r.constructors[typeName] = ctor
	}
}
