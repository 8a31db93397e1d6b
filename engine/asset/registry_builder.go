package asset

import (
	"github.com/Carmen-Shannon/oxy-runtime/engine/gfx"
)

// RegistryBuilderOption is a functional option for configuring a Registry via NewRegistry.
type RegistryBuilderOption func(*registryImpl)

// WithUploader is an option builder that sets the GPU uploader handed to textures.
//
// Parameters:
//   - uploader: the uploader, nil keeps textures on the CPU
//
// Returns:
//   - RegistryBuilderOption: a function that applies the uploader option to a registryImpl
func WithUploader(uploader gfx.Uploader) RegistryBuilderOption {
	return func(r *registryImpl) {
		r.uploader = uploader
	}
}

// WithConstructor is an option builder that registers a constructor, overriding the
// built-in one of the same type name.
//
// Parameters:
//   - typeName: the __type__ value
//   - ctor: the constructor
//
// Returns:
//   - RegistryBuilderOption: a function that applies the constructor option to a registryImpl
func WithConstructor(typeName string, ctor Constructor) RegistryBuilderOption {
	return func(r *registryImpl) {
		r.constructors[typeName] = ctor
	}
}
