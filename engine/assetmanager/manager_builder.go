package assetmanager

import (
	"log"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/downloader"
	"github.com/Carmen-Shannon/oxy-runtime/engine/gfx"
	"github.com/Carmen-Shannon/oxy-runtime/engine/parser"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"
)

// AssetManagerBuilderOption is a functional option for configuring an AssetManager via New.
type AssetManagerBuilderOption func(*managerImpl)

// WithLogger is an option builder that sets the logger shared by the manager and the
// components it creates.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the logger option to a managerImpl
func WithLogger(logger *log.Logger) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithConfig is an option builder that sets the initial configuration.
//
// Parameters:
//   - config: the configuration
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the config option to a managerImpl
func WithConfig(config Config) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.config = config
	}
}

// WithDownloader is an option builder that replaces the downloader.
//
// Parameters:
//   - d: the downloader
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the downloader option to a managerImpl
func WithDownloader(d downloader.Downloader) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.downloader = d
	}
}

// WithDownloaderOptions is an option builder that passes options to the default downloader.
// It has no effect together with WithDownloader.
//
// Parameters:
//   - opts: the downloader options
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the downloader options to a managerImpl
func WithDownloaderOptions(opts ...downloader.DownloaderBuilderOption) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.downloaderOpts = append(m.downloaderOpts, opts...)
	}
}

// WithParser is an option builder that replaces the parser.
func WithParser(p parser.Parser) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.parser = p
	}
}

// WithRegistry is an option builder that replaces the asset type registry.
func WithRegistry(r asset.Registry) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.registry = r
	}
}

// WithRegistryOptions is an option builder that passes options to the default registry.
//
// Parameters:
//   - opts: the registry options
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the registry options to a managerImpl
func WithRegistryOptions(opts ...asset.RegistryBuilderOption) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.registryOpts = append(m.registryOpts, opts...)
	}
}

// WithUploader is an option builder that makes textures upload to the GPU once loaded.
//
// Parameters:
//   - uploader: the uploader, typically a gfx.Device
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the uploader option to a managerImpl
func WithUploader(uploader gfx.Uploader) AssetManagerBuilderOption {
	return WithRegistryOptions(asset.WithUploader(uploader))
}

// WithFactory is an option builder that replaces the factory.
func WithFactory(f Factory) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.factory = f
	}
}

// WithPresets is an option builder that merges named presets over the defaults.
//
// Parameters:
//   - presets: the presets to add or replace
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the presets option to a managerImpl
func WithPresets(presets pipeline.Presets) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		for name, p := range presets {
			m.presets[name] = p
		}
	}
}

// WithDeferredRelease is an option builder that queues non forced releases until
// ReleaseManager().Flush is called, usually once per frame.
//
// Parameters:
//   - deferred: true to defer releases
//
// Returns:
//   - AssetManagerBuilderOption: a function that applies the release option to a managerImpl
func WithDeferredRelease(deferred bool) AssetManagerBuilderOption {
	return func(m *managerImpl) {
		m.deferredRelease = deferred
	}
}
