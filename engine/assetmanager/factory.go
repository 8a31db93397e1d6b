package assetmanager

import (
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"

	"github.com/go-text/typesetting/font"
)

// Creator turns parsed content fetched by url into a usable object, usually an asset.
type Creator func(id string, content any, opts *pipeline.Options) (any, error)

// factoryImpl is the implementation of the Factory interface.
type factoryImpl struct {
	mu       sync.RWMutex
	creators map[string]Creator
	fallback Creator
}

// Factory creates assets and bundles from content loaded by url, keyed by extension.
type Factory interface {
	// Register installs the creator for an extension.
	//
	// Parameters:
	//   - ext: the extension including the dot, or pipeline.BundleExt
	//   - c: the creator
	Register(ext string, c Creator)

	// Create builds an object from parsed content. Extensions without a creator become
	// a BufferAsset when the content is raw bytes.
	//
	// Parameters:
	//   - id: the url the content came from
	//   - ext: the extension
	//   - content: the parsed content
	//   - opts: the request options
	//
	// Returns:
	//   - any: the created object
	//   - error: error if the content does not fit the extension
	Create(id, ext string, content any, opts *pipeline.Options) (any, error)
}

var _ Factory = &factoryImpl{}

// NewFactory creates a Factory with creators for images, text, json, fonts, meshes and
// binary data.
func NewFactory() Factory {
	f := &factoryImpl{creators: make(map[string]Creator)}

	createImage := func(id string, content any, _ *pipeline.Options) (any, error) {
		img, ok := content.(image.Image)
		if !ok {
			return nil, fmt.Errorf("%s: expected an image, got %T", id, content)
		}
		return asset.NewImageAsset(id, img)
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"} {
		f.creators[ext] = createImage
	}

	createText := func(id string, content any, _ *pipeline.Options) (any, error) {
		text, ok := content.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected text, got %T", id, content)
		}
		return asset.NewTextAsset(id, text), nil
	}
	for _, ext := range []string{".txt", ".xml", ".vsh", ".fsh", ".atlas", ".tmx", ".tsx", ".fnt", ".plist", ".csv", ".md"} {
		f.creators[ext] = createText
	}

	f.creators[".json"] = func(id string, content any, _ *pipeline.Options) (any, error) {
		return asset.NewJSONAsset(id, content), nil
	}

	createFont := func(id string, content any, _ *pipeline.Options) (any, error) {
		face, ok := content.(*font.Face)
		if !ok {
			return nil, fmt.Errorf("%s: expected a font face, got %T", id, content)
		}
		return asset.NewFontAsset(id, face), nil
	}
	f.creators[".ttf"] = createFont
	f.creators[".otf"] = createFont

	createMesh := func(id string, content any, _ *pipeline.Options) (any, error) {
		data, ok := content.(*asset.MeshData)
		if !ok {
			return nil, fmt.Errorf("%s: expected mesh data, got %T", id, content)
		}
		m := asset.NewMeshAsset(id, data.Bounds)
		if err := m.SetNativeAsset(data); err != nil {
			return nil, err
		}
		return m, nil
	}
	f.creators[".glb"] = createMesh
	f.creators[".gltf"] = createMesh

	f.fallback = func(id string, content any, _ *pipeline.Options) (any, error) {
		data, ok := content.([]byte)
		if !ok {
			return nil, fmt.Errorf("%s: no creator for %T", id, content)
		}
		return asset.NewBufferAsset(id, data), nil
	}
	return f
}

func (f *factoryImpl) Register(ext string, c Creator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[ext] = c
}

func (f *factoryImpl) Create(id, ext string, content any, opts *pipeline.Options) (any, error) {
	f.mu.RLock()
	c, ok := f.creators[ext]
	f.mu.RUnlock()
	if !ok {
		c = f.fallback
	}
	return c(id, content, opts)
}
