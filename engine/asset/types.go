package asset

import (
	"fmt"
	"image"
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/gfx"

	"github.com/go-text/typesetting/font"
)

// Type names used in the __type__ field of serialized assets.
const (
	TypeJSON      = "JSONAsset"
	TypeText      = "TextAsset"
	TypeBuffer    = "BufferAsset"
	TypeImage     = "ImageAsset"
	TypeTexture2D = "Texture2D"
	TypeFont      = "Font"
	TypeMesh      = "Mesh"
	TypeScene     = "SceneAsset"
)

// JSONAsset holds an arbitrary decoded json document.
type JSONAsset struct {
	Base
	content any
}

// NewJSONAsset creates a JSONAsset holding content.
func NewJSONAsset(name string, content any) *JSONAsset {
	a := &JSONAsset{content: content}
	a.name = name
	return a
}

// Content returns the decoded document.
func (a *JSONAsset) Content() any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.content
}

func (a *JSONAsset) SetNativeAsset(native any) error {
	a.mu.Lock()
	a.content = native
	a.mu.Unlock()
	return a.Base.SetNativeAsset(native)
}

// TextAsset holds a text document.
type TextAsset struct {
	Base
	text string
}

// NewTextAsset creates a TextAsset holding text.
func NewTextAsset(name, text string) *TextAsset {
	a := &TextAsset{text: text}
	a.name = name
	return a
}

// Text returns the document text.
func (a *TextAsset) Text() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}

func (a *TextAsset) SetNativeAsset(native any) error {
	text, ok := native.(string)
	if !ok {
		return fmt.Errorf("text asset %s: unsupported native payload %T", a.UUID(), native)
	}
	a.mu.Lock()
	a.text = text
	a.mu.Unlock()
	return a.Base.SetNativeAsset(native)
}

// BufferAsset holds an opaque binary payload.
type BufferAsset struct {
	Base
}

// NewBufferAsset creates a BufferAsset holding data.
func NewBufferAsset(name string, data []byte) *BufferAsset {
	a := &BufferAsset{}
	a.name = name
	a.native = data
	return a
}

// Bytes returns the payload.
func (a *BufferAsset) Bytes() []byte {
	b, _ := a.NativeAsset().([]byte)
	return b
}

func (a *BufferAsset) SetNativeAsset(native any) error {
	if _, ok := native.([]byte); !ok {
		return fmt.Errorf("buffer asset %s: unsupported native payload %T", a.UUID(), native)
	}
	return a.Base.SetNativeAsset(native)
}

// ImageAsset holds decoded RGBA pixels on the CPU.
type ImageAsset struct {
	Base
}

// NewImageAsset creates an ImageAsset from a decoded image.
//
// Parameters:
//   - name: the asset name
//   - img: the decoded image, may be nil when the pixels arrive later
//
// Returns:
//   - *ImageAsset: the asset
//   - error: error if img cannot be converted to RGBA
func NewImageAsset(name string, img image.Image) (*ImageAsset, error) {
	a := &ImageAsset{}
	a.name = name
	if img != nil {
		if err := a.SetNativeAsset(img); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Data returns the staged pixels, or zero dimensions before the payload arrives.
func (a *ImageAsset) Data() common.TextureStagingData {
	d, _ := a.NativeAsset().(common.TextureStagingData)
	return d
}

func (a *ImageAsset) SetNativeAsset(native any) error {
	var data common.TextureStagingData
	switch v := native.(type) {
	case common.TextureStagingData:
		data = v
	case image.Image:
		d, err := common.NewTextureStagingData(v)
		if err != nil {
			return fmt.Errorf("image asset %s: %w", a.UUID(), err)
		}
		data = d
	default:
		return fmt.Errorf("image asset %s: unsupported native payload %T", a.UUID(), native)
	}
	return a.Base.SetNativeAsset(data)
}

// Texture2D is a sampled texture built from an ImageAsset dependency or a native image.
// When an uploader is configured the pixels are copied to the GPU as soon as they are
// available, and Destroy frees the GPU texture.
type Texture2D struct {
	Base
	uploader gfx.Uploader

	texMu sync.Mutex
	image *ImageAsset
	gpu   gfx.Texture
}

// NewTexture2D creates an empty texture.
//
// Parameters:
//   - name: the asset name
//   - uploader: the GPU uploader, may be nil for CPU only use
//
// Returns:
//   - *Texture2D: the texture
func NewTexture2D(name string, uploader gfx.Uploader) *Texture2D {
	t := &Texture2D{uploader: uploader}
	t.name = name
	return t
}

// Image returns the source image, or nil.
func (t *Texture2D) Image() *ImageAsset {
	t.texMu.Lock()
	defer t.texMu.Unlock()
	return t.image
}

// GPUTexture returns the uploaded texture, or nil when nothing was uploaded.
func (t *Texture2D) GPUTexture() gfx.Texture {
	t.texMu.Lock()
	defer t.texMu.Unlock()
	return t.gpu
}

// Width returns the texture width in pixels.
func (t *Texture2D) Width() uint32 {
	if img := t.Image(); img != nil {
		return img.Data().Width
	}
	return 0
}

// Height returns the texture height in pixels.
func (t *Texture2D) Height() uint32 {
	if img := t.Image(); img != nil {
		return img.Data().Height
	}
	return 0
}

func (t *Texture2D) SetDependencies(deps map[string]Asset) error {
	for _, uuid := range slices.Sorted(maps.Keys(deps)) {
		if img, ok := deps[uuid].(*ImageAsset); ok {
			return t.setImage(img)
		}
	}
	return nil
}

func (t *Texture2D) SetNativeAsset(native any) error {
	img, err := NewImageAsset(t.Name(), nil)
	if err != nil {
		return err
	}
	img.SetUUID(t.UUID() + "@image")
	if err := img.SetNativeAsset(native); err != nil {
		return err
	}
	if err := t.setImage(img); err != nil {
		return err
	}
	return t.Base.SetNativeAsset(native)
}

func (t *Texture2D) Destroy() bool {
	if !t.Base.Destroy() {
		return false
	}
	t.texMu.Lock()
	defer t.texMu.Unlock()
	if t.gpu != nil {
		t.gpu.Release()
		t.gpu = nil
	}
	t.image = nil
	return true
}

// setImage swaps the source image and uploads it when an uploader is configured.
func (t *Texture2D) setImage(img *ImageAsset) error {
	t.texMu.Lock()
	defer t.texMu.Unlock()
	t.image = img

	data := img.Data()
	if t.uploader == nil || data.Width == 0 || data.Height == 0 {
		return nil
	}
	tex, err := t.uploader.UploadTexture(t.UUID(), data)
	if err != nil {
		return fmt.Errorf("texture %s: %w", t.UUID(), err)
	}
	if t.gpu != nil {
		t.gpu.Release()
	}
	t.gpu = tex
	return nil
}

// FontAsset holds a parsed TrueType or OpenType face.
type FontAsset struct {
	Base
}

// NewFontAsset creates a FontAsset from a parsed face.
func NewFontAsset(name string, face *font.Face) *FontAsset {
	a := &FontAsset{}
	a.name = name
	if face != nil {
		a.native = face
	}
	return a
}

// Face returns the parsed face, or nil before the payload arrives.
func (a *FontAsset) Face() *font.Face {
	f, _ := a.NativeAsset().(*font.Face)
	return f
}

// UnitsPerEm returns the design units per em of the face, or zero when not loaded.
func (a *FontAsset) UnitsPerEm() uint16 {
	if f := a.Face(); f != nil {
		return f.Upem()
	}
	return 0
}

func (a *FontAsset) SetNativeAsset(native any) error {
	if _, ok := native.(*font.Face); !ok {
		return fmt.Errorf("font asset %s: unsupported native payload %T", a.UUID(), native)
	}
	return a.Base.SetNativeAsset(native)
}

// MeshData summarizes a parsed glTF mesh file.
type MeshData struct {
	Name       string
	Bounds     common.AABB
	Primitives int
	Vertices   int
}

// MeshAsset holds the local bounds of a mesh. Geometry upload is left to the renderer.
type MeshAsset struct {
	Base
	meshMu sync.RWMutex
	bounds common.AABB
	data   *MeshData
}

// NewMeshAsset creates a MeshAsset with the given local bounds.
func NewMeshAsset(name string, bounds common.AABB) *MeshAsset {
	a := &MeshAsset{bounds: bounds}
	a.name = name
	return a
}

// Bounds returns the local-space bounds of the mesh.
func (a *MeshAsset) Bounds() common.AABB {
	a.meshMu.RLock()
	defer a.meshMu.RUnlock()
	return a.bounds
}

// Data returns the parsed mesh summary, or nil when only bounds are known.
func (a *MeshAsset) Data() *MeshData {
	a.meshMu.RLock()
	defer a.meshMu.RUnlock()
	return a.data
}

func (a *MeshAsset) SetNativeAsset(native any) error {
	data, ok := native.(*MeshData)
	if !ok {
		return fmt.Errorf("mesh asset %s: unsupported native payload %T", a.UUID(), native)
	}
	a.meshMu.Lock()
	a.data = data
	a.bounds = data.Bounds
	a.meshMu.Unlock()
	return a.Base.SetNativeAsset(native)
}

// SceneAsset is the root of a loaded scene. Its dependencies are every asset the scene
// references directly.
type SceneAsset struct {
	Base
	autoRelease bool

	depMu sync.RWMutex
	deps  map[string]Asset
}

// NewSceneAsset creates an empty scene.
func NewSceneAsset(name string, autoRelease bool) *SceneAsset {
	s := &SceneAsset{autoRelease: autoRelease, deps: map[string]Asset{}}
	s.name = name
	return s
}

// AutoReleaseAssets reports whether the scene's dependencies are released when the
// scene is replaced.
func (s *SceneAsset) AutoReleaseAssets() bool {
	return s.autoRelease
}

// Dependencies returns the loaded dependencies ordered by uuid.
func (s *SceneAsset) Dependencies() []Asset {
	s.depMu.RLock()
	defer s.depMu.RUnlock()
	out := make([]Asset, 0, len(s.deps))
	for _, uuid := range slices.Sorted(maps.Keys(s.deps)) {
		out = append(out, s.deps[uuid])
	}
	return out
}

func (s *SceneAsset) SetDependencies(deps map[string]Asset) error {
	s.depMu.Lock()
	defer s.depMu.Unlock()
	s.deps = maps.Clone(deps)
	return nil
}

func (s *SceneAsset) Destroy() bool {
	if !s.Base.Destroy() {
		return false
	}
	s.depMu.Lock()
	s.deps = map[string]Asset{}
	s.depMu.Unlock()
	return true
}
