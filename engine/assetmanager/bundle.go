package assetmanager

import (
	"maps"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/cache"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"
)

// Well known bundle names.
const (
	BundleMain      = "main"
	BundleResources = "resources"
)

// bundleImpl is the implementation of the Bundle interface.
type bundleImpl struct {
	manager   *managerImpl
	config    *pipeline.BundleConfig
	assets    cache.Cache[string, asset.Asset]
	destroyed atomic.Bool
}

// Bundle is a loaded bundle config plus the assets loaded through it. Lookups resolve
// bundle relative paths to uuids; loads delegate to the owning AssetManager.
type Bundle interface {
	// Name returns the bundle name.
	Name() string

	// Base returns the bundle root url.
	Base() string

	// Deps returns the names of the bundles this bundle depends on.
	Deps() []string

	// Config returns the bundle config.
	Config() *pipeline.BundleConfig

	// GetInfoWithPath finds an asset by bundle relative path.
	//
	// Parameters:
	//   - path: the path without extension
	//   - typeName: restricts the match to one asset type, empty matches any
	//
	// Returns:
	//   - *pipeline.AssetInfo: the asset info, or nil
	GetInfoWithPath(path, typeName string) *pipeline.AssetInfo

	// GetDirWithPath lists every asset under a directory, ordered by path.
	//
	// Parameters:
	//   - dir: the directory, empty lists the whole bundle
	//   - typeName: restricts the match to one asset type, empty matches any
	//
	// Returns:
	//   - []*pipeline.AssetInfo: the matching assets
	GetDirWithPath(dir, typeName string) []*pipeline.AssetInfo

	// GetAssetInfo finds an asset by uuid. Redirected assets carry the name of the
	// bundle that holds them.
	//
	// Parameters:
	//   - uuid: the asset uuid
	//
	// Returns:
	//   - *pipeline.AssetInfo: the asset info, or nil
	GetAssetInfo(uuid string) *pipeline.AssetInfo

	// GetSceneInfo finds a scene by name.
	//
	// Parameters:
	//   - name: the scene name
	//
	// Returns:
	//   - *pipeline.AssetInfo: the scene info, or nil
	GetSceneInfo(name string) *pipeline.AssetInfo

	// Load loads an asset by path.
	//
	// Parameters:
	//   - path: the bundle relative path
	//   - typeName: restricts the match to one asset type, empty matches any
	//   - opts: the request options, may be nil
	//   - onProgress: the progress callback, may be nil
	//   - onComplete: the completion callback, may be nil
	//
	// Returns:
	//   - *pipeline.Task: the running task
	Load(path, typeName string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task

	// Preload downloads an asset by path and its dependencies without building them.
	Preload(path, typeName string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task

	// LoadDir loads every asset under a directory.
	LoadDir(dir, typeName string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task

	// LoadScene loads a scene by name with the scene preset.
	LoadScene(name string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task

	// Get returns a loaded asset by path.
	//
	// Parameters:
	//   - path: the bundle relative path
	//   - typeName: restricts the match to one asset type, empty matches any
	//
	// Returns:
	//   - asset.Asset: the asset, or nil when not loaded through this bundle
	Get(path, typeName string) asset.Asset

	// Release force releases a loaded asset by path.
	Release(path, typeName string)

	// ReleaseUnusedAssets releases the assets of this bundle that nothing retains.
	ReleaseUnusedAssets()

	// ReleaseAll force releases every asset loaded through this bundle.
	ReleaseAll()
}

var _ Bundle = &bundleImpl{}

// newBundle creates a bundle over a decoded config.
func newBundle(m *managerImpl, config *pipeline.BundleConfig) *bundleImpl {
	return &bundleImpl{
		manager: m,
		config:  config,
		assets:  cache.NewCache[string, asset.Asset](),
	}
}

func (b *bundleImpl) Name() string {
	return b.config.Name
}

func (b *bundleImpl) Base() string {
	return b.config.Base
}

func (b *bundleImpl) Deps() []string {
	return slices.Clone(b.config.Deps)
}

func (b *bundleImpl) Config() *pipeline.BundleConfig {
	return b.config
}

func (b *bundleImpl) GetInfoWithPath(path, typeName string) *pipeline.AssetInfo {
	for _, uuid := range slices.Sorted(maps.Keys(b.config.Assets)) {
		entry := b.config.Assets[uuid]
		if entry.Path == path && (typeName == "" || entry.Type == typeName) {
			return b.info(uuid, entry)
		}
	}
	return nil
}

func (b *bundleImpl) GetDirWithPath(dir, typeName string) []*pipeline.AssetInfo {
	dir = strings.Trim(dir, "/")
	var out []*pipeline.AssetInfo
	for _, uuid := range slices.Sorted(maps.Keys(b.config.Assets)) {
		entry := b.config.Assets[uuid]
		if typeName != "" && entry.Type != typeName {
			continue
		}
		if dir == "" || entry.Path == dir || strings.HasPrefix(entry.Path, dir+"/") {
			out = append(out, b.info(uuid, entry))
		}
	}
	slices.SortStableFunc(out, func(x, y *pipeline.AssetInfo) int {
		return strings.Compare(x.Path, y.Path)
	})
	return out
}

func (b *bundleImpl) GetAssetInfo(uuid string) *pipeline.AssetInfo {
	if entry, ok := b.config.Assets[uuid]; ok {
		return b.info(uuid, entry)
	}
	if target, ok := b.config.Redirect[uuid]; ok {
		return &pipeline.AssetInfo{UUID: uuid, Redirect: target}
	}
	return nil
}

func (b *bundleImpl) GetSceneInfo(name string) *pipeline.AssetInfo {
	uuid, ok := b.config.Scenes[name]
	if !ok {
		for _, key := range slices.Sorted(maps.Keys(b.config.Scenes)) {
			if strings.HasSuffix(key, "/"+name) || strings.TrimSuffix(key, ".scene") == name {
				uuid, ok = b.config.Scenes[key], true
				break
			}
		}
	}
	if !ok {
		return nil
	}
	if info := b.GetAssetInfo(uuid); info != nil {
		return info
	}
	return &pipeline.AssetInfo{UUID: uuid, Path: name, Type: asset.TypeScene}
}

func (b *bundleImpl) Load(path, typeName string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task {
	if task := b.rejectIfDestroyed(onComplete); task != nil {
		return task
	}
	return b.manager.LoadAny([]pipeline.Request{{Path: path, Type: typeName, Bundle: b.Name()}}, opts, onProgress, onComplete)
}

func (b *bundleImpl) Preload(path, typeName string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task {
	if task := b.rejectIfDestroyed(onComplete); task != nil {
		return task
	}
	return b.manager.PreloadAny([]pipeline.Request{{Path: path, Type: typeName, Bundle: b.Name()}}, opts, onProgress, onComplete)
}

func (b *bundleImpl) LoadDir(dir, typeName string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task {
	if task := b.rejectIfDestroyed(onComplete); task != nil {
		return task
	}
	return b.manager.LoadAny([]pipeline.Request{{Dir: dir, Type: typeName, Bundle: b.Name()}}, opts, onProgress, onComplete)
}

func (b *bundleImpl) LoadScene(name string, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task {
	if task := b.rejectIfDestroyed(onComplete); task != nil {
		return task
	}
	opts = opts.Clone()
	if opts.Preset == "" {
		opts.Preset = pipeline.PresetScene
	}
	return b.manager.LoadAny([]pipeline.Request{{Scene: name, Bundle: b.Name()}}, opts, onProgress, onComplete)
}

func (b *bundleImpl) Get(path, typeName string) asset.Asset {
	info := b.GetInfoWithPath(path, typeName)
	if info == nil {
		return nil
	}
	a, _ := b.assets.Get(info.UUID)
	return a
}

func (b *bundleImpl) Release(path, typeName string) {
	if a := b.Get(path, typeName); a != nil {
		b.manager.ReleaseAsset(a)
	}
}

func (b *bundleImpl) ReleaseUnusedAssets() {
	b.assets.ForEach(func(_ string, a asset.Asset) {
		b.manager.release.TryRelease(a, false)
	})
}

func (b *bundleImpl) ReleaseAll() {
	b.assets.ForEach(func(_ string, a asset.Asset) {
		b.manager.release.TryRelease(a, true)
	})
}

// add records an asset loaded through this bundle.
func (b *bundleImpl) add(uuid string, a asset.Asset) {
	if !b.destroyed.Load() {
		b.assets.Add(uuid, a)
	}
}

// forget drops a released asset from the bundle scope.
func (b *bundleImpl) forget(a asset.Asset) {
	if cached, ok := b.assets.Get(a.UUID()); ok && cached == a {
		b.assets.Remove(a.UUID())
	}
}

// destroy releases every asset of the bundle. Later loads through the bundle fail.
func (b *bundleImpl) destroy() {
	if !b.destroyed.CompareAndSwap(false, true) {
		return
	}
	b.assets.ForEach(func(_ string, a asset.Asset) {
		b.manager.release.TryRelease(a, true)
	})
	b.assets.Clear()
}

// rejectIfDestroyed returns a completed task when the bundle was destroyed.
func (b *bundleImpl) rejectIfDestroyed(onComplete pipeline.CompleteFunc) *pipeline.Task {
	if !b.destroyed.Load() {
		return nil
	}
	task := pipeline.NewTask(pipeline.WithOnComplete(onComplete))
	go task.Complete(pipeline.NewLoadError(pipeline.ErrInvalidAssetState, b.Name(), b.Base(), nil), nil)
	return task
}

// info converts a config entry to an AssetInfo.
func (b *bundleImpl) info(uuid string, entry pipeline.BundleAssetEntry) *pipeline.AssetInfo {
	return &pipeline.AssetInfo{
		UUID:      uuid,
		Path:      entry.Path,
		Type:      entry.Type,
		Ver:       entry.Ver,
		NativeVer: entry.NativeVer,
	}
}
