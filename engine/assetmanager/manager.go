package assetmanager

import (
	"context"
	"fmt"
	"log"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/common"
	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/cache"
	"github.com/Carmen-Shannon/oxy-runtime/engine/depend"
	"github.com/Carmen-Shannon/oxy-runtime/engine/downloader"
	"github.com/Carmen-Shannon/oxy-runtime/engine/parser"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"
	"github.com/Carmen-Shannon/oxy-runtime/engine/release"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// managerImpl is the implementation of the AssetManager interface.
type managerImpl struct {
	mu     sync.RWMutex
	logger *log.Logger
	config Config

	assets  cache.Cache[string, asset.Asset]
	bundles cache.Cache[string, Bundle]
	files   cache.Cache[string, []byte]
	parsed  cache.Cache[string, any]

	downloader downloader.Downloader
	parser     parser.Parser
	factory    Factory
	depends    depend.DependUtil
	release    release.ReleaseManager
	registry   asset.Registry
	presets    pipeline.Presets

	loadPipeline      pipeline.Pipeline
	fetchPipeline     pipeline.Pipeline
	transformPipeline pipeline.Pipeline
	jsonPipeline      pipeline.Pipeline

	// flights holds every in-flight load, fetch and bundle request keyed by id.
	flights singleflight.Group
	// ctx outlives the tasks that start a flight, so a shared load is never cut short
	// by one of its waiters going away.
	ctx    context.Context
	cancel context.CancelFunc

	deferredRelease bool
	downloaderOpts  []downloader.DownloaderBuilderOption
	registryOpts    []asset.RegistryBuilderOption

	scene *asset.SceneAsset
}

// AssetManager loads, caches and releases assets. Each manager owns its caches, so
// several managers can coexist in one process.
type AssetManager interface {
	// Assets returns the cache of loaded assets keyed by uuid or url.
	Assets() cache.Cache[string, asset.Asset]

	// Bundles returns the cache of loaded bundles keyed by name.
	Bundles() cache.Cache[string, Bundle]

	// Files returns the cache of downloaded bytes waiting to be built, keyed by item id.
	Files() cache.Cache[string, []byte]

	// Parsed returns the cache of parsed content waiting to be built, keyed by item id.
	Parsed() cache.Cache[string, any]

	// Downloader returns the downloader.
	Downloader() downloader.Downloader

	// Parser returns the parser.
	Parser() parser.Parser

	// Factory returns the factory used for remote assets and bundles.
	Factory() Factory

	// DependUtil returns the dependency records.
	DependUtil() depend.DependUtil

	// ReleaseManager returns the release manager.
	ReleaseManager() release.ReleaseManager

	// Registry returns the asset type registry.
	Registry() asset.Registry

	// Presets returns the named option presets.
	Presets() pipeline.Presets

	// Pipeline returns the load pipeline: preprocess then load.
	Pipeline() pipeline.Pipeline

	// FetchPipeline returns the preload pipeline: preprocess then fetch.
	FetchPipeline() pipeline.Pipeline

	// TransformPipeline returns the request transform pipeline: parse then combine.
	TransformPipeline() pipeline.Pipeline

	// LoadAny loads assets and their dependencies. Results arrive in request order,
	// one per resolved item. Cached assets are returned without any download.
	//
	// Parameters:
	//   - requests: the requests, each naming a uuid, url, path, dir or scene
	//   - opts: the task options, may be nil
	//   - onProgress: the progress callback, may be nil
	//   - onComplete: the completion callback, may be nil
	//
	// Returns:
	//   - *pipeline.Task: the running task
	LoadAny(requests []pipeline.Request, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task

	// PreloadAny downloads assets and their dependencies into the file cache without
	// building them. Results are the resolved *pipeline.RequestItem values.
	PreloadAny(requests []pipeline.Request, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task

	// Load is the blocking form of LoadAny.
	//
	// Parameters:
	//   - ctx: stops waiting, the load itself keeps running
	//   - requests: the requests
	//   - opts: the task options, may be nil
	//
	// Returns:
	//   - []any: the results
	//   - error: the load error or ctx.Err()
	Load(ctx context.Context, requests []pipeline.Request, opts *pipeline.Options) ([]any, error)

	// Preload is the blocking form of PreloadAny.
	Preload(ctx context.Context, requests []pipeline.Request, opts *pipeline.Options) ([]any, error)

	// LoadRemote loads a file by url and wraps it in an asset through the Factory.
	// The asset is cached under its url.
	//
	// Parameters:
	//   - url: the remote url or local path
	//   - opts: the task options, may be nil
	//   - onComplete: the completion callback, may be nil
	//
	// Returns:
	//   - *pipeline.Task: the running task
	LoadRemote(url string, opts *pipeline.Options, onComplete pipeline.CompleteFunc) *pipeline.Task

	// LoadBundle loads a bundle config and every bundle it depends on.
	//
	// Parameters:
	//   - nameOrURL: a bundle name resolved through Config, or a bundle url
	//   - opts: the task options, may be nil
	//   - onComplete: the completion callback, may be nil
	//
	// Returns:
	//   - *pipeline.Task: the running task
	LoadBundle(nameOrURL string, opts *pipeline.Options, onComplete pipeline.CompleteFunc) *pipeline.Task

	// PostLoadNative loads the deferred native payload of an asset. The payload is
	// discarded if the asset is destroyed while it loads.
	//
	// Parameters:
	//   - a: the asset
	//   - opts: the task options, may be nil
	//   - onComplete: the completion callback, may be nil
	//
	// Returns:
	//   - *pipeline.Task: the running task
	PostLoadNative(a asset.Asset, opts *pipeline.Options, onComplete pipeline.CompleteFunc) *pipeline.Task

	// LoadWithJSON builds an asset from serialized json held in memory. It panics
	// unless the manager runs in editor mode.
	//
	// Parameters:
	//   - data: the serialized asset
	//   - opts: the task options, AssetID names the asset; a random uuid is used otherwise
	//   - onProgress: the progress callback, may be nil
	//   - onComplete: the completion callback, may be nil
	//
	// Returns:
	//   - *pipeline.Task: the running task
	LoadWithJSON(data []byte, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task

	// GetBundle returns a loaded bundle.
	//
	// Parameters:
	//   - name: the bundle name
	//
	// Returns:
	//   - Bundle: the bundle, or nil
	GetBundle(name string) Bundle

	// RemoveBundle releases every asset of a bundle and forgets it.
	//
	// Parameters:
	//   - b: the bundle
	RemoveBundle(b Bundle)

	// Main returns the main bundle, or nil when it is not loaded.
	Main() Bundle

	// Resources returns the resources bundle, or nil when it is not loaded.
	Resources() Bundle

	// ReleaseAsset force releases an asset.
	//
	// Parameters:
	//   - a: the asset
	ReleaseAsset(a asset.Asset)

	// ReleaseUnusedAssets releases every cached asset that nothing retains.
	ReleaseUnusedAssets()

	// ReleaseAll force releases every cached asset.
	ReleaseAll()

	// ReplaceScene makes scene the current scene and drops the references held by the
	// previous one, releasing its exclusive dependencies when it is flagged for auto release.
	//
	// Parameters:
	//   - scene: the incoming scene
	ReplaceScene(scene *asset.SceneAsset)

	// Config returns the active configuration.
	Config() Config

	// Init applies a configuration and resets every cache.
	//
	// Parameters:
	//   - config: the configuration
	Init(config Config)

	// Close stops the downloader and cancels in-flight loads.
	Close()
}

var _ AssetManager = &managerImpl{}

// New creates an AssetManager with the provided options applied.
//
// Parameters:
//   - options: a variadic list of AssetManagerBuilderOption functions
//
// Returns:
//   - AssetManager: the manager
func New(options ...AssetManagerBuilderOption) AssetManager {
	m := &managerImpl{
		logger:  log.Default(),
		assets:  cache.NewCache[string, asset.Asset](),
		bundles: cache.NewCache[string, Bundle](),
		files:   cache.NewCache[string, []byte](),
		parsed:  cache.NewCache[string, any](),
		depends: depend.NewDependUtil(),
		presets: pipeline.DefaultPresets(),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())

	for _, opt := range options {
		opt(m)
	}
	m.config = m.config.normalized()

	if m.downloader == nil {
		m.downloader = downloader.NewDownloader(append([]downloader.DownloaderBuilderOption{downloader.WithLogger(m.logger)}, m.downloaderOpts...)...)
	}
	if m.parser == nil {
		m.parser = parser.NewParser(parser.WithLogger(m.logger))
	}
	if m.registry == nil {
		m.registry = asset.NewRegistry(m.registryOpts...)
	}
	if m.factory == nil {
		m.factory = NewFactory()
	}
	m.factory.Register(pipeline.BundleExt, func(id string, content any, _ *pipeline.Options) (any, error) {
		cfg, ok := content.(*pipeline.BundleConfig)
		if !ok {
			return nil, fmt.Errorf("%s: expected a bundle config, got %T", id, content)
		}
		return newBundle(m, cfg), nil
	})

	m.release = release.NewReleaseManager(m.assets, m.depends,
		release.WithLogger(m.logger),
		release.WithDeferred(m.deferredRelease),
		release.WithRemoveHook(func(a asset.Asset) {
			m.bundles.ForEach(func(_ string, b Bundle) {
				if bi, ok := b.(*bundleImpl); ok {
					bi.forget(a)
				}
			})
		}),
	)

	m.transformPipeline = pipeline.NewPipeline("transform",
		pipeline.WithStage("parse", m.parseRequests),
		pipeline.WithStage("combine", m.combine),
	)
	m.loadPipeline = pipeline.NewPipeline("normal",
		pipeline.WithStage("preprocess", m.preprocess),
		pipeline.WithStage("load", m.load),
	)
	m.fetchPipeline = pipeline.NewPipeline("fetch",
		pipeline.WithStage("preprocess", m.preprocess),
		pipeline.WithStage("fetch", m.fetch),
	)
	m.jsonPipeline = pipeline.NewPipeline("json",
		pipeline.WithStage("parse", m.parseInline),
		pipeline.WithStage("load", m.load),
	)

	m.downloader.Init(m.config.Server, m.config.BundleVers, m.config.RemoteBundles)
	return m
}

func (m *managerImpl) Assets() cache.Cache[string, asset.Asset] { return m.assets }
func (m *managerImpl) Bundles() cache.Cache[string, Bundle]     { return m.bundles }
func (m *managerImpl) Files() cache.Cache[string, []byte]       { return m.files }
func (m *managerImpl) Parsed() cache.Cache[string, any]         { return m.parsed }
func (m *managerImpl) Downloader() downloader.Downloader        { return m.downloader }
func (m *managerImpl) Parser() parser.Parser                    { return m.parser }
func (m *managerImpl) Factory() Factory                         { return m.factory }
func (m *managerImpl) DependUtil() depend.DependUtil            { return m.depends }
func (m *managerImpl) ReleaseManager() release.ReleaseManager   { return m.release }
func (m *managerImpl) Registry() asset.Registry                 { return m.registry }
func (m *managerImpl) Presets() pipeline.Presets                { return m.presets }
func (m *managerImpl) Pipeline() pipeline.Pipeline              { return m.loadPipeline }
func (m *managerImpl) FetchPipeline() pipeline.Pipeline         { return m.fetchPipeline }
func (m *managerImpl) TransformPipeline() pipeline.Pipeline     { return m.transformPipeline }

func (m *managerImpl) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *managerImpl) LoadAny(requests []pipeline.Request, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task {
	opts = m.prepareOptions(opts, pipeline.PresetDefault)
	task := pipeline.NewTask(
		pipeline.WithRequests(requests),
		pipeline.WithOptions(opts),
		pipeline.WithOnProgress(onProgress),
		pipeline.WithOnComplete(onComplete),
	)
	m.loadPipeline.Async(task)
	return task
}

func (m *managerImpl) PreloadAny(requests []pipeline.Request, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task {
	opts = m.prepareOptions(opts, pipeline.PresetPreload)
	task := pipeline.NewTask(
		pipeline.WithRequests(requests),
		pipeline.WithOptions(opts),
		pipeline.WithOnProgress(onProgress),
		pipeline.WithOnComplete(onComplete),
	)
	m.fetchPipeline.Async(task)
	return task
}

func (m *managerImpl) Load(ctx context.Context, requests []pipeline.Request, opts *pipeline.Options) ([]any, error) {
	return m.LoadAny(requests, opts, nil, nil).Wait(ctx)
}

func (m *managerImpl) Preload(ctx context.Context, requests []pipeline.Request, opts *pipeline.Options) ([]any, error) {
	return m.PreloadAny(requests, opts, nil, nil).Wait(ctx)
}

func (m *managerImpl) LoadRemote(url string, opts *pipeline.Options, onComplete pipeline.CompleteFunc) *pipeline.Task {
	opts = m.prepareOptions(opts, pipeline.PresetRemote)
	item := &pipeline.RequestItem{
		ID:       url,
		URL:      url,
		Ext:      common.Coalesce(opts.Ext, urlExt(url)),
		IsNative: true,
		Options:  opts,
	}
	task := pipeline.NewTask(pipeline.WithInput(item), pipeline.WithOptions(opts), pipeline.WithOnComplete(onComplete))
	task.AddTotal(1)

	go func() {
		a, err := m.loadRemote(item)
		if err != nil {
			task.Complete(err, nil)
			return
		}
		task.Progress(item)
		task.Complete(nil, []any{a})
	}()
	return task
}

func (m *managerImpl) LoadBundle(nameOrURL string, opts *pipeline.Options, onComplete pipeline.CompleteFunc) *pipeline.Task {
	opts = m.prepareOptions(opts, pipeline.PresetBundle)
	task := pipeline.NewTask(pipeline.WithInput(nameOrURL), pipeline.WithOptions(opts), pipeline.WithOnComplete(onComplete))

	go func() {
		b, err := m.loadBundle(nameOrURL, opts, nil)
		if err != nil {
			task.Complete(err, nil)
			return
		}
		task.Complete(nil, []any{b})
	}()
	return task
}

func (m *managerImpl) PostLoadNative(a asset.Asset, opts *pipeline.Options, onComplete pipeline.CompleteFunc) *pipeline.Task {
	opts = m.prepareOptions(opts, pipeline.PresetDefault)
	task := pipeline.NewTask(pipeline.WithInput(a), pipeline.WithOptions(opts), pipeline.WithOnComplete(onComplete))

	go func() {
		if err := m.postLoadNative(a, opts); err != nil {
			task.Complete(err, nil)
			return
		}
		task.Complete(nil, []any{a})
	}()
	return task
}

func (m *managerImpl) LoadWithJSON(data []byte, opts *pipeline.Options, onProgress pipeline.ProgressFunc, onComplete pipeline.CompleteFunc) *pipeline.Task {
	if !m.Config().Editor {
		panic("assetmanager: LoadWithJSON is only available in editor mode")
	}
	opts = m.prepareOptions(opts, pipeline.PresetDefault)
	if opts.CacheAsset == nil {
		opts.CacheAsset = pipeline.Bool(false)
	}
	id := common.Coalesce(opts.AssetID, uuid.New().String())

	item := &pipeline.RequestItem{ID: id, UUID: id, Ext: ".json", File: data, Options: opts}
	task := pipeline.NewTask(
		pipeline.WithInput(item),
		pipeline.WithOptions(opts),
		pipeline.WithOnProgress(onProgress),
		pipeline.WithOnComplete(onComplete),
	)
	m.jsonPipeline.Async(task)
	return task
}

func (m *managerImpl) GetBundle(name string) Bundle {
	b, _ := m.bundles.Get(name)
	return b
}

func (m *managerImpl) RemoveBundle(b Bundle) {
	if b == nil {
		return
	}
	if bi, ok := b.(*bundleImpl); ok {
		bi.destroy()
	}
	if cached, ok := m.bundles.Get(b.Name()); ok && cached == b {
		m.bundles.Remove(b.Name())
	}
}

func (m *managerImpl) Main() Bundle {
	return m.GetBundle(BundleMain)
}

func (m *managerImpl) Resources() Bundle {
	return m.GetBundle(BundleResources)
}

func (m *managerImpl) ReleaseAsset(a asset.Asset) {
	m.release.TryRelease(a, true)
}

func (m *managerImpl) ReleaseUnusedAssets() {
	m.assets.ForEach(func(_ string, a asset.Asset) {
		m.release.TryRelease(a, false)
	})
}

func (m *managerImpl) ReleaseAll() {
	m.assets.ForEach(func(_ string, a asset.Asset) {
		m.release.TryRelease(a, true)
	})
}

func (m *managerImpl) ReplaceScene(scene *asset.SceneAsset) {
	m.mu.Lock()
	old := m.scene
	m.scene = scene
	m.mu.Unlock()

	if old != nil && old != scene {
		m.release.AutoRelease(old, scene)
	}
}

func (m *managerImpl) Init(config Config) {
	m.mu.Lock()
	m.config = config.normalized()
	m.scene = nil
	cfg := m.config
	m.mu.Unlock()

	m.files.Clear()
	m.parsed.Clear()
	m.release.Init()
	m.assets.Clear()
	m.bundles.Clear()
	m.depends.Init()
	m.downloader.Init(cfg.Server, cfg.BundleVers, cfg.RemoteBundles)
}

func (m *managerImpl) Close() {
	m.cancel()
	m.downloader.Close()
}

// prepareOptions copies opts, fills the preset and validates caller keys. Reserved keys
// in Custom are a programmer error.
func (m *managerImpl) prepareOptions(opts *pipeline.Options, preset string) *pipeline.Options {
	o := opts.Clone()
	if o.Preset == "" {
		o.Preset = preset
	}
	if err := o.Validate(); err != nil {
		panic("assetmanager: " + err.Error())
	}
	o.ApplyPreset(m.presets)
	return o
}

// force reports whether failures are logged instead of aborting the task.
func (m *managerImpl) force() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Force
}

// bundleURL resolves a bundle name to its root url. Anything containing a slash is
// taken as a url already.
func (m *managerImpl) bundleURL(nameOrURL string) string {
	if strings.Contains(nameOrURL, "/") {
		return strings.TrimSuffix(nameOrURL, "/")
	}
	cfg := m.Config()
	switch {
	case m.downloader.IsRemoteBundle(nameOrURL):
		return m.downloader.RemoteServer() + "/remote/" + nameOrURL
	case slices.Contains(cfg.Subpackages, nameOrURL):
		return "subpackages/" + nameOrURL
	default:
		return cfg.AssetsRoot + "/" + nameOrURL
	}
}

// urlExt returns the extension of a url, ignoring any query or fragment.
func urlExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return path.Ext(url)
}
