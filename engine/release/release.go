package release

import (
	"io"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/cache"
	"github.com/Carmen-Shannon/oxy-runtime/engine/depend"
)

// releaseManagerImpl is the implementation of the ReleaseManager interface.
type releaseManagerImpl struct {
	mu sync.Mutex

	logger   *log.Logger
	assets   cache.Cache[string, asset.Asset]
	depends  depend.DependUtil
	deferred bool
	hooks    []func(asset.Asset)

	pending  map[string]asset.Asset
	order    []string
	persists map[string]asset.Asset
}

// ReleaseManager destroys assets once nothing retains them. Destroying an asset drops one
// reference from each of its dependencies and releases those that become unused.
type ReleaseManager interface {
	// TryRelease releases a, or queues it when deferred mode is on and force is false.
	// Without force, an asset with a positive reference count survives.
	//
	// Parameters:
	//   - a: the asset
	//   - force: destroy regardless of the reference count
	TryRelease(a asset.Asset, force bool)

	// ReleaseRef drops one reference from a and releases it if it became unused.
	//
	// Parameters:
	//   - a: the asset
	ReleaseRef(a asset.Asset)

	// AddPersistRoot retains assets until RemovePersistRoot is called for them.
	// Adding the same asset twice has no further effect.
	//
	// Parameters:
	//   - assets: the assets to keep alive
	AddPersistRoot(assets ...asset.Asset)

	// RemovePersistRoot drops the retain taken by AddPersistRoot.
	//
	// Parameters:
	//   - assets: the assets to let go
	RemovePersistRoot(assets ...asset.Asset)

	// IsPersistRoot reports whether a is held by AddPersistRoot.
	//
	// Parameters:
	//   - a: the asset
	//
	// Returns:
	//   - bool: true for persistent roots
	IsPersistRoot(a asset.Asset) bool

	// AutoRelease drops the references the old scene held on its dependencies when a
	// new scene replaces it. When the old scene is flagged for auto release, dependencies
	// that become unused are released. Dependencies shared with the new scene survive
	// through the new scene's own references.
	//
	// Parameters:
	//   - oldScene: the outgoing scene, may be nil
	//   - newScene: the incoming scene, may be nil
	AutoRelease(oldScene, newScene *asset.SceneAsset)

	// Flush performs the releases queued in deferred mode.
	Flush()

	// Pending returns the number of queued releases.
	//
	// Returns:
	//   - int: the queue length
	Pending() int

	// Init drops every queued release and persistent root without touching the assets.
	Init()
}

var _ ReleaseManager = &releaseManagerImpl{}

// NewReleaseManager creates a ReleaseManager over the asset cache and dependency records
// of one asset manager.
//
// Parameters:
//   - assets: the loaded asset cache, entries are removed as assets are released
//   - depends: the dependency records, entries are removed as assets are released
//   - options: a variadic list of ReleaseManagerBuilderOption functions
//
// Returns:
//   - ReleaseManager: the release manager
func NewReleaseManager(assets cache.Cache[string, asset.Asset], depends depend.DependUtil, options ...ReleaseManagerBuilderOption) ReleaseManager {
	if assets == nil || depends == nil {
		panic("release: nil asset cache or dependency records")
	}
	r := &releaseManagerImpl{
		logger:   log.New(io.Discard, "", 0),
		assets:   assets,
		depends:  depends,
		pending:  make(map[string]asset.Asset),
		persists: make(map[string]asset.Asset),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *releaseManagerImpl) TryRelease(a asset.Asset, force bool) {
	if a == nil {
		return
	}
	if force || !r.deferred {
		r.free(a, force)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	uuid := a.UUID()
	if _, queued := r.pending[uuid]; !queued {
		r.order = append(r.order, uuid)
	}
	r.pending[uuid] = a
}

func (r *releaseManagerImpl) ReleaseRef(a asset.Asset) {
	if a == nil {
		return
	}
	a.DecRef()
	r.TryRelease(a, false)
}

func (r *releaseManagerImpl) AddPersistRoot(assets ...asset.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range assets {
		if a == nil {
			continue
		}
		if _, ok := r.persists[a.UUID()]; ok {
			continue
		}
		if !a.TryAddRef() {
			continue
		}
		r.persists[a.UUID()] = a
	}
}

func (r *releaseManagerImpl) RemovePersistRoot(assets ...asset.Asset) {
	var released []asset.Asset
	r.mu.Lock()
	for _, a := range assets {
		if a == nil {
			continue
		}
		if held, ok := r.persists[a.UUID()]; ok && held == a {
			delete(r.persists, a.UUID())
			released = append(released, a)
		}
	}
	r.mu.Unlock()

	for _, a := range released {
		r.ReleaseRef(a)
	}
}

func (r *releaseManagerImpl) IsPersistRoot(a asset.Asset) bool {
	if a == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	held, ok := r.persists[a.UUID()]
	return ok && held == a
}

func (r *releaseManagerImpl) AutoRelease(oldScene, newScene *asset.SceneAsset) {
	if oldScene == nil {
		return
	}
	oldID := oldScene.UUID()
	for _, uuid := range r.depends.GetDeps(oldID) {
		dep, ok := r.assets.Get(uuid)
		if !ok {
			continue
		}
		dep.DecRef()
		if oldScene.AutoReleaseAssets() {
			r.TryRelease(dep, false)
		}
	}
	if newScene == nil || newScene.UUID() != oldID {
		r.depends.Remove(oldID)
	}
}

func (r *releaseManagerImpl) Flush() {
	r.mu.Lock()
	order := r.order
	pending := r.pending
	r.order = nil
	r.pending = make(map[string]asset.Asset)
	r.mu.Unlock()

	for _, uuid := range order {
		r.free(pending[uuid], false)
	}
}

func (r *releaseManagerImpl) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *releaseManagerImpl) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[string]asset.Asset)
	r.order = nil
	r.persists = make(map[string]asset.Asset)
}

// free destroys a and walks into its dependencies. The asset leaves the cache before its
// dependencies are visited, so a dependency cycle cannot reach it twice.
func (r *releaseManagerImpl) free(a asset.Asset, force bool) {
	if a == nil || !a.IsValid() {
		return
	}
	if !force && a.RefCount() > 0 {
		return
	}

	uuid := a.UUID()
	if cached, ok := r.assets.Get(uuid); ok && cached == a {
		r.assets.Remove(uuid)
	}
	for _, hook := range r.hooks {
		hook(a)
	}

	for _, depID := range r.depends.GetDeps(uuid) {
		dep, ok := r.assets.Get(depID)
		if !ok {
			continue
		}
		dep.DecRef()
		r.free(dep, false)
	}

	if a.Destroy() {
		r.logger.Printf("[Release] destroyed %s (force=%t)", uuid, force)
	}
	r.depends.Remove(uuid)
}
