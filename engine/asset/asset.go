package asset

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Asset is a loaded, reference-counted resource.
//
// RefCount is maintained by owners: an asset that depends on another retains it once
// when it finishes loading, and persistent roots retain what they hold. The release
// manager destroys an asset when nothing retains it any more.
type Asset interface {
	// UUID returns the asset identity, which is also its cache key.
	//
	// Returns:
	//   - string: the uuid, or the url for remote assets
	UUID() string

	// SetUUID assigns the asset identity.
	//
	// Parameters:
	//   - uuid: the uuid
	SetUUID(uuid string)

	// Name returns the asset name from its serialized data.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Loaded reports whether the asset and all of its dependencies finished loading.
	//
	// Returns:
	//   - bool: true once loading completed
	Loaded() bool

	// SetLoaded marks the asset as loaded.
	//
	// Parameters:
	//   - loaded: the new state
	SetLoaded(loaded bool)

	// IsValid reports whether the asset has not been destroyed.
	//
	// Returns:
	//   - bool: false after Destroy
	IsValid() bool

	// Destroy releases the asset's native and GPU resources. Only the first call does
	// any work.
	//
	// Returns:
	//   - bool: true if this call destroyed the asset
	Destroy() bool

	// RefCount returns the current number of retains.
	//
	// Returns:
	//   - int: the reference count, never negative
	RefCount() int

	// AddRef retains the asset. Retaining a destroyed asset panics.
	AddRef()

	// TryAddRef retains the asset unless it is destroyed.
	//
	// Returns:
	//   - bool: false if the asset was destroyed and no retain was taken
	TryAddRef() bool

	// DecRef drops one retain. The count never goes below zero.
	DecRef()

	// NativeURL returns the url of the native payload, if any.
	//
	// Returns:
	//   - string: the url
	NativeURL() string

	// SetNativeURL records the url of the native payload.
	//
	// Parameters:
	//   - url: the url
	SetNativeURL(url string)

	// NativeDepend reports whether the native payload is still waiting to be loaded.
	//
	// Returns:
	//   - bool: true while the native payload is deferred
	NativeDepend() bool

	// SetNativeDepend marks whether the native payload is deferred.
	//
	// Parameters:
	//   - pending: the new state
	SetNativeDepend(pending bool)

	// NativeAsset returns the attached native payload.
	//
	// Returns:
	//   - any: the payload, or nil
	NativeAsset() any

	// SetNativeAsset attaches a native payload such as decoded pixels or a font face.
	//
	// Parameters:
	//   - native: the parsed payload
	//
	// Returns:
	//   - error: error if the payload has the wrong type for this asset
	SetNativeAsset(native any) error
}

// Dependent is implemented by assets that hold references to the assets they depend on.
type Dependent interface {
	// SetDependencies hands the loaded dependencies to the owning asset, keyed by uuid.
	// Dependencies that failed in force mode are absent from the map.
	//
	// Parameters:
	//   - deps: the loaded dependencies
	//
	// Returns:
	//   - error: error if the asset cannot be assembled from its dependencies
	SetDependencies(deps map[string]Asset) error
}

// Base is the shared part of every asset. Concrete assets embed it and are always used
// through pointers.
type Base struct {
	mu           sync.RWMutex
	uuid         string
	name         string
	loaded       bool
	destroyed    atomic.Bool
	refs         atomic.Int32
	nativeURL    string
	nativeDepend bool
	native       any
}

var _ Asset = &Base{}

// NewBase creates an asset base with the given name.
//
// Parameters:
//   - name: the asset name
//
// Returns:
//   - *Base: the base, valid and with a zero reference count
func NewBase(name string) *Base {
	return &Base{name: name}
}

func (b *Base) UUID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.uuid
}

func (b *Base) SetUUID(uuid string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uuid = uuid
}

func (b *Base) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

func (b *Base) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

func (b *Base) SetLoaded(loaded bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = loaded
}

func (b *Base) IsValid() bool {
	return !b.destroyed.Load()
}

func (b *Base) Destroy() bool {
	if !b.destroyed.CompareAndSwap(false, true) {
		return false
	}
	b.mu.Lock()
	b.native = nil
	b.loaded = false
	b.mu.Unlock()
	return true
}

func (b *Base) RefCount() int {
	return int(b.refs.Load())
}

func (b *Base) AddRef() {
	if b.destroyed.Load() {
		panic(fmt.Sprintf("asset: AddRef on destroyed asset %q", b.UUID()))
	}
	b.refs.Add(1)
}

func (b *Base) TryAddRef() bool {
	if b.destroyed.Load() {
		return false
	}
	b.refs.Add(1)
	if b.destroyed.Load() {
		b.DecRef()
		return false
	}
	return true
}

func (b *Base) DecRef() {
	for {
		n := b.refs.Load()
		if n <= 0 {
			return
		}
		if b.refs.CompareAndSwap(n, n-1) {
			return
		}
	}
}

func (b *Base) NativeURL() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nativeURL
}

func (b *Base) SetNativeURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nativeURL = url
}

func (b *Base) NativeDepend() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nativeDepend
}

func (b *Base) SetNativeDepend(pending bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nativeDepend = pending
}

func (b *Base) NativeAsset() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.native
}

func (b *Base) SetNativeAsset(native any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.native = native
	return nil
}
