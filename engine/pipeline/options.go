package pipeline

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Preset names understood by the asset manager.
const (
	PresetDefault = "default"
	PresetPreload = "preload"
	PresetScene   = "scene"
	PresetBundle  = "bundle"
	PresetRemote  = "remote"
	PresetScript  = "script"
)

// ReservedKeys lists option names owned by the loader. Caller supplied entries in
// Options.Custom must not reuse them.
var ReservedKeys = []string{
	"uuid", "url", "path", "dir", "scene", "type", "priority", "preset", "audioLoadMode",
	"ext", "bundle", "onFileProgress", "maxConcurrency", "maxRequestsPerFrame", "maxRetryCount",
	"version", "xhrResponseType", "xhrWithCredentials", "xhrMimeType", "xhrTimeout", "xhrHeader",
	"reloadAsset", "cacheAsset", "cacheEnabled", "__isNative__", "__nativeDepend__",
}

// Options configures one load, preload or fetch. Zero values mean "unset" and are
// filled from the named preset, then from the downloader defaults.
type Options struct {
	// Preset names the option bundle applied to unset fields.
	Preset string
	// Priority orders queued downloads; higher values start first.
	Priority int
	// Type restricts path and dir lookups to one asset type name.
	Type string
	// Bundle is the default bundle for path, dir and scene lookups.
	Bundle string
	// Ext forces the extension used to pick a downloader and parser.
	Ext string
	// Version overrides the version segment of bundle config urls.
	Version string
	// AudioLoadMode selects how audio payloads are fetched.
	AudioLoadMode int

	// ReloadAsset bypasses the asset cache.
	ReloadAsset bool
	// CacheAsset controls whether loaded assets are stored in the asset cache; nil means true.
	CacheAsset *bool
	// CacheEnabled controls whether downloaded files may be kept by the download cache; nil means true.
	CacheEnabled *bool

	// MaxConcurrency bounds how many downloads of this request may run at once.
	MaxConcurrency int
	// MaxRequestsPerFrame bounds how many downloads of this request may start in one frame.
	MaxRequestsPerFrame int
	// MaxRetryCount is the number of retries after a failed download.
	MaxRetryCount int

	XHRResponseType    string
	XHRWithCredentials bool
	XHRMimeType        string
	XHRTimeout         time.Duration
	XHRHeader          map[string]string

	// OnFileProgress receives byte progress for each downloaded file.
	OnFileProgress func(loaded, total int64)

	// IsNative treats every payload as a native file instead of a serialized asset.
	IsNative bool
	// AssetID names the asset built from inline json; a random uuid is used when empty.
	AssetID string

	// Custom carries caller keys through to registered handlers.
	Custom map[string]any
}

// Presets maps preset names to the option values they contribute.
type Presets map[string]Options

// DefaultPresets returns the built-in presets.
//
// Returns:
//   - Presets: a fresh preset table the caller may modify
func DefaultPresets() Presets {
	return Presets{
		PresetDefault: {Priority: 0},
		PresetPreload: {MaxConcurrency: 6, MaxRequestsPerFrame: 2, Priority: -1},
		PresetScene:   {MaxConcurrency: 20, MaxRequestsPerFrame: 20, Priority: 1},
		PresetBundle:  {MaxConcurrency: 20, MaxRequestsPerFrame: 20, Priority: 2},
		PresetRemote:  {MaxRetryCount: 4},
		PresetScript:  {MaxConcurrency: 1024, MaxRequestsPerFrame: 1024, Priority: 2},
	}
}

// Clone returns a copy that shares no maps with o. A nil receiver yields empty options.
//
// Returns:
//   - *Options: the copy
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	c := *o
	c.XHRHeader = maps.Clone(o.XHRHeader)
	c.Custom = maps.Clone(o.Custom)
	return &c
}

// ApplyPreset fills unset fields from the preset named by o.Preset. Unknown preset
// names are ignored.
//
// Parameters:
//   - presets: the preset table to read from
func (o *Options) ApplyPreset(presets Presets) {
	p, ok := presets[o.Preset]
	if !ok {
		return
	}
	if o.Priority == 0 {
		o.Priority = p.Priority
	}
	if o.MaxConcurrency == 0 {
		o.MaxConcurrency = p.MaxConcurrency
	}
	if o.MaxRequestsPerFrame == 0 {
		o.MaxRequestsPerFrame = p.MaxRequestsPerFrame
	}
	if o.MaxRetryCount == 0 {
		o.MaxRetryCount = p.MaxRetryCount
	}
	if o.Bundle == "" {
		o.Bundle = p.Bundle
	}
}

// Validate rejects custom keys that collide with ReservedKeys.
//
// Returns:
//   - error: error naming the first reserved key found
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	keys := slices.Sorted(maps.Keys(o.Custom))
	for _, k := range keys {
		if slices.Contains(ReservedKeys, k) {
			return fmt.Errorf("option key %q is reserved", k)
		}
	}
	return nil
}

// ShouldCacheAsset reports whether loaded assets go into the asset cache.
func (o *Options) ShouldCacheAsset() bool {
	return o == nil || o.CacheAsset == nil || *o.CacheAsset
}

// ShouldCacheFile reports whether downloaded files may be kept for a later load.
func (o *Options) ShouldCacheFile() bool {
	return o == nil || o.CacheEnabled == nil || *o.CacheEnabled
}

// Bool returns a pointer to v for the optional boolean fields.
func Bool(v bool) *bool {
	return &v
}
