package pipeline

import (
	"encoding/json"
	"fmt"
)

// BundleAssetEntry describes one asset listed in a bundle config.
type BundleAssetEntry struct {
	Path      string `json:"path,omitempty"`
	Type      string `json:"type,omitempty"`
	Ver       string `json:"ver,omitempty"`
	NativeVer string `json:"nativeVer,omitempty"`
}

// BundleConfig is the config.json stored at the root of a bundle directory.
type BundleConfig struct {
	Name       string `json:"name"`
	ImportBase string `json:"importBase,omitempty"`
	NativeBase string `json:"nativeBase,omitempty"`
	// Deps names bundles that must be loaded before this one.
	Deps []string `json:"deps,omitempty"`
	// Assets maps uuid to asset description.
	Assets map[string]BundleAssetEntry `json:"assets,omitempty"`
	// Scenes maps scene name to uuid.
	Scenes map[string]string `json:"scenes,omitempty"`
	// Redirect maps uuid to the name of the bundle that actually holds the asset.
	Redirect map[string]string `json:"redirect,omitempty"`

	// Base is the resolved bundle root. It is filled in by the loader, not read from json.
	Base string `json:"-"`
}

// DecodeBundleConfig decodes a bundle config.
//
// Parameters:
//   - data: the json payload
//
// Returns:
//   - *BundleConfig: the config with empty maps allocated
//   - error: error if the payload is not valid json or has no name
func DecodeBundleConfig(data []byte) (*BundleConfig, error) {
	var c BundleConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode bundle config: %w", err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("bundle config has no name")
	}
	if c.Assets == nil {
		c.Assets = map[string]BundleAssetEntry{}
	}
	if c.Scenes == nil {
		c.Scenes = map[string]string{}
	}
	if c.Redirect == nil {
		c.Redirect = map[string]string{}
	}
	return &c, nil
}
