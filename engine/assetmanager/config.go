package assetmanager

import (
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-runtime/common"
)

// Default bases used when an asset is not listed in any loaded bundle.
const (
	DefaultImportBase = "import"
	DefaultNativeBase = "native"
	DefaultAssetsRoot = "assets"
)

// Config describes where assets are served from and how loading failures are handled.
type Config struct {
	// Server is the remote server root for remote bundles.
	Server string
	// BundleVers maps bundle name to the version suffix of its config file.
	BundleVers map[string]string
	// RemoteBundles names bundles served from Server.
	RemoteBundles []string
	// Subpackages names bundles served from the subpackages directory.
	Subpackages []string
	// ImportBase and NativeBase locate assets that belong to no loaded bundle.
	ImportBase string
	NativeBase string
	// AssetsRoot is the directory local bundles are served from.
	AssetsRoot string
	// Force keeps loading after a failure, logging it and leaving a nil result.
	Force bool
	// Editor enables editor only operations such as LoadWithJSON.
	Editor bool
}

// normalized returns a copy with defaults applied and trailing slashes removed.
func (c Config) normalized() Config {
	out := c
	out.Server = strings.TrimSuffix(c.Server, "/")
	out.ImportBase = strings.TrimSuffix(common.Coalesce(c.ImportBase, DefaultImportBase), "/")
	out.NativeBase = strings.TrimSuffix(common.Coalesce(c.NativeBase, DefaultNativeBase), "/")
	out.AssetsRoot = strings.TrimSuffix(common.Coalesce(c.AssetsRoot, DefaultAssetsRoot), "/")
	out.RemoteBundles = slices.Clone(c.RemoteBundles)
	out.Subpackages = slices.Clone(c.Subpackages)
	if c.BundleVers != nil {
		out.BundleVers = make(map[string]string, len(c.BundleVers))
		for k, v := range c.BundleVers {
			out.BundleVers[k] = v
		}
	}
	return out
}
