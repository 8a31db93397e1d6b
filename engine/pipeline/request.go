package pipeline

// ImportExt is the parser key for serialized asset files.
const ImportExt = "import"

// BundleExt is the download and parse key of bundle configs.
const BundleExt = "bundle"

// Request is one caller-side reference to something loadable. Exactly one of UUID,
// URL, Path, Dir or Scene is expected to be set.
type Request struct {
	UUID  string
	URL   string
	Path  string
	Dir   string
	Scene string

	// Type restricts Path and Dir lookups to one asset type name.
	Type string
	// Bundle names the bundle used for Path, Dir and Scene lookups.
	Bundle string
	// Ext forces the extension of the payload.
	Ext string
	// IsNative loads a native payload instead of a serialized asset.
	IsNative bool
}

// UUIDs builds one request per uuid.
//
// Parameters:
//   - ids: the asset uuids
//
// Returns:
//   - []Request: the requests in argument order
func UUIDs(ids ...string) []Request {
	out := make([]Request, len(ids))
	for i, id := range ids {
		out[i] = Request{UUID: id}
	}
	return out
}

// URLs builds one request per url.
//
// Parameters:
//   - urls: the addresses to load
//
// Returns:
//   - []Request: the requests in argument order
func URLs(urls ...string) []Request {
	out := make([]Request, len(urls))
	for i, u := range urls {
		out[i] = Request{URL: u}
	}
	return out
}

// AssetInfo is the manifest entry of one asset inside a bundle.
type AssetInfo struct {
	UUID      string
	Path      string
	Type      string
	Ver       string
	NativeVer string
	// Redirect names the bundle that actually hosts the asset.
	Redirect string
}

// RequestItem is one resolved unit of work flowing through a pipeline.
type RequestItem struct {
	// ID is the canonical cache key: the uuid when known, otherwise the url.
	ID   string
	UUID string
	URL  string
	Ext  string

	// IsNative marks a binary payload rather than a serialized asset.
	IsNative bool

	// File is the raw payload once downloaded.
	File []byte
	// Content is the parsed payload.
	Content any

	// Info is the bundle manifest entry, if the item was resolved through a bundle.
	Info *AssetInfo
	// Config is the name of the bundle the item belongs to.
	Config string

	Options *Options
}

// ParseKey returns the key used to select a parser for the item.
//
// Returns:
//   - string: the item extension for native payloads, otherwise ImportExt
func (r *RequestItem) ParseKey() string {
	if r.IsNative {
		return r.Ext
	}
	return ImportExt
}
