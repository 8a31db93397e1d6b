package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-runtime/engine/asset"
	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"

	"github.com/go-text/typesetting/font"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Handler turns downloaded bytes into a parsed value.
type Handler interface {
	// Parse decodes file.
	//
	// Parameters:
	//   - file: the downloaded bytes
	//   - opts: the request options, may be nil
	//
	// Returns:
	//   - any: the parsed value
	//   - error: error if the bytes are malformed
	Parse(file []byte, opts *pipeline.Options) (any, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(file []byte, opts *pipeline.Options) (any, error)

func (f HandlerFunc) Parse(file []byte, opts *pipeline.Options) (any, error) {
	return f(file, opts)
}

// parserImpl is the implementation of the Parser interface.
type parserImpl struct {
	mu       sync.RWMutex
	logger   *log.Logger
	handlers map[string]Handler
}

// Parser decodes downloaded files by parse key. Serialized assets use
// pipeline.ImportExt, native payloads use their file extension.
type Parser interface {
	// Register installs the handler for a parse key, replacing any previous one.
	//
	// Parameters:
	//   - key: the parse key
	//   - h: the handler
	Register(key string, h Handler)

	// Parse decodes a file. Keys with no handler return the bytes unchanged.
	//
	// Parameters:
	//   - id: the request id, used in errors
	//   - key: the parse key
	//   - file: the downloaded bytes
	//   - opts: the request options, may be nil
	//
	// Returns:
	//   - any: the parsed value
	//   - error: a *pipeline.LoadError wrapping pipeline.ErrParse
	Parse(id, key string, file []byte, opts *pipeline.Options) (any, error)
}

var _ Parser = &parserImpl{}

// NewParser creates a Parser with every built-in handler registered and the provided
// options applied.
//
// Parameters:
//   - options: a variadic list of ParserBuilderOption functions
//
// Returns:
//   - Parser: the parser
func NewParser(options ...ParserBuilderOption) Parser {
	p := &parserImpl{
		logger:   log.New(io.Discard, "", 0),
		handlers: make(map[string]Handler),
	}

	p.handlers[pipeline.ImportExt] = HandlerFunc(parseImport)
	p.handlers[pipeline.BundleExt] = HandlerFunc(parseBundle)
	p.handlers[".json"] = HandlerFunc(parseJSON)
	for _, ext := range []string{".txt", ".xml", ".vsh", ".fsh", ".atlas", ".tmx", ".tsx", ".fnt", ".plist", ".csv", ".md"} {
		p.handlers[ext] = HandlerFunc(parseText)
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"} {
		p.handlers[ext] = HandlerFunc(parseImage)
	}
	for _, ext := range []string{".ttf", ".otf"} {
		p.handlers[ext] = HandlerFunc(parseFont)
	}
	p.handlers[".glb"] = HandlerFunc(func(file []byte, _ *pipeline.Options) (any, error) {
		return parseGLB(file)
	})
	p.handlers[".gltf"] = HandlerFunc(func(file []byte, _ *pipeline.Options) (any, error) {
		return parseGLTF(file)
	})
	p.handlers[".bin"] = HandlerFunc(func(file []byte, _ *pipeline.Options) (any, error) {
		return file, nil
	})

	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *parserImpl) Register(key string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[key] = h
}

func (p *parserImpl) Parse(id, key string, file []byte, opts *pipeline.Options) (any, error) {
	p.mu.RLock()
	h, ok := p.handlers[key]
	p.mu.RUnlock()
	if !ok {
		return file, nil
	}

	out, err := h.Parse(file, opts)
	if err != nil {
		p.logger.Printf("[Parser] failed to parse %s as %s: %v", id, key, err)
		return nil, pipeline.NewLoadError(pipeline.ErrParse, id, "", err)
	}
	return out, nil
}

// decodeUTF8 strips a byte order mark and converts UTF-16 input to UTF-8.
func decodeUTF8(file []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}
	return out, nil
}

func parseImport(file []byte, _ *pipeline.Options) (any, error) {
	data, err := decodeUTF8(file)
	if err != nil {
		return nil, err
	}
	return asset.DecodeImportData(data)
}

func parseBundle(file []byte, _ *pipeline.Options) (any, error) {
	data, err := decodeUTF8(file)
	if err != nil {
		return nil, err
	}
	return pipeline.DecodeBundleConfig(data)
}

func parseJSON(file []byte, _ *pipeline.Options) (any, error) {
	data, err := decodeUTF8(file)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return out, nil
}

func parseText(file []byte, _ *pipeline.Options) (any, error) {
	data, err := decodeUTF8(file)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func parseImage(file []byte, _ *pipeline.Options) (any, error) {
	img, _, err := image.Decode(bytes.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func parseFont(file []byte, _ *pipeline.Options) (any, error) {
	face, err := font.ParseTTF(bytes.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return face, nil
}
