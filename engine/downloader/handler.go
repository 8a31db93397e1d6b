package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"
)

// Handler fetches the raw bytes behind a url.
type Handler interface {
	// Download fetches url.
	//
	// Parameters:
	//   - ctx: cancels the transfer
	//   - url: the resolved url, either http(s) or a local path
	//   - opts: the request options, may be nil
	//
	// Returns:
	//   - []byte: the payload
	//   - error: error if the transfer fails
	Download(ctx context.Context, url string, opts *pipeline.Options) ([]byte, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, url string, opts *pipeline.Options) ([]byte, error)

func (f HandlerFunc) Download(ctx context.Context, url string, opts *pipeline.Options) ([]byte, error) {
	return f(ctx, url, opts)
}

// fileHandler reads local paths from disk and everything with an http scheme over the network.
type fileHandler struct {
	client *http.Client
}

func (h *fileHandler) Download(ctx context.Context, url string, opts *pipeline.Options) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return h.fetch(ctx, url, opts)
	}

	path := strings.TrimPrefix(url, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.OnFileProgress != nil {
		opts.OnFileProgress(int64(len(data)), int64(len(data)))
	}
	return data, nil
}

func (h *fileHandler) fetch(ctx context.Context, url string, opts *pipeline.Options) ([]byte, error) {
	if opts != nil && opts.XHRTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.XHRTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if opts != nil {
		for k, v := range opts.XHRHeader {
			req.Header.Set(k, v)
		}
		if opts.XHRMimeType != "" {
			req.Header.Set("Accept", opts.XHRMimeType)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if opts != nil && opts.OnFileProgress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, onProgress: opts.OnFileProgress}
	}
	return io.ReadAll(body)
}

// progressReader reports the number of bytes read so far on every Read.
type progressReader struct {
	r          io.Reader
	loaded     int64
	total      int64
	onProgress func(loaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.onProgress(p.loaded, p.total)
	}
	return n, err
}

// bundleHandler fetches the config file of a bundle directory.
type bundleHandler struct {
	files Handler
}

func (h *bundleHandler) Download(ctx context.Context, url string, opts *pipeline.Options) ([]byte, error) {
	name := "config.json"
	if opts != nil && opts.Version != "" {
		name = "config." + opts.Version + ".json"
	}
	return h.files.Download(ctx, strings.TrimSuffix(url, "/")+"/"+name, opts)
}
