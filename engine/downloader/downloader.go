package downloader

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/sync/singleflight"
)

// downloaderImpl is the implementation of the Downloader interface.
type downloaderImpl struct {
	mu sync.Mutex

	logger *log.Logger
	pool   worker.DynamicWorkerPool
	flight singleflight.Group

	handlers       map[string]Handler
	defaultHandler Handler

	maxConcurrency      int
	maxRequestsPerFrame int
	maxRetryCount       int
	retryInterval       time.Duration
	frameInterval       time.Duration
	workers             int

	queue            pendingQueue
	seq              uint64
	active           int
	startedThisFrame int
	ticker           *time.Ticker
	stop             chan struct{}
	closed           bool
	taskID           int

	remoteServer  string
	bundleVers    map[string]string
	remoteBundles map[string]bool
}

// Downloader fetches files with bounded concurrency, a per-frame start budget and retries.
// Pending downloads are admitted by priority, highest first, then in arrival order.
type Downloader interface {
	// Register installs the handler for an extension, replacing any previous one.
	//
	// Parameters:
	//   - ext: the extension including the dot, or pipeline.BundleExt
	//   - h: the handler
	Register(ext string, h Handler)

	// Download fetches url, waiting for admission and retrying failures. Concurrent
	// downloads of the same id share one transfer.
	//
	// Parameters:
	//   - ctx: cancels the wait and the transfer
	//   - id: the dedupe key, usually the url
	//   - url: the resolved url
	//   - ext: selects the handler
	//   - opts: the request options, may be nil
	//
	// Returns:
	//   - []byte: the payload
	//   - error: a *pipeline.LoadError wrapping pipeline.ErrDownload after the last retry
	Download(ctx context.Context, id, url, ext string, opts *pipeline.Options) ([]byte, error)

	// Init records the remote server and bundle metadata.
	//
	// Parameters:
	//   - server: the remote server root, trailing slash removed
	//   - bundleVers: bundle name to version
	//   - remoteBundles: names of bundles served from the remote server
	Init(server string, bundleVers map[string]string, remoteBundles []string)

	// RemoteServer returns the server recorded by Init.
	//
	// Returns:
	//   - string: the server root
	RemoteServer() string

	// BundleVersion returns the version recorded for a bundle.
	//
	// Parameters:
	//   - name: the bundle name
	//
	// Returns:
	//   - string: the version, empty when unversioned
	BundleVersion(name string) string

	// IsRemoteBundle reports whether a bundle is served from the remote server.
	//
	// Parameters:
	//   - name: the bundle name
	//
	// Returns:
	//   - bool: true for remote bundles
	IsRemoteBundle(name string) bool

	// Stats returns the number of running and queued downloads.
	//
	// Returns:
	//   - int: running downloads
	//   - int: queued downloads
	Stats() (active, queued int)

	// Close stops the frame ticker and fails every queued download.
	Close()
}

var _ Downloader = &downloaderImpl{}

// NewDownloader creates a Downloader with the provided options applied.
//
// Parameters:
//   - options: a variadic list of DownloaderBuilderOption functions
//
// Returns:
//   - Downloader: the downloader
func NewDownloader(options ...DownloaderBuilderOption) Downloader {
	d := &downloaderImpl{
		logger:              log.New(io.Discard, "", 0),
		handlers:            make(map[string]Handler),
		maxConcurrency:      6,
		maxRequestsPerFrame: 6,
		maxRetryCount:       3,
		retryInterval:       2 * time.Second,
		frameInterval:       16 * time.Millisecond,
		workers:             6,
		bundleVers:          make(map[string]string),
		remoteBundles:       make(map[string]bool),
		stop:                make(chan struct{}),
	}
	files := &fileHandler{client: http.DefaultClient}
	d.defaultHandler = files
	d.handlers[pipeline.BundleExt] = &bundleHandler{files: files}

	for _, opt := range options {
		opt(d)
	}

	d.pool = worker.NewDynamicWorkerPool(d.workers, 1024, 1*time.Second)
	return d
}

func (d *downloaderImpl) Register(ext string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[ext] = h
}

func (d *downloaderImpl) Download(ctx context.Context, id, url, ext string, opts *pipeline.Options) ([]byte, error) {
	v, err, _ := d.flight.Do(id, func() (any, error) {
		return d.download(ctx, id, url, ext, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (d *downloaderImpl) download(ctx context.Context, id, url, ext string, opts *pipeline.Options) ([]byte, error) {
	d.mu.Lock()
	h, ok := d.handlers[ext]
	if !ok {
		h = d.defaultHandler
	}
	retries := d.maxRetryCount
	if opts != nil && opts.MaxRetryCount > 0 {
		retries = opts.MaxRetryCount
	}
	interval := d.retryInterval
	d.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			d.logger.Printf("[Downloader] retry %d/%d for %s: %v", attempt, retries, url, lastErr)
			select {
			case <-ctx.Done():
				return nil, pipeline.NewLoadError(pipeline.ErrDownload, id, url, ctx.Err())
			case <-time.After(interval):
			}
		}

		if err := d.admit(ctx, opts); err != nil {
			return nil, pipeline.NewLoadError(pipeline.ErrDownload, id, url, err)
		}
		data, err := d.run(ctx, h, url, opts)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, pipeline.NewLoadError(pipeline.ErrDownload, id, url, lastErr)
}

// run executes one transfer on the worker pool and waits for its result. The
// admitted slot is released when the handler returns, even if ctx ends first.
func (d *downloaderImpl) run(ctx context.Context, h Handler, url string, opts *pipeline.Options) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	d.mu.Lock()
	id := d.taskID
	d.taskID++
	d.mu.Unlock()

	d.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (_ any, err error) {
			defer d.finish()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler for %s panicked: %v", url, r)
					done <- result{err: err}
				}
			}()
			data, err := h.Download(ctx, url, opts)
			done <- result{data: data, err: err}
			return nil, err
		},
	})

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// admit blocks until the download may start.
func (d *downloaderImpl) admit(ctx context.Context, opts *pipeline.Options) error {
	p := &pending{
		maxConc:  d.maxConcurrency,
		perFrame: d.maxRequestsPerFrame,
		ready:    make(chan struct{}),
	}
	if opts != nil {
		p.priority = opts.Priority
		if opts.MaxConcurrency > 0 {
			p.maxConc = opts.MaxConcurrency
		}
		if opts.MaxRequestsPerFrame > 0 {
			p.perFrame = opts.MaxRequestsPerFrame
		}
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("downloader closed")
	}
	p.seq = d.seq
	d.seq++
	heap.Push(&d.queue, p)
	d.ensureTicker()
	d.pumpLocked()
	d.mu.Unlock()

	select {
	case <-p.ready:
		return nil
	case <-d.stop:
		return fmt.Errorf("downloader closed")
	case <-ctx.Done():
		d.mu.Lock()
		defer d.mu.Unlock()
		select {
		case <-p.ready:
			// Admitted while cancelling; give the slot back.
			d.active--
			d.pumpLocked()
		default:
			p.dropped = true
		}
		return ctx.Err()
	}
}

// finish releases a concurrency slot.
func (d *downloaderImpl) finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active--
	d.pumpLocked()
}

// pumpLocked admits queued downloads while the head of the queue fits the limits.
func (d *downloaderImpl) pumpLocked() {
	for d.queue.Len() > 0 {
		head := d.queue[0]
		if head.dropped {
			heap.Pop(&d.queue)
			continue
		}
		if d.active >= head.maxConc || d.startedThisFrame >= head.perFrame {
			return
		}
		heap.Pop(&d.queue)
		d.active++
		d.startedThisFrame++
		close(head.ready)
	}
}

// ensureTicker starts the frame ticker that resets the per-frame budget.
func (d *downloaderImpl) ensureTicker() {
	if d.ticker != nil {
		return
	}
	d.ticker = time.NewTicker(d.frameInterval)
	go func(t *time.Ticker) {
		for {
			select {
			case <-d.stop:
				return
			case <-t.C:
				d.mu.Lock()
				d.startedThisFrame = 0
				d.pumpLocked()
				d.mu.Unlock()
			}
		}
	}(d.ticker)
}

func (d *downloaderImpl) Init(server string, bundleVers map[string]string, remoteBundles []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remoteServer = strings.TrimSuffix(server, "/")
	d.bundleVers = make(map[string]string, len(bundleVers))
	for k, v := range bundleVers {
		d.bundleVers[k] = v
	}
	d.remoteBundles = make(map[string]bool, len(remoteBundles))
	for _, name := range remoteBundles {
		d.remoteBundles[name] = true
	}
}

func (d *downloaderImpl) RemoteServer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.remoteServer
}

func (d *downloaderImpl) BundleVersion(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bundleVers[name]
}

func (d *downloaderImpl) IsRemoteBundle(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.remoteBundles[name]
}

func (d *downloaderImpl) Stats() (active, queued int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.queue {
		if !p.dropped {
			queued++
		}
	}
	return d.active, queued
}

func (d *downloaderImpl) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.stop)
	if d.ticker != nil {
		d.ticker.Stop()
	}
	d.queue = nil
}
