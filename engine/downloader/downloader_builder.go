package downloader

import (
	"log"
	"net/http"
	"time"

	"github.com/Carmen-Shannon/oxy-runtime/engine/pipeline"
)

// DownloaderBuilderOption is a functional option for configuring a Downloader via NewDownloader.
type DownloaderBuilderOption func(*downloaderImpl)

// WithLogger is an option builder that sets the logger for retry and failure messages.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - DownloaderBuilderOption: a function that applies the logger option to a downloaderImpl
func WithLogger(logger *log.Logger) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMaxConcurrency is an option builder that sets the default number of downloads that
// may run at once. Requests may override it through their options.
//
// Parameters:
//   - n: the limit, values below 1 are ignored
//
// Returns:
//   - DownloaderBuilderOption: a function that applies the concurrency option to a downloaderImpl
func WithMaxConcurrency(n int) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		if n > 0 {
			d.maxConcurrency = n
		}
	}
}

// WithMaxRequestsPerFrame is an option builder that sets the default number of downloads
// that may start within one frame.
//
// Parameters:
//   - n: the limit, values below 1 are ignored
//
// Returns:
//   - DownloaderBuilderOption: a function that applies the per-frame option to a downloaderImpl
func WithMaxRequestsPerFrame(n int) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		if n > 0 {
			d.maxRequestsPerFrame = n
		}
	}
}

// WithMaxRetryCount is an option builder that sets how often a failed download is retried.
//
// Parameters:
//   - n: the retry count, zero disables retries
//
// Returns:
//   - DownloaderBuilderOption: a function that applies the retry option to a downloaderImpl
func WithMaxRetryCount(n int) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		if n >= 0 {
			d.maxRetryCount = n
		}
	}
}

// WithRetryInterval is an option builder that sets the pause between retries.
func WithRetryInterval(interval time.Duration) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		d.retryInterval = interval
	}
}

// WithFrameInterval is an option builder that sets how often the per-frame budget resets.
func WithFrameInterval(interval time.Duration) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		if interval > 0 {
			d.frameInterval = interval
		}
	}
}

// WithWorkers is an option builder that sets the size of the transfer worker pool.
func WithWorkers(n int) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithHTTPClient is an option builder that sets the client used for http urls.
func WithHTTPClient(client *http.Client) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		if client == nil {
			return
		}
		files := &fileHandler{client: client}
		d.defaultHandler = files
		d.handlers[pipeline.BundleExt] = &bundleHandler{files: files}
	}
}

// WithHandler is an option builder that installs a handler for an extension.
//
// Parameters:
//   - ext: the extension including the dot
//   - h: the handler
//
// Returns:
//   - DownloaderBuilderOption: a function that applies the handler option to a downloaderImpl
func WithHandler(ext string, h Handler) DownloaderBuilderOption {
	return func(d *downloaderImpl) {
		d.handlers[ext] = h
	}
}
