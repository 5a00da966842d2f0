package worker

import (
	"time"

	"github.com/okian/flappyghost/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithCollection sets the collection records are written to.
func WithCollection(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.collection = name
		}
	}
}

// WithRetries sets how many times a failed insert is retried.
func WithRetries(n int, backoff time.Duration) Option {
	return func(w *InMemoryWorker) {
		if n >= 0 {
			w.retries = n
		}
		if backoff > 0 {
			w.backoff = backoff
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
