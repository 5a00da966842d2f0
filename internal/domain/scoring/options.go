package scoring

import "github.com/okian/flappyghost/pkg/logger"

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithDurable persists the best score in d.
func WithDurable(d Durable) Option {
	return func(t *Tracker) {
		t.durable = d
	}
}

// WithKey overrides the durable key.
func WithKey(key string) Option {
	return func(t *Tracker) {
		if key != "" {
			t.key = key
		}
	}
}

// WithLogger sets the tracker's logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}
