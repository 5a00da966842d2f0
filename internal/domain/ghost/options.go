package ghost

import "github.com/okian/flappyghost/pkg/logger"

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithTopN caps the leaderboard query.
func WithTopN(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithOwnLimit caps the player's own most recent deaths. Zero skips the own
// query.
func WithOwnLimit(n int) Option {
	return func(r *Registry) {
		if n >= 0 {
			r.ownLimit = n
		}
	}
}

// WithCollection names the collection death records live in.
func WithCollection(name string) Option {
	return func(r *Registry) {
		if name != "" {
			r.collection = name
		}
	}
}

// WithMargin widens the viewport used by Visible.
func WithMargin(px float64) Option {
	return func(r *Registry) {
		if px >= 0 {
			r.margin = px
		}
	}
}

// WithLogger sets the registry's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}
