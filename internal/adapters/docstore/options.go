package docstore

import "github.com/okian/flappyghost/pkg/logger"

// Option applies a configuration option to the Memory store.
type Option func(*Memory)

// WithIndex keeps a treap over a numeric field of collection, so ordered
// queries on it avoid a full scan.
func WithIndex(collection, field string) Option {
	return func(m *Memory) {
		if collection == "" || field == "" {
			return
		}
		for _, f := range m.indexed[collection] {
			if f == field {
				return
			}
		}
		m.indexed[collection] = append(m.indexed[collection], field)
	}
}

// WithSubscriberBuffer sets the per-subscriber channel capacity.
func WithSubscriberBuffer(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.subBuffer = n
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Memory) {
		if l != nil {
			m.log = l
		}
	}
}
