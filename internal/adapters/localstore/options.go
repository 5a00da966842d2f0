package localstore

import "github.com/okian/flappyghost/pkg/logger"

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) FileOption {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}
