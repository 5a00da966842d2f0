package api

import "github.com/okian/flappyghost/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}
