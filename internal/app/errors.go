package service

import (
	"fmt"

	"github.com/okian/flappyghost/internal/adapters/docstore"
)

// ErrNotStarted is returned by store operations before Start or after Stop.
// It matches docstore.ErrClosed so the API reports it as unavailable.
var ErrNotStarted = fmt.Errorf("service not started: %w", docstore.ErrClosed)
