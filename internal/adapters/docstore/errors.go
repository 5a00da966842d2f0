package docstore

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrInvalidQuery = errors.New("invalid query")
	ErrInvalidLimit = errors.New("invalid query limit")
	ErrDuplicateID  = errors.New("duplicate document id")
	ErrClosed       = errors.New("store closed")
	ErrRemote       = errors.New("remote store error")
)
