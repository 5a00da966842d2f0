// Package service runs the ghost store: the document store, its insert
// deduper and the dependencies the HTTP API needs.
package service

import (
	"context"
	"sync"

	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/domain/dedupe"
	"github.com/okian/flappyghost/internal/domain/ghost"
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

// Service implements the API dependencies for the ghost store.
type Service struct {
	mu sync.RWMutex

	store   *docstore.Memory
	deduper dedupe.Deduper

	collection       string
	dedupeSize       int
	subscriberBuffer int

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration. Nothing is
// allocated until Start.
func New(opts ...Option) *Service {
	s := &Service{
		collection:       ghost.DefaultCollection,
		dedupeSize:       100_000,
		subscriberBuffer: 64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the store and deduper. Starting a running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Component("service")
	}

	s.store = docstore.NewMemory(
		docstore.WithIndex(s.collection, model.FieldScore),
		docstore.WithSubscriberBuffer(s.subscriberBuffer),
		docstore.WithLogger(s.logger.Named("docstore")),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.started = true

	s.logger.Info(ctx, "ghost store started",
		logger.String("collection", s.collection),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the store, which ends every open stream.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	_ = s.store.Close()
	s.started = false
	s.logger.Info(context.Background(), "ghost store stopped")
}

func (s *Service) current() (*docstore.Memory, dedupe.Deduper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.deduper, nil
}

// SeenAndRecord reports whether key was already written and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	_, d, err := s.current()
	if err != nil {
		return false
	}
	seen := d.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordStoreInsert(s.collection, "deduped")
	}
	return seen
}

// Unrecord forgets key so the insert can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	if _, d, err := s.current(); err == nil {
		d.Unrecord(ctx, key)
	}
}

// Size returns the number of remembered insert keys.
func (s *Service) Size() int {
	_, d, err := s.current()
	if err != nil {
		return 0
	}
	return d.Size()
}

// Query runs q against the store.
func (s *Service) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	st, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.Query(ctx, q)
}

// Insert appends doc to collection.
func (s *Service) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	st, _, err := s.current()
	if err != nil {
		return "", err
	}
	id, err := st.Insert(ctx, collection, doc)
	if err == nil {
		s.logger.Debug(ctx, "document stored", logger.String("collection", collection), logger.String("id", id))
	}
	return id, err
}

// Subscribe streams documents inserted into collection.
func (s *Service) Subscribe(ctx context.Context, collection string) (<-chan docstore.Document, error) {
	st, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return st.Subscribe(ctx, collection)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":    s.started,
		"collection": s.collection,
		"dedupeSize": s.dedupeSize,
	}
	if s.started {
		stats["collections"] = s.store.Collections()
		stats["subscribers"] = s.store.Subscribers()
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
