// Package worker drains queued death records into the document store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/adapters/mq/queue"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

const (
	defaultCollection = "deaths"
	defaultRetries    = 2
	defaultBackoff    = 200 * time.Millisecond
)

// Inserter is the write half of the document store.
type Inserter interface {
	Insert(ctx context.Context, collection string, doc docstore.Document) (string, error)
}

// Source is where workers receive records.
type Source interface {
	Dequeue() <-chan queue.Record
}

// InMemoryWorker writes one record at a time. Failures are logged and the
// record is dropped; a lost death record never blocks the game.
type InMemoryWorker struct {
	source     Source
	store      Inserter
	name       string
	collection string
	retries    int
	backoff    time.Duration

	shutdown chan struct{}
	once     sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(source Source, store Inserter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:     source,
		store:      store,
		name:       "worker",
		collection: defaultCollection,
		retries:    defaultRetries,
		backoff:    defaultBackoff,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Component("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run consumes records until the source closes, ctx ends or Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-records:
			if !ok {
				return
			}
			if err := w.write(ctx, r); err != nil {
				w.logger.Warn(ctx, "dropping death record", logger.String("id", r.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its in-flight write.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// write inserts r, retrying transient failures. A duplicate id means an
// earlier attempt already landed.
func (w *InMemoryWorker) write(ctx context.Context, r queue.Record) error { //nolint:gocritic // hugeParam: records travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var err error
	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.backoff * time.Duration(attempt)):
			}
		}
		_, err = w.store.Insert(ctx, w.collection, r.ToDocument())
		switch {
		case err == nil:
			metrics.RecordDeathRecord("stored")
			return nil
		case errors.Is(err, docstore.ErrDuplicateID):
			metrics.RecordDeathRecord("duplicate")
			return nil
		case errors.Is(err, docstore.ErrInvalidQuery), errors.Is(err, docstore.ErrClosed):
			attempt = w.retries
		}
	}
	metrics.RecordDeathRecord("failed")
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", "insert_error")
	return fmt.Errorf("insert death record %s: %w", r.ID, err)
}

// Pool runs several workers over one source.
type Pool struct {
	workers []*InMemoryWorker
	source  Source
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one uses NumCPU.
func NewPool(workerCount int, source Source, store Inserter, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		source:  source,
		logger:  logger.Component("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(source, store, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Shutdown closes the source when it can be closed, lets the workers drain
// what is buffered, and waits for them until ctx ends.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		for _, w := range p.workers {
			w.once.Do(func() { close(w.shutdown) })
		}
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("pool shutdown: %w", ctx.Err())
	}
}
