package docstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

const defaultSubscriberBuffer = 64

type collection struct {
	docs    map[string]Document
	order   []string
	indexes map[string]*index
}

// Memory is an in-memory Store and Subscriber. Ordered queries on fields
// registered with WithIndex walk a treap; everything else scans.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*collection
	indexed     map[string][]string
	subs        map[string]map[*subscription]struct{}
	closed      bool

	subBuffer int
	log       logger.Logger
}

type subscription struct {
	ch   chan Document
	done chan struct{}
	once sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() {
		close(s.ch)
		close(s.done)
	})
}

var (
	_ Store      = (*Memory)(nil)
	_ Subscriber = (*Memory)(nil)
)

// NewMemory constructs an empty store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		collections: make(map[string]*collection),
		indexed:     make(map[string][]string),
		subs:        make(map[string]map[*subscription]struct{}),
		subBuffer:   defaultSubscriberBuffer,
		log:         logger.Component("docstore"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) collectionLocked(name string) *collection {
	c, ok := m.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]Document), indexes: make(map[string]*index)}
		for _, field := range m.indexed[name] {
			c.indexes[field] = newIndex(field)
		}
		m.collections[name] = c
	}
	return c
}

// Insert appends a copy of doc. Documents without an id get a random UUID.
func (m *Memory) Insert(ctx context.Context, name string, doc Document) (string, error) {
	if name == "" {
		metrics.RecordStoreInsert(name, "invalid")
		return "", fmt.Errorf("insert: %w: empty collection", ErrInvalidQuery)
	}
	stored := doc.Clone()
	if stored == nil {
		stored = Document{}
	}
	id := FormatID(stored[IDField])
	if id == "" {
		id = uuid.NewString()
	}
	stored[IDField] = id

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		metrics.RecordStoreInsert(name, "closed")
		return "", ErrClosed
	}
	c := m.collectionLocked(name)
	if _, dup := c.docs[id]; dup {
		m.mu.Unlock()
		metrics.RecordStoreInsert(name, "duplicate")
		return "", fmt.Errorf("insert %s/%s: %w", name, id, ErrDuplicateID)
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	for field, ix := range c.indexes {
		if v, ok := Lookup(stored, field); ok {
			if f, ok := number(v); ok && !math.IsNaN(f) {
				ix.put(id, f)
			}
		}
	}
	count := len(c.docs)
	m.publishLocked(ctx, name, stored)
	m.mu.Unlock()

	metrics.RecordStoreInsert(name, "ok")
	metrics.UpdateStoreDocuments(name, count)
	return id, nil
}

// publishLocked fans doc out to subscribers without blocking the writer.
func (m *Memory) publishLocked(ctx context.Context, name string, doc Document) {
	for sub := range m.subs[name] {
		select {
		case sub.ch <- doc.Clone():
		default:
			m.log.Warn(ctx, "subscriber lagging, dropping document",
				logger.String("collection", name), logger.String("id", doc.ID()))
			metrics.RecordErrorByComponent("docstore", "subscriber_drop")
		}
	}
}

// Query runs q against a consistent view of the collection.
func (m *Memory) Query(_ context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		metrics.RecordErrorByComponent("docstore", "invalid_query")
		return nil, err
	}
	start := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	c, ok := m.collections[q.Collection]
	if !ok {
		metrics.RecordStoreQuery(q.Collection, "empty", msSince(start))
		return []Document{}, nil
	}

	var out []Document
	strategy := "scan"
	if q.OrderBy != nil {
		if ix, ok := c.indexes[q.OrderBy.Field]; ok {
			strategy = "index"
			out = c.walkIndex(ix, q)
		}
	}
	if strategy == "scan" {
		out = c.scan(q)
	}
	metrics.RecordStoreQuery(q.Collection, strategy, msSince(start))
	return out, nil
}

func (c *collection) walkIndex(ix *index, q Query) []Document {
	out := make([]Document, 0, min(limitOr(q.Limit, ix.len()), ix.len()))
	ix.walk(q.Descending(), func(id string) bool {
		doc := c.docs[id]
		if Matches(doc, q.Filters) {
			out = append(out, doc.Clone())
		}
		return q.Limit == 0 || len(out) < q.Limit
	})
	return out
}

func (c *collection) scan(q Query) []Document {
	matched := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if !Matches(doc, q.Filters) {
			continue
		}
		if q.OrderBy != nil {
			if _, ok := Lookup(doc, q.OrderBy.Field); !ok {
				continue
			}
		}
		matched = append(matched, doc)
	}
	if q.OrderBy != nil {
		field, desc := q.OrderBy.Field, q.Descending()
		sort.SliceStable(matched, func(i, j int) bool {
			a, _ := Lookup(matched[i], field)
			b, _ := Lookup(matched[j], field)
			r, ok := compare(a, b)
			if !ok || r == 0 {
				if desc {
					return matched[i].ID() < matched[j].ID()
				}
				return matched[i].ID() > matched[j].ID()
			}
			if desc {
				return r > 0
			}
			return r < 0
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	out := make([]Document, len(matched))
	for i, doc := range matched {
		out[i] = doc.Clone()
	}
	return out
}

// Subscribe streams later inserts into name until ctx ends or the store closes.
func (m *Memory) Subscribe(ctx context.Context, name string) (<-chan Document, error) {
	if name == "" {
		return nil, fmt.Errorf("subscribe: %w: empty collection", ErrInvalidQuery)
	}
	sub := &subscription{ch: make(chan Document, m.subBuffer), done: make(chan struct{})}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.subs[name] == nil {
		m.subs[name] = make(map[*subscription]struct{})
	}
	m.subs[name][sub] = struct{}{}
	m.mu.Unlock()
	metrics.AddStoreSubscribers(1)

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.done:
			return
		}
		m.mu.Lock()
		if _, ok := m.subs[name][sub]; ok {
			delete(m.subs[name], sub)
			sub.close()
			metrics.AddStoreSubscribers(-1)
		}
		m.mu.Unlock()
	}()
	return sub.ch, nil
}

// Count returns the number of documents in a collection.
func (m *Memory) Count(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.collections[name]; ok {
		return len(c.docs)
	}
	return 0
}

// Collections returns document counts keyed by collection.
func (m *Memory) Collections() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.collections))
	for name, c := range m.collections {
		out[name] = len(c.docs)
	}
	return out
}

// Subscribers returns the number of open subscriptions.
func (m *Memory) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, subs := range m.subs {
		n += len(subs)
	}
	return n
}

// Close ends every subscription. Later calls fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for name, subs := range m.subs {
		for sub := range subs {
			sub.close()
			metrics.AddStoreSubscribers(-1)
		}
		delete(m.subs, name)
	}
	return nil
}

func limitOr(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	return fallback
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
