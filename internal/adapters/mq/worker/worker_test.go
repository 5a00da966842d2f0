package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/adapters/mq/queue"
	"github.com/okian/flappyghost/internal/adapters/mq/worker"
	"github.com/okian/flappyghost/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type flakyStore struct {
	mu       sync.Mutex
	failures map[string]int
	attempts map[string]int
	inner    *docstore.Memory
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		failures: make(map[string]int),
		attempts: make(map[string]int),
		inner:    docstore.NewMemory(),
	}
}

func (f *flakyStore) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	f.mu.Lock()
	id := doc.ID()
	f.attempts[id]++
	if f.failures[id] > 0 {
		f.failures[id]--
		f.mu.Unlock()
		return "", errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.inner.Insert(ctx, collection, doc)
}

func (f *flakyStore) tries(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[id]
}

func record(id string) model.DeathRecord {
	return model.DeathRecord{
		ID:        id,
		OwnerID:   "p1",
		Score:     4,
		Position:  model.Position{X: 640, Y: 300},
		CreatedAt: time.Now().UTC(),
	}
}

func eventually(check func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a running worker over a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		store := newFlakyStore()
		w := worker.NewInMemoryWorker(q, store,
			worker.WithName("test-worker"),
			worker.WithCollection("deaths"),
			worker.WithRetries(2, time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a record is enqueued", func() {
			So(q.Enqueue(ctx, record("d1")), ShouldBeNil)

			Convey("Then it is written to the collection", func() {
				So(eventually(func() bool { return store.inner.Count("deaths") == 1 }), ShouldBeTrue)
				docs, err := store.inner.Query(ctx, docstore.Query{Collection: "deaths"})
				So(err, ShouldBeNil)
				So(docs[0].ID(), ShouldEqual, "d1")
				So(docs[0][model.FieldOwnerID], ShouldEqual, "p1")
			})
		})

		Convey("When the store fails transiently", func() {
			store.failures["d2"] = 2
			So(q.Enqueue(ctx, record("d2")), ShouldBeNil)

			So(eventually(func() bool { return store.inner.Count("deaths") == 1 }), ShouldBeTrue)
			So(store.tries("d2"), ShouldEqual, 3)
		})

		Convey("When the store keeps failing", func() {
			store.failures["d3"] = 100
			So(q.Enqueue(ctx, record("d3")), ShouldBeNil)
			So(q.Enqueue(ctx, record("d4")), ShouldBeNil)

			Convey("Then the record is dropped and the worker moves on", func() {
				So(eventually(func() bool { return store.inner.Count("deaths") == 1 }), ShouldBeTrue)
				So(store.tries("d3"), ShouldEqual, 3)
			})
		})

		Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			So(w.Shutdown(shutdownCtx), ShouldBeNil)
			So(w.Shutdown(shutdownCtx), ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		store := docstore.NewMemory()
		pool := worker.NewPool(4, q, store, worker.WithCollection("deaths"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		So(pool.Size(), ShouldEqual, 4)
		pool.Start(ctx)

		Convey("When many records arrive and the pool shuts down", func() {
			for i := 0; i < 200; i++ {
				So(q.Enqueue(ctx, record(fmt.Sprintf("d%03d", i))), ShouldBeNil)
			}
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()

			So(pool.Shutdown(shutdownCtx), ShouldBeNil)

			Convey("Then every buffered record was written", func() {
				So(store.Count("deaths"), ShouldEqual, 200)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})

		Convey("When a record is enqueued twice", func() {
			So(q.Enqueue(ctx, record("same")), ShouldBeNil)
			So(q.Enqueue(ctx, record("same")), ShouldBeNil)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()

			So(pool.Shutdown(shutdownCtx), ShouldBeNil)
			So(store.Count("deaths"), ShouldEqual, 1)
		})
	})

	Convey("Given a pool created with no count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), docstore.NewMemory())
		So(pool.Size(), ShouldBeGreaterThan, 0)
	})
}
