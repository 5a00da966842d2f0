// Package ghost loads the death records rendered as ghosts during a round.
package ghost

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

// Defaults for the two ghost queries.
const (
	DefaultTopN       = 20
	DefaultOwnLimit   = 5
	DefaultCollection = "deaths"
)

// Querier is the read half of the document store.
type Querier interface {
	Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error)
}

// Ghost is a record placed in viewport coordinates for one frame.
type Ghost struct {
	Record  model.DeathRecord
	ScreenX float64
	ScreenY float64
}

// Registry builds ghost sets from the store. It holds no per-round state and
// is safe for concurrent use.
type Registry struct {
	store      Querier
	collection string
	topN       int
	ownLimit   int
	margin     float64
	log        logger.Logger
}

// NewRegistry creates a registry reading from store.
func NewRegistry(store Querier, opts ...Option) *Registry {
	r := &Registry{
		store:      store,
		collection: DefaultCollection,
		topN:       DefaultTopN,
		ownLimit:   DefaultOwnLimit,
		margin:     model.DefaultGeometry().GhostMargin,
		log:        logger.Component("ghost"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches the top-N deaths by score and, for a known player, their most
// recent own deaths, then merges them by id. Only a failed top-N query is an
// error; a failed own query leaves the top-N ghosts.
func (r *Registry) Load(ctx context.Context, id *model.Identity) (*model.GhostSet, error) {
	top, err := r.fetch(ctx, docstore.Query{
		Collection: r.collection,
		OrderBy:    &docstore.OrderBy{Field: model.FieldScore, Direction: docstore.Desc},
		Limit:      r.topN,
	})
	if err != nil {
		return model.EmptyGhostSet, fmt.Errorf("load top deaths: %w", err)
	}
	if id == nil || id.ID == "" || r.ownLimit == 0 {
		return Merge(top, nil), nil
	}
	own, err := r.fetch(ctx, docstore.Query{
		Collection: r.collection,
		Filters:    []docstore.Filter{{Field: model.FieldOwnerID, Op: docstore.OpEq, Value: id.ID}},
		OrderBy:    &docstore.OrderBy{Field: model.FieldCreatedAt, Direction: docstore.Desc},
		Limit:      r.ownLimit,
	})
	if err != nil {
		r.log.Warn(ctx, "own deaths unavailable, keeping leaderboard ghosts", logger.String("owner", id.ID), logger.Error(err))
		metrics.RecordErrorByComponent("ghost", "own_query")
		return Merge(top, nil), nil
	}
	return Merge(top, own), nil
}

func (r *Registry) fetch(ctx context.Context, q docstore.Query) ([]model.DeathRecord, error) {
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]model.DeathRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := model.DeathRecordFromDocument(doc)
		if err != nil {
			r.log.Warn(ctx, "skipping malformed death record", logger.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadAsync runs Load on its own goroutine and hands the result to done
// exactly once. Failures are logged and degrade to the empty set.
func (r *Registry) LoadAsync(ctx context.Context, id *model.Identity, done func(*model.GhostSet)) {
	go func() {
		start := time.Now()
		set, err := r.Load(ctx, id)
		latency := float64(time.Since(start).Milliseconds())
		if err != nil {
			r.log.Warn(ctx, "ghost load failed, playing without ghosts", logger.Error(err))
			metrics.RecordGhostLoad("error", latency, 0)
			done(model.EmptyGhostSet)
			return
		}
		r.log.Debug(ctx, "ghosts loaded", logger.Int("count", set.Len()), logger.Float64("latency_ms", latency))
		metrics.RecordGhostLoad("ok", latency, set.Len())
		done(set)
	}()
}

// Merge unions top and own by id. Top records keep their order and win ties.
func Merge(top, own []model.DeathRecord) *model.GhostSet {
	return model.NewGhostSet(top, own)
}

// Visible places every ghost of set inside the widened viewport. Ghosts
// outside it are skipped for this frame but stay in the set.
func (r *Registry) Visible(set *model.GhostSet, worldOffset, viewportWidth float64) []Ghost {
	return Visible(set, worldOffset, viewportWidth, r.margin)
}

// Visible is Registry.Visible with an explicit margin.
func Visible(set *model.GhostSet, worldOffset, viewportWidth, margin float64) []Ghost {
	var out []Ghost
	set.Each(func(rec model.DeathRecord) {
		x := rec.Position.X - worldOffset
		if x < -margin || x > viewportWidth+margin {
			return
		}
		out = append(out, Ghost{Record: rec, ScreenX: x, ScreenY: rec.Position.Y})
	})
	return out
}
