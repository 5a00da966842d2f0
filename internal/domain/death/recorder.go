// Package death records round-ending deaths for other players to see as ghosts.
package death

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

// Enqueuer accepts records for asynchronous persistence without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, r model.DeathRecord) error
}

// Recorder hands deaths to the write queue. It never blocks and never
// reports failure to the caller beyond its boolean result.
type Recorder struct {
	out   Enqueuer
	now   func() time.Time
	newID func() string
	log   logger.Logger
}

// NewRecorder creates a recorder writing to out.
func NewRecorder(out Enqueuer, opts ...Option) *Recorder {
	r := &Recorder{
		out:   out,
		now:   time.Now,
		newID: uuid.NewString,
		log:   logger.Component("death"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one death. Anonymous players are skipped.
func (r *Recorder) Record(ctx context.Context, id *model.Identity, score int, pos model.Position) bool {
	if id == nil || id.ID == "" {
		metrics.RecordDeathRecord("anonymous")
		return false
	}
	rec := model.DeathRecord{
		ID:          r.newID(),
		OwnerID:     id.ID,
		DisplayName: id.DisplayName,
		AvatarRef:   id.AvatarRef,
		Score:       score,
		Position:    pos,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.out.Enqueue(ctx, rec); err != nil {
		reason := "enqueue_failed"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			reason = "cancelled"
		}
		r.log.Warn(ctx, "death record not queued", logger.String("id", rec.ID), logger.Int("score", score), logger.Error(err))
		metrics.RecordDeathRecord(reason)
		return false
	}
	metrics.RecordDeathRecord("queued")
	r.log.Debug(ctx, "death queued", logger.String("id", rec.ID), logger.Int("score", score),
		logger.Float64("x", pos.X), logger.Float64("y", pos.Y))
	return true
}
