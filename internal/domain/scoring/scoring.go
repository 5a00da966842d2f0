// Package scoring counts passed obstacles and keeps the best-ever score.
package scoring

import (
	"context"
	"strconv"

	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

// DefaultKey is the durable key the best score lives under.
const DefaultKey = "flappyGhostHighScore"

// Durable is local key/value storage that survives restarts.
type Durable interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

// Tracker holds the running score of one round and the best score across
// rounds. It is not safe for concurrent use; the round owns it.
type Tracker struct {
	durable Durable
	key     string
	log     logger.Logger

	score int
	best  int
}

// NewTracker creates a tracker. Without WithDurable the best score only lives
// in memory.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		key: DefaultKey,
		log: logger.Component("scoring"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load reads the persisted best score. Missing, unreadable or malformed
// values leave the best score at zero.
func (t *Tracker) Load(ctx context.Context) {
	t.best = 0
	if t.durable == nil {
		return
	}
	raw, ok, err := t.durable.Read(ctx, t.key)
	if err != nil {
		t.log.Warn(ctx, "read best score failed", logger.String("key", t.key), logger.Error(err))
		metrics.RecordErrorByComponent("scoring", "durable_read")
		return
	}
	if !ok {
		return
	}
	best, err := strconv.Atoi(raw)
	if err != nil || best < 0 {
		t.log.Warn(ctx, "ignoring malformed best score", logger.String("key", t.key), logger.String("value", raw))
		return
	}
	t.best = best
}

// Pass latches the obstacle and counts it. It returns false when the
// obstacle was already counted.
func (t *Tracker) Pass(o *model.Obstacle) bool {
	if o.Passed {
		return false
	}
	o.Passed = true
	t.score++
	metrics.RecordObstaclePassed()
	return true
}

// Reset zeroes the running score. The best score is kept.
func (t *Tracker) Reset() { t.score = 0 }

// Score returns the running score.
func (t *Tracker) Score() int { return t.score }

// Best returns the best score seen, including a committed running score.
func (t *Tracker) Best() int { return t.best }

// Commit ratchets the best score and persists it when it improved. A failed
// write is logged; the in-memory best is still raised.
func (t *Tracker) Commit(ctx context.Context) bool {
	if t.score <= t.best {
		return false
	}
	t.best = t.score
	if t.durable == nil {
		return true
	}
	if err := t.durable.Write(ctx, t.key, strconv.Itoa(t.best)); err != nil {
		t.log.Warn(ctx, "persist best score failed", logger.Int("best", t.best), logger.Error(err))
		metrics.RecordErrorByComponent("scoring", "durable_write")
	}
	return true
}
