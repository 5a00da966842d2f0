package bots

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/adapters/docstore/httpstore"
	"github.com/okian/flappyghost/internal/adapters/localstore"
	"github.com/okian/flappyghost/internal/adapters/mq/queue"
	"github.com/okian/flappyghost/internal/adapters/mq/worker"
	"github.com/okian/flappyghost/internal/domain/death"
	"github.com/okian/flappyghost/internal/domain/ghost"
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/pkg/logger"
)

const drainTimeout = 10 * time.Second

// countingQueue counts accepted death records.
type countingQueue struct {
	*queue.InMemoryQueue
	accepted atomic.Int64
}

func (q *countingQueue) Enqueue(ctx context.Context, r queue.Record) error { //nolint:gocritic // hugeParam: records travel by value
	if err := q.InMemoryQueue.Enqueue(ctx, r); err != nil {
		return err
	}
	q.accepted.Add(1)
	return nil
}

// Run plays cfg.Rounds rounds with each of cfg.Players bots against the
// ghost store and reports what was played and stored.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Component("bots")
	stats := &Stats{Players: cfg.Players, StartTime: time.Now()}

	log.Info(ctx, "starting bot run",
		logger.String("storeURL", cfg.StoreURL),
		logger.Int("players", cfg.Players),
		logger.Int("rounds", cfg.Rounds),
		logger.Duration("frame", cfg.FrameInterval),
	)

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	client, err := httpstore.New(cfg.StoreURL, httpstore.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	q := &countingQueue{InMemoryQueue: queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize))}
	pool := worker.NewPool(cfg.Workers, q, client, worker.WithCollection(cfg.Collection))
	pool.Start(ctx)

	registry := ghost.NewRegistry(client,
		ghost.WithCollection(cfg.Collection),
		ghost.WithTopN(cfg.TopN),
		ghost.WithOwnLimit(cfg.OwnLimit),
		ghost.WithMargin(cfg.Geometry.GhostMargin),
	)
	recorder := death.NewRecorder(q)

	var durable localstore.Durable = localstore.NewMemory()
	if cfg.LocalPath != "" {
		durable = localstore.NewFileStore(cfg.LocalPath)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	players := make([]*Player, cfg.Players)
	for i := range players {
		id := &model.Identity{ID: uuid.NewString(), DisplayName: fmt.Sprintf("bot-%02d", i+1)}
		players[i] = NewPlayer(cfg, id, PlayerDeps{
			Ghosts:   registry,
			Recorder: recorder,
			Durable:  durable,
			Source:   rand.New(rand.NewSource(seed + int64(i))), //nolint:gosec // gameplay randomness
		})
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, p := range players {
		wg.Add(1)
		go func(p *Player) {
			defer wg.Done()
			if err := p.Play(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p.Identity().DisplayName, err))
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := pool.Shutdown(drainCtx); err != nil {
		log.Warn(ctx, "death record writers did not drain", logger.Error(err))
	}

	for _, p := range players {
		for _, r := range p.Results() {
			stats.RoundsPlayed++
			stats.TotalScore += r.Score
			stats.GhostsSeen += r.Ghosts
			stats.BestScore = max(stats.BestScore, r.Best)
		}
	}
	stats.Recorded = int(q.accepted.Load())

	if err := errors.Join(errs...); err != nil {
		return stats, err
	}

	stored, err := verifyStored(drainCtx, client, cfg.Collection, players)
	if err != nil {
		log.Warn(ctx, "verification query failed", logger.Error(err))
	}
	stats.Stored = stored

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the store is reachable.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.StoreURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// verifyStored counts the players' death records that reached the store.
func verifyStored(ctx context.Context, store docstore.Store, collection string, players []*Player) (int, error) {
	total := 0
	for _, p := range players {
		docs, err := store.Query(ctx, docstore.Query{
			Collection: collection,
			Filters:    []docstore.Filter{{Field: model.FieldOwnerID, Op: docstore.OpEq, Value: p.Identity().ID}},
		})
		if err != nil {
			return total, err
		}
		total += len(docs)
	}
	return total, nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var avg float64
	if stats.RoundsPlayed > 0 {
		avg = float64(stats.TotalScore) / float64(stats.RoundsPlayed)
	}
	logger.Component("bots").Info(ctx, "final statistics",
		logger.Int("players", stats.Players),
		logger.Int("roundsPlayed", stats.RoundsPlayed),
		logger.Int("bestScore", stats.BestScore),
		logger.Float64("averageScore", avg),
		logger.Int("ghostsSeen", stats.GhostsSeen),
		logger.Int("recorded", stats.Recorded),
		logger.Int("stored", stats.Stored),
		logger.Duration("duration", stats.Duration),
	)
}
