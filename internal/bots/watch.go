package bots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/pkg/logger"
)

// Watch prints one line per death inserted into collection until ctx ends
// or the stream closes.
func Watch(ctx context.Context, sub docstore.Subscriber, collection string, out io.Writer) error {
	docs, err := sub.Subscribe(ctx, collection)
	if err != nil {
		return fmt.Errorf("watch %s: %w", collection, err)
	}
	log := logger.Component("watch")

	for {
		select {
		case <-ctx.Done():
			return nil
		case doc, ok := <-docs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("stream closed by server")
			}
			rec, err := model.DeathRecordFromDocument(doc)
			if err != nil {
				log.Warn(ctx, "skipping malformed record", logger.String("id", doc.ID()), logger.Error(err))
				continue
			}
			if _, err := fmt.Fprintln(out, FormatDeath(rec)); err != nil {
				return err
			}
		}
	}
}

// FormatDeath renders a death as one line of the watch feed.
func FormatDeath(r model.DeathRecord) string { //nolint:gocritic // hugeParam: records travel by value
	name := r.DisplayName
	if name == "" {
		name = r.OwnerID
	}
	return fmt.Sprintf("%s  %-16s score=%-4d x=%.0f y=%.0f",
		r.CreatedAt.UTC().Format(time.TimeOnly), name, r.Score, r.Position.X, r.Position.Y)
}
