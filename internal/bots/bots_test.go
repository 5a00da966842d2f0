package bots_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/adapters/http/api"
	service "github.com/okian/flappyghost/internal/app"
	"github.com/okian/flappyghost/internal/bots"
	"github.com/okian/flappyghost/internal/config"
	"github.com/okian/flappyghost/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fastConfig(url string) *bots.Config {
	cfg := bots.FromConfig(config.New())
	cfg.StoreURL = url
	cfg.Players = 2
	cfg.Rounds = 2
	cfg.MaxTicks = 150
	cfg.Seed = 7
	cfg.LocalPath = ""
	cfg.Workers = 2
	cfg.FrameInterval = time.Millisecond
	cfg.CountdownInterval = time.Millisecond
	cfg.Debug = true
	return cfg
}

func TestRun(t *testing.T) {
	Convey("Given a running ghost store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		ts := httptest.NewServer(api.NewServer(svc, svc).Handler())
		defer ts.Close()

		Convey("When two bots play two rounds each", func() {
			stats, err := bots.Run(ctx, fastConfig(ts.URL))
			So(err, ShouldBeNil)

			Convey("Then every round is played, recorded and stored", func() {
				So(stats.RoundsPlayed, ShouldEqual, 4)
				So(stats.Recorded, ShouldEqual, 4)
				So(stats.Stored, ShouldEqual, 4)

				docs, err := svc.Query(ctx, docstore.Query{Collection: "deaths"})
				So(err, ShouldBeNil)
				So(len(docs), ShouldEqual, 4)
			})
		})

		Convey("When the config is unusable", func() {
			cfg := fastConfig(ts.URL)
			cfg.Players = 0
			_, err := bots.Run(ctx, cfg)
			So(errors.Is(err, bots.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given no store at the URL", t, func() {
		ts := httptest.NewServer(nil)
		url := ts.URL
		ts.Close()

		_, err := bots.Run(context.Background(), fastConfig(url))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "health check")
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch(t *testing.T) {
	Convey("Given a watcher on a store", t, func() {
		store := docstore.NewMemory()
		out := &syncBuffer{}
		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- bots.Watch(ctx, store, "deaths", out) }()

		for store.Subscribers() == 0 {
			time.Sleep(time.Millisecond)
		}

		Convey("When deaths are inserted", func() {
			rec := model.DeathRecord{
				ID: "d1", OwnerID: "p1", DisplayName: "Casper", Score: 7,
				Position:  model.Position{X: 1234, Y: 200},
				CreatedAt: time.Date(2026, 3, 1, 12, 30, 5, 0, time.UTC),
			}
			_, err := store.Insert(ctx, "deaths", rec.ToDocument())
			So(err, ShouldBeNil)
			_, err = store.Insert(ctx, "deaths", docstore.Document{"id": "junk"})
			So(err, ShouldBeNil)

			Convey("Then each valid one is printed", func() {
				deadline := time.Now().Add(2 * time.Second)
				for !strings.Contains(out.String(), "Casper") && time.Now().Before(deadline) {
					time.Sleep(time.Millisecond)
				}
				So(out.String(), ShouldEqual, "12:30:05  Casper           score=7    x=1234 y=200\n")
				cancel()
				So(<-errc, ShouldBeNil)
			})
		})

		Convey("When the store closes", func() {
			_ = store.Close()
			So(<-errc, ShouldNotBeNil)
			cancel()
		})
	})
}
