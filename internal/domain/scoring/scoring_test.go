package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/flappyghost/internal/domain/model"
	"github.com/okian/flappyghost/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDurable struct {
	values   map[string]string
	readErr  error
	writeErr error
	writes   int
}

func (f *fakeDurable) Read(_ context.Context, key string) (string, bool, error) {
	if f.readErr != nil {
		return "", false, f.readErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeDurable) Write(_ context.Context, key, value string) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.values[key] = value
	return nil
}

func TestTrackerPass(t *testing.T) {
	Convey("Given a fresh tracker", t, func() {
		tr := scoring.NewTracker()

		Convey("When the same obstacle is passed repeatedly", func() {
			o := &model.Obstacle{WorldX: 10}
			first := tr.Pass(o)
			second := tr.Pass(o)
			third := tr.Pass(o)

			So(first, ShouldBeTrue)
			So(second, ShouldBeFalse)
			So(third, ShouldBeFalse)
			So(o.Passed, ShouldBeTrue)
			So(tr.Score(), ShouldEqual, 1)
		})

		Convey("When N distinct obstacles are passed", func() {
			obstacles := make([]model.Obstacle, 7)
			for i := range obstacles {
				tr.Pass(&obstacles[i])
			}

			So(tr.Score(), ShouldEqual, 7)

			Convey("And the round is reset", func() {
				tr.Reset()
				So(tr.Score(), ShouldEqual, 0)
			})
		})
	})
}

func TestTrackerBest(t *testing.T) {
	ctx := context.Background()

	Convey("Given durable storage with a previous best", t, func() {
		store := &fakeDurable{values: map[string]string{scoring.DefaultKey: "4"}}
		tr := scoring.NewTracker(scoring.WithDurable(store))
		tr.Load(ctx)

		So(tr.Best(), ShouldEqual, 4)

		Convey("When a round scores below the best", func() {
			for i := 0; i < 3; i++ {
				tr.Pass(&model.Obstacle{})
			}

			So(tr.Commit(ctx), ShouldBeFalse)
			So(tr.Best(), ShouldEqual, 4)
			So(store.writes, ShouldEqual, 0)
		})

		Convey("When a round beats the best", func() {
			for i := 0; i < 6; i++ {
				tr.Pass(&model.Obstacle{})
			}

			So(tr.Commit(ctx), ShouldBeTrue)
			So(tr.Best(), ShouldEqual, 6)
			So(store.values[scoring.DefaultKey], ShouldEqual, "6")

			Convey("And a new tracker reloads it", func() {
				again := scoring.NewTracker(scoring.WithDurable(store))
				again.Load(ctx)
				So(again.Best(), ShouldEqual, 6)
			})
		})

		Convey("When persisting fails", func() {
			store.writeErr = errors.New("disk full")
			for i := 0; i < 9; i++ {
				tr.Pass(&model.Obstacle{})
			}

			So(tr.Commit(ctx), ShouldBeTrue)
			So(tr.Best(), ShouldEqual, 9)
		})
	})

	Convey("Given unusable durable values", t, func() {
		Convey("When the stored value is malformed", func() {
			store := &fakeDurable{values: map[string]string{"k": "many"}}
			tr := scoring.NewTracker(scoring.WithDurable(store), scoring.WithKey("k"))
			tr.Load(ctx)
			So(tr.Best(), ShouldEqual, 0)
		})

		Convey("When the read fails", func() {
			store := &fakeDurable{readErr: errors.New("locked")}
			tr := scoring.NewTracker(scoring.WithDurable(store))
			tr.Load(ctx)
			So(tr.Best(), ShouldEqual, 0)
		})
	})
}
