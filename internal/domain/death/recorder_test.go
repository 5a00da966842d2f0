package death_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/flappyghost/internal/adapters/mq/queue"
	"github.com/okian/flappyghost/internal/domain/death"
	"github.com/okian/flappyghost/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	me := &model.Identity{ID: "u-1", DisplayName: "Casper", AvatarRef: "avatars/casper.png"}

	Convey("Given a recorder over a small queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		at := time.Date(2026, 5, 4, 3, 2, 1, 0, time.FixedZone("X", 3600))
		rec := death.NewRecorder(q, death.WithClock(func() time.Time { return at }))

		Convey("When a known player dies", func() {
			ok := rec.Record(ctx, me, 12, model.Position{X: 1234.5, Y: 210})

			So(ok, ShouldBeTrue)
			got := <-q.Dequeue()
			So(got.OwnerID, ShouldEqual, "u-1")
			So(got.DisplayName, ShouldEqual, "Casper")
			So(got.AvatarRef, ShouldEqual, "avatars/casper.png")
			So(got.Score, ShouldEqual, 12)
			So(got.Position, ShouldResemble, model.Position{X: 1234.5, Y: 210})
			So(got.CreatedAt.Location(), ShouldEqual, time.UTC)
			So(got.CreatedAt.Equal(at), ShouldBeTrue)
			_, err := uuid.Parse(got.ID)
			So(err, ShouldBeNil)
		})

		Convey("When two deaths are recorded", func() {
			q2 := queue.NewInMemoryQueue(queue.WithCapacity(2))
			r2 := death.NewRecorder(q2)
			r2.Record(ctx, me, 1, model.Position{})
			r2.Record(ctx, me, 2, model.Position{})

			first, second := <-q2.Dequeue(), <-q2.Dequeue()
			So(first.ID, ShouldNotEqual, second.ID)
		})

		Convey("When the player is anonymous", func() {
			So(rec.Record(ctx, nil, 3, model.Position{}), ShouldBeFalse)
			So(rec.Record(ctx, &model.Identity{}, 3, model.Position{}), ShouldBeFalse)
			So(q.Len(), ShouldEqual, 0)
		})

		Convey("When the queue is full", func() {
			So(rec.Record(ctx, me, 1, model.Position{}), ShouldBeTrue)
			So(rec.Record(ctx, me, 2, model.Position{}), ShouldBeFalse)
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)
			So(rec.Record(ctx, me, 1, model.Position{}), ShouldBeFalse)
		})
	})
}
