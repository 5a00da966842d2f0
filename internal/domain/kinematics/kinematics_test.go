package kinematics_test

import (
	"testing"

	"github.com/okian/flappyghost/internal/domain/kinematics"
	"github.com/okian/flappyghost/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKinematics(t *testing.T) {
	Convey("Given a freshly spawned body", t, func() {
		b := kinematics.Spawn(model.DefaultGeometry())

		Convey("Then it sits at the spawn point at rest", func() {
			So(b.X, ShouldEqual, 50)
			So(b.Y, ShouldEqual, 150)
			So(b.Width, ShouldEqual, 34)
			So(b.Height, ShouldEqual, 24)
			So(b.Velocity, ShouldEqual, 0)
		})

		Convey("When ticking without jumps", func() {
			prev := b.Velocity
			for i := 0; i < 50; i++ {
				kinematics.Tick(&b)

				So(b.Velocity, ShouldAlmostEqual, prev+kinematics.Gravity, 1e-9)
				So(b.Velocity, ShouldBeGreaterThan, prev)
				prev = b.Velocity
			}
		})

		Convey("When ticking once", func() {
			kinematics.Tick(&b)

			Convey("Then position integrates the new velocity", func() {
				So(b.Velocity, ShouldEqual, 0.25)
				So(b.Y, ShouldEqual, 150.25)
			})
		})

		Convey("When advancing several ticks at once", func() {
			other := b
			kinematics.Advance(&b, 4)
			for i := 0; i < 4; i++ {
				kinematics.Tick(&other)
			}

			So(b, ShouldResemble, other)
		})

		Convey("When jumping from any velocity", func() {
			for _, v := range []float64{-12, -5, 0, 3.5, 40} {
				b.Velocity = v
				kinematics.Jump(&b)

				So(b.Velocity, ShouldEqual, kinematics.LiftImpulse)
			}
		})

		Convey("When jumping while falling fast", func() {
			b.Velocity = 8
			kinematics.Jump(&b)
			startY := b.Y
			kinematics.Advance(&b, 3)

			Convey("Then the body is rising within a few ticks", func() {
				So(b.Y, ShouldBeLessThan, startY)
			})
		})
	})
}
