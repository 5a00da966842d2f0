package collision_test

import (
	"testing"

	"github.com/okian/flappyghost/internal/domain/collision"
	"github.com/okian/flappyghost/internal/domain/kinematics"
	"github.com/okian/flappyghost/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDetectBoundary(t *testing.T) {
	Convey("Given the default playfield", t, func() {
		geo := model.DefaultGeometry()
		body := kinematics.Spawn(geo)

		Convey("When the body rests exactly on the floor", func() {
			body.Y = geo.WorldHeight - body.Height
			So(collision.Detect(body, nil, 0, geo).Kind, ShouldEqual, collision.None)
		})

		Convey("When the body sinks past the floor", func() {
			body.Y = geo.WorldHeight - body.Height + 0.01
			So(collision.Detect(body, nil, 0, geo).Kind, ShouldEqual, collision.Boundary)
		})

		Convey("When the body is at the ceiling and still ascending", func() {
			body.Y = 0
			body.Velocity = -1

			So(collision.Detect(body, nil, 0, geo).Kind, ShouldEqual, collision.None)

			Convey("And it integrates above the ceiling", func() {
				body.Y += body.Velocity
				res := collision.Detect(body, nil, 0, geo)

				So(res.Kind, ShouldEqual, collision.Boundary)
				So(res.Kind.String(), ShouldEqual, "boundary")
				So(res.ObstacleIndex, ShouldEqual, -1)
			})
		})
	})
}

func TestDetectObstacle(t *testing.T) {
	Convey("Given an obstacle overlapping the player column", t, func() {
		geo := model.DefaultGeometry()
		body := kinematics.Spawn(geo)
		offset := 100.0
		gate := model.Obstacle{WorldX: offset + body.X - 10, GapY: 200}
		obstacles := []model.Obstacle{{WorldX: offset + 300, GapY: 75}, gate}

		Convey("When the body passes through the gap", func() {
			body.Y = gate.GapY + 10
			So(collision.Detect(body, obstacles, offset, geo).Collided(), ShouldBeFalse)
		})

		Convey("When the body fills the gap edge to edge", func() {
			body.Y = gate.GapY + geo.GapSize - body.Height
			So(collision.Detect(body, obstacles, offset, geo).Collided(), ShouldBeFalse)
		})

		Convey("When the body misses above the gap", func() {
			body.Y = gate.GapY - 1
			res := collision.Detect(body, obstacles, offset, geo)

			So(res.Kind, ShouldEqual, collision.Obstacle)
			So(res.ObstacleIndex, ShouldEqual, 1)
		})

		Convey("When the body misses below the gap", func() {
			body.Y = gate.GapY + geo.GapSize - body.Height + 1
			res := collision.Detect(body, obstacles, offset, geo)

			So(res.Kind, ShouldEqual, collision.Obstacle)
			So(res.Kind.String(), ShouldEqual, "obstacle")
		})

		Convey("When the body is out of bounds and inside a pipe", func() {
			body.Y = -5
			So(collision.Detect(body, obstacles, offset, geo).Kind, ShouldEqual, collision.Boundary)
		})
	})

	Convey("Given obstacles that only touch the player column", t, func() {
		geo := model.DefaultGeometry()
		body := kinematics.Spawn(geo)
		body.Y = 10

		Convey("When the leading edge sits exactly at the player's right edge", func() {
			o := model.Obstacle{WorldX: body.Right(), GapY: 300}
			So(collision.HitsObstacle(body, o, 0, geo), ShouldBeFalse)
		})

		Convey("When the trailing edge sits exactly at the player's left edge", func() {
			o := model.Obstacle{WorldX: body.X - geo.ObstacleWidth, GapY: 300}
			So(collision.HitsObstacle(body, o, 0, geo), ShouldBeFalse)
		})

		Convey("When shifted one pixel into the column", func() {
			o := model.Obstacle{WorldX: body.Right() - 1, GapY: 300}
			So(collision.HitsObstacle(body, o, 0, geo), ShouldBeTrue)
		})
	})

	Convey("Kind None renders as none", t, func() {
		So(collision.None.String(), ShouldEqual, "none")
	})
}
