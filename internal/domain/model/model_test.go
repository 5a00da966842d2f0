package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/flappyghost/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGeometry(t *testing.T) {
	Convey("Given the default geometry", t, func() {
		g := model.DefaultGeometry()

		Convey("Then it validates and exposes the gap range", func() {
			So(g.Validate(), ShouldBeNil)
			lo, hi := g.GapRange()
			So(lo, ShouldEqual, 75)
			So(hi, ShouldEqual, 480-150-75)
		})

		Convey("When the gap cannot fit between the margins", func() {
			g.GapSize = 400
			So(g.Validate(), ShouldNotBeNil)
		})

		Convey("When the gap is smaller than the player", func() {
			g.GapSize = 10
			So(g.Validate(), ShouldNotBeNil)
		})
	})
}

func TestDeathRecordDocument(t *testing.T) {
	Convey("Given a death record", t, func() {
		created := time.Date(2025, 3, 4, 5, 6, 7, 8000, time.UTC)
		rec := model.DeathRecord{
			ID: "d1", OwnerID: "u1", DisplayName: "Ana", AvatarRef: "a.png",
			Score: 7, Position: model.Position{X: 812.5, Y: 40}, CreatedAt: created,
		}

		Convey("When converted to a document and back in memory", func() {
			got, err := model.DeathRecordFromDocument(rec.ToDocument())

			Convey("Then it is unchanged", func() {
				So(err, ShouldBeNil)
				So(got.CreatedAt.Equal(created), ShouldBeTrue)
				got.CreatedAt = created
				So(got, ShouldResemble, rec)
			})
		})

		Convey("When the document travels through JSON", func() {
			raw, err := json.Marshal(rec.ToDocument())
			So(err, ShouldBeNil)
			var doc map[string]any
			So(json.Unmarshal(raw, &doc), ShouldBeNil)

			got, err := model.DeathRecordFromDocument(doc)

			Convey("Then numbers and timestamps still parse", func() {
				So(err, ShouldBeNil)
				So(got.Score, ShouldEqual, 7)
				So(got.Position.X, ShouldEqual, 812.5)
				So(got.CreatedAt.Equal(created), ShouldBeTrue)
			})
		})

		Convey("When required fields are missing", func() {
			_, errNoID := model.DeathRecordFromDocument(map[string]any{"score": 1})
			_, errNoPos := model.DeathRecordFromDocument(map[string]any{"id": "x", "score": 1})
			_, errBadScore := model.DeathRecordFromDocument(map[string]any{"id": "x", "score": "lots"})

			So(errNoID, ShouldNotBeNil)
			So(errNoPos, ShouldNotBeNil)
			So(errBadScore, ShouldNotBeNil)
		})
	})
}

func TestGhostSet(t *testing.T) {
	Convey("Given two record lists sharing an id", t, func() {
		top := []model.DeathRecord{{ID: "a", Score: 9}, {ID: "b", Score: 5}}
		own := []model.DeathRecord{{ID: "b", Score: 5}, {ID: "c", Score: 1}}

		set := model.NewGhostSet(top, own)

		Convey("Then the union holds each id once in input order", func() {
			So(set.Len(), ShouldEqual, 3)
			ids := []string{}
			set.Each(func(r model.DeathRecord) { ids = append(ids, r.ID) })
			So(ids, ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Then Records returns a copy", func() {
			recs := set.Records()
			recs[0].ID = "mutated"
			So(set.Records()[0].ID, ShouldEqual, "a")
		})

		Convey("Then a nil set behaves as empty", func() {
			var none *model.GhostSet
			So(none.Len(), ShouldEqual, 0)
			So(none.Records(), ShouldBeNil)
			So(model.EmptyGhostSet.Len(), ShouldEqual, 0)
		})
	})
}
