package seed

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
	"github.com/okian/pirouette/pkg/logger"
)

func TestRun(t *testing.T) {
	Convey("Given an in-memory service", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithReferenceDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
			service.WithLogger(logger.Nop()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("When a seeding run completes", func() {
			res, err := Run(ctx, svc, &Config{Performers: 30, Entries: 12, Judges: 3, Workers: 3, Publish: true}, nil)
			So(err, ShouldBeNil)

			Convey("Then every planned entry is accounted for", func() {
				So(res.Stats.EntriesRegistered+res.Stats.EntriesRejected, ShouldEqual, 12)
				So(res.Stats.EntriesRegistered, ShouldBeGreaterThan, 0)
			})

			Convey("Then every registered entry is ranked", func() {
				So(res.Stats.Awards, ShouldEqual, res.Stats.EntriesRegistered)
				So(res.Stats.MarksSubmitted, ShouldEqual, 3*res.Stats.EntriesRegistered)
			})

			Convey("Then members see the published results", func() {
				awards, err := svc.Awards(ctx, service.Actor{OrganizationID: res.OrganizationID}, res.EventID)
				So(err, ShouldBeNil)
				So(awards, ShouldNotBeEmpty)
			})

			Convey("Then a second run fills the same event", func() {
				again, err := Run(ctx, svc, &Config{EventID: res.EventID, Performers: 5, Entries: 3, Judges: 1}, nil)
				So(err, ShouldBeNil)
				So(again.EventID, ShouldEqual, res.EventID)
				So(again.OrganizationID, ShouldNotEqual, res.OrganizationID)
			})
		})

		Convey("When the event does not exist", func() {
			_, err := Run(ctx, svc, &Config{EventID: 999}, nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPlanEntry(t *testing.T) {
	Convey("Given a small performer pool", t, func() {
		styles := []model.Style{{ID: 7, Name: "Jazz"}}
		pool := make([]model.Performer, 5)
		for i := range pool {
			pool[i] = model.Performer{ID: int64(i + 1)}
		}

		Convey("Then planned entries fit their group size", func() {
			for i := 0; i < 50; i++ {
				in := planEntry(1, styles, pool, i)
				r, ok := in.GroupSize.Range()
				So(ok, ShouldBeTrue)
				So(in.GroupSize, ShouldNotEqual, category.Formation)
				So(len(in.PerformerIDs), ShouldBeGreaterThanOrEqualTo, r.Min)
				So(len(in.PerformerIDs), ShouldBeLessThanOrEqualTo, r.Max)
				So(in.StyleID, ShouldEqual, 7)

				seen := map[int64]bool{}
				for _, id := range in.PerformerIDs {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
				}
				So(in.GroupName != "", ShouldEqual, in.GroupSize.RequiresGroupName())
			}
		})

		Convey("Then a solo always carries exactly one performer", func() {
			for i := 0; i < 50; i++ {
				in := planEntry(1, styles, pool[:1], i)
				So(in.GroupSize, ShouldEqual, category.Solo)
				So(in.PerformerIDs, ShouldHaveLength, 1)
			}
		})
	})

	Convey("Random marks stay within bounds", t, func() {
		rows := []service.SheetRow{{Entry: model.Entry{ID: 1}}, {Entry: model.Entry{ID: 2}}}
		marks := randomMarks([]scoring.Criterion{scoring.Technique, scoring.ShowValue}, rows)
		So(marks, ShouldHaveLength, 2)
		for _, m := range marks {
			So(*m.Technique, ShouldBeBetweenOrEqual, 5.0, 10.0)
			So(*m.ShowValue, ShouldBeBetweenOrEqual, 5.0, 10.0)
			So(m.Image, ShouldBeNil)
		}
	})
}

func TestVerifyCategory(t *testing.T) {
	Convey("Given ranked categories", t, func() {
		award := func(rank int, score float64) service.Award {
			return service.Award{Rank: rank, Score: score}
		}

		Convey("A well-formed category passes", func() {
			cat := service.AwardCategory{Label: "ok", Awards: []service.Award{award(1, 9), award(2, 9), award(3, 7.5)}}
			So(verifyCategory(cat), ShouldBeNil)
		})

		Convey("A rising score fails", func() {
			cat := service.AwardCategory{Label: "bad", Awards: []service.Award{award(1, 7), award(2, 8)}}
			So(verifyCategory(cat), ShouldNotBeNil)
		})

		Convey("A gap in ranks fails", func() {
			cat := service.AwardCategory{Label: "gap", Awards: []service.Award{award(1, 9), award(3, 8)}}
			So(verifyCategory(cat), ShouldNotBeNil)
		})

		Convey("An empty category fails", func() {
			So(verifyCategory(service.AwardCategory{Label: "empty"}), ShouldNotBeNil)
		})
	})
}
