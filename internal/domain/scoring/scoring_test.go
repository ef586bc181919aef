package scoring_test

import (
	"testing"

	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(judge int64, vals ...float64) model.ScoreRecord {
	r := model.ScoreRecord{JudgeID: judge}
	ptrs := []**float64{&r.Technique, &r.Composition, &r.Image, &r.ShowValue}
	for i, v := range vals {
		if v >= 0 {
			*ptrs[i] = model.Float(v)
		}
	}
	return r
}

func TestAggregate(t *testing.T) {
	Convey("Given the default aggregator", t, func() {
		agg := scoring.NewAggregator()

		Convey("When three judges mark a solo", func() {
			records := []model.ScoreRecord{
				rec(1, 7, 6, 8),
				rec(2, 8, 7, 8),
				rec(3, 9, 8, 8),
			}
			score, ok := agg.Aggregate("Jazz", records)

			Convey("Then each criterion keeps its middle value", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 7.67)
			})
		})

		Convey("When five judges mark technique only", func() {
			records := []model.ScoreRecord{
				rec(1, 4, -1, -1), rec(2, 6, -1, -1), rec(3, 8, -1, -1), rec(4, 9, -1, -1), rec(5, 10, -1, -1),
			}
			b := agg.Breakdown("Jazz", records)

			Convey("Then exactly one low and one high are dropped", func() {
				So(b.Total, ShouldEqual, 23)
				So(b.Count, ShouldEqual, 3)
				So(b.Score, ShouldEqual, 7.67)
			})
		})

		Convey("When fewer than three marks exist for a criterion", func() {
			records := []model.ScoreRecord{rec(1, 5, 9, -1), rec(2, 7, -1, -1)}
			b := agg.Breakdown("Jazz", records)

			Convey("Then nothing is trimmed and criteria pool together", func() {
				So(b.Count, ShouldEqual, 3)
				So(b.Score, ShouldEqual, 7)
				So(b.Discarded, ShouldBeEmpty)
			})
		})

		Convey("When no marks are present", func() {
			_, none := agg.Aggregate("Jazz", nil)
			_, blank := agg.Aggregate("Jazz", []model.ScoreRecord{rec(1, -1, -1, -1)})

			Convey("Then the entry is unscored rather than zero", func() {
				So(none, ShouldBeFalse)
				So(blank, ShouldBeFalse)
			})
		})

		Convey("When all marks are zero", func() {
			score, ok := agg.Aggregate("Jazz", []model.ScoreRecord{rec(1, 0, 0, 0)})

			Convey("Then the entry is scored with zero", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 0)
			})
		})

		Convey("When show value is given", func() {
			records := []model.ScoreRecord{rec(1, 6, 6, 6, 10)}
			jazz, _ := agg.Aggregate("Jazz", records)
			show, _ := agg.Aggregate("Show Dance", records)

			Convey("Then it counts only for the open style", func() {
				So(jazz, ShouldEqual, 6)
				So(show, ShouldEqual, 7)
				So(agg.Criteria("Show Dance"), ShouldContain, scoring.ShowValue)
				So(agg.Criteria("Jazz"), ShouldNotContain, scoring.ShowValue)
			})
		})
	})

	Convey("Given an aggregator with a custom open style", t, func() {
		agg := scoring.NewAggregator(scoring.WithOpenStyle("Open"))

		So(agg.Criteria("Open"), ShouldContain, scoring.ShowValue)
		So(agg.Criteria("Show Dance"), ShouldNotContain, scoring.ShowValue)
	})
}

func TestBreakdownDiscards(t *testing.T) {
	Convey("Given tied extremes", t, func() {
		agg := scoring.NewAggregator()
		records := []model.ScoreRecord{
			rec(10, 5, -1, -1),
			rec(11, 9, -1, -1),
			rec(12, 5, -1, -1),
			rec(13, 9, -1, -1),
		}
		b := agg.Breakdown("Jazz", records)

		Convey("Then the first low and the last high are the discarded instances", func() {
			So(b.Discarded[scoring.Technique], ShouldResemble, scoring.Discard{Low: 0, High: 3})
			So(b.IsDiscarded(scoring.Technique, 0), ShouldBeTrue)
			So(b.IsDiscarded(scoring.Technique, 2), ShouldBeFalse)
			So(b.IsDiscarded(scoring.Composition, 0), ShouldBeFalse)
		})

		Convey("Then the numeric result does not depend on which instance dropped", func() {
			So(b.Score, ShouldEqual, 7)
		})

		Convey("Then every judge row is listed", func() {
			So(len(b.Rows), ShouldEqual, 4)
			So(b.Rows[1].JudgeID, ShouldEqual, 11)
			So(*b.Rows[1].Values[scoring.Technique], ShouldEqual, 9)
			So(b.Rows[1].Values[scoring.Image], ShouldBeNil)
		})
	})
}

func TestRound2(t *testing.T) {
	Convey("Given values to round", t, func() {
		So(scoring.Round2(23.0/3), ShouldEqual, 7.67)
		So(scoring.Round2(7.125), ShouldEqual, 7.13)
		So(scoring.Round2(7), ShouldEqual, 7)
	})
}
