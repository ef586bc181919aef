package judging_test

import (
	"errors"
	"testing"

	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/judging"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMerge(t *testing.T) {
	Convey("Given a prior record", t, func() {
		prior := &model.ScoreRecord{ID: 3, EntryID: 1, JudgeID: 2, Technique: model.Float(7), Image: model.Float(6)}

		Convey("When only composition is entered", func() {
			r, ok := judging.Merge(prior, 1, 2, judging.Marks{Composition: model.Float(8)})

			Convey("Then entered values overwrite and omitted ones are kept", func() {
				So(ok, ShouldBeTrue)
				So(r.ID, ShouldEqual, 3)
				So(*r.Technique, ShouldEqual, 7)
				So(*r.Composition, ShouldEqual, 8)
				So(*r.Image, ShouldEqual, 6)
				So(r.ShowValue, ShouldBeNil)
			})
		})

		Convey("When nothing is entered", func() {
			_, ok := judging.Merge(prior, 1, 2, judging.Marks{})

			So(ok, ShouldBeFalse)
		})

		Convey("When there is no prior record", func() {
			r, ok := judging.Merge(nil, 5, 6, judging.Marks{Technique: model.Float(9)})

			So(ok, ShouldBeTrue)
			So(r.EntryID, ShouldEqual, 5)
			So(r.JudgeID, ShouldEqual, 6)
			So(r.Composition, ShouldBeNil)
		})
	})
}

func TestMarks(t *testing.T) {
	Convey("Given entered marks", t, func() {
		m := judging.Marks{Technique: model.Float(5), ShowValue: model.Float(9)}

		Convey("Restrict drops criteria that do not count", func() {
			r := m.Restrict([]scoring.Criterion{scoring.Technique, scoring.Composition, scoring.Image})
			So(r.ShowValue, ShouldBeNil)
			So(*r.Technique, ShouldEqual, 5)
		})

		Convey("Validate enforces bounds", func() {
			So(m.Validate(), ShouldBeNil)
			for _, v := range []float64{10, 10.5, 20, 99.99, 0} {
				So(judging.Marks{Image: model.Float(v)}.Validate(), ShouldBeNil)
			}
			for _, v := range []float64{-0.5, 100, 8.125} {
				bad := judging.Marks{Image: model.Float(v)}
				So(errors.Is(bad.Validate(), errs.ErrValidation), ShouldBeTrue)
			}
		})
	})
}

func TestUsername(t *testing.T) {
	Convey("Given judge first names", t, func() {
		So(judging.Username(12, "Ana"), ShouldEqual, "judge_12_ana")
		So(judging.Username(12, "Ana Marija"), ShouldEqual, "judge_12_anamarija")
		So(judging.Username(12, "J.R."), ShouldEqual, "judge_12_jr")
		So(judging.Username(3, "Željko"), ShouldEqual, "judge_3_zeljko")
		So(judging.Username(3, "Chloé"), ShouldEqual, "judge_3_chloe")
		So(judging.UsernamePrefix(3), ShouldEqual, "judge_3_")
	})
}
