package classify_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/classify"
	"github.com/okian/pirouette/internal/domain/errs"
	. "github.com/smartystreets/goconvey/convey"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestAge(t *testing.T) {
	Convey("Given a reference date of 2024-06-15", t, func() {
		asOf := date(2024, 6, 15)

		So(classify.Age(date(2010, 6, 15), asOf), ShouldEqual, 14)
		So(classify.Age(date(2010, 6, 16), asOf), ShouldEqual, 13)
		So(classify.Age(date(2010, 7, 1), asOf), ShouldEqual, 13)
		So(classify.Age(date(2010, 1, 1), asOf), ShouldEqual, 14)
	})
}

func TestBracketBoundaries(t *testing.T) {
	Convey("Given mean ages at each threshold", t, func() {
		cases := []struct {
			mean float64
			want category.AgeBracket
		}{
			{5, category.Baby},
			{6.0, category.Baby},
			{6.01, category.MiniKids},
			{8, category.MiniKids},
			{8.5, category.Kids},
			{11, category.Kids},
			{14, category.Teen},
			{14.5, category.Youth},
			{17, category.Youth},
			{17.01, category.Adult},
			{40, category.Adult},
		}
		for _, c := range cases {
			So(classify.Bracket(c.mean), ShouldEqual, c.want)
		}
	})
}

func TestClassify(t *testing.T) {
	Convey("Given performers and a fixed reference date", t, func() {
		asOf := date(2024, 6, 15)

		Convey("When ages average above a threshold", func() {
			// 6 and 7 -> mean 6.5
			res := classify.Classify([]time.Time{date(2018, 1, 1), date(2017, 1, 1)}, asOf)

			Convey("Then the unrounded mean picks the bracket", func() {
				So(res.Bracket, ShouldEqual, category.MiniKids)
				So(res.MeanAge, ShouldEqual, 6.5)
				So(res.HasMean, ShouldBeTrue)
			})
		})

		Convey("When the mean needs rounding", func() {
			// 12, 12, 13 -> 12.333...
			res := classify.Classify([]time.Time{date(2012, 1, 1), date(2012, 2, 1), date(2011, 3, 1)}, asOf)

			So(res.Bracket, ShouldEqual, category.Teen)
			So(res.MeanAge, ShouldEqual, 12.3)
		})

		Convey("When no birth date is usable", func() {
			empty := classify.Classify(nil, asOf)
			zero := classify.Classify([]time.Time{{}}, asOf)

			Convey("Then it fails soft to Adult without a mean", func() {
				So(empty.Bracket, ShouldEqual, category.Adult)
				So(empty.HasMean, ShouldBeFalse)
				So(zero, ShouldResemble, empty)
			})
		})
	})
}

func TestCardinality(t *testing.T) {
	Convey("Given every group-size class", t, func() {
		for _, g := range category.GroupSizes {
			g := g
			r, _ := g.Range()

			Convey("Boundaries are accepted for "+string(g), func() {
				So(classify.CheckCardinality(g, r.Min), ShouldBeNil)
				So(classify.CheckCardinality(g, r.Max), ShouldBeNil)
			})

			Convey("Counts outside the bound are rejected for "+string(g), func() {
				for _, n := range []int{r.Min - 1, r.Max + 1} {
					err := classify.CheckCardinality(g, n)
					So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
				}
			})
		}

		Convey("The message names the range and the count supplied", func() {
			err := classify.CheckCardinality(category.Group, 3)
			So(errs.Message(err), ShouldEqual, "Group requires 4-9 performers, got 3")
		})

		Convey("Unknown classes are rejected", func() {
			So(errors.Is(classify.CheckCardinality("Quartet", 4), errs.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestCheckGroup(t *testing.T) {
	Convey("Given a Formation entry", t, func() {
		Convey("Without a group name it is rejected", func() {
			err := classify.CheckGroup(category.Formation, 12, "")
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("With a group name it is accepted", func() {
			So(classify.CheckGroup(category.Formation, 12, "Firebirds"), ShouldBeNil)
		})

		Convey("A trio never needs a name", func() {
			So(classify.CheckGroup(category.Trio, 3, ""), ShouldBeNil)
		})
	})
}
