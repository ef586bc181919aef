package category_test

import (
	"testing"

	"github.com/okian/pirouette/internal/domain/category"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLint(t *testing.T) {
	Convey("Given keys with near-duplicate style names", t, func() {
		base := category.Key{Style: "Hip Hop", GroupSize: category.Solo, AgeBracket: category.Teen, Difficulty: category.Advanced}
		spaced := base
		spaced.Style = "Hip  hop"
		typo := base
		typo.Style = "Hip Hopp"
		other := base
		other.Style = "Contemporary"
		otherAge := spaced
		otherAge.AgeBracket = category.Kids

		pairs := category.Lint([]category.Key{base, spaced, typo, other, otherAge, base}, 0)

		Convey("Then folded and close names are reported", func() {
			So(len(pairs), ShouldEqual, 3)
			So(pairs[0].A, ShouldResemble, base)
			So(pairs[0].B, ShouldResemble, spaced)
			So(pairs[0].Distance, ShouldEqual, 0)
			So(pairs[1].B, ShouldResemble, typo)
			So(pairs[1].Distance, ShouldEqual, 1)
		})

		Convey("Then keys differing in another component are never paired", func() {
			for _, p := range pairs {
				So(p.A.AgeBracket, ShouldEqual, p.B.AgeBracket)
			}
		})

		Convey("Then the distance bound is honoured", func() {
			far := base
			far.Style = "Hip Hoppers"
			So(category.Lint([]category.Key{base, far}, 0), ShouldBeEmpty)
			So(len(category.Lint([]category.Key{base, far}, 4)), ShouldEqual, 1)
			So(category.Lint([]category.Key{base, other}, 1), ShouldBeEmpty)
		})
	})
}
