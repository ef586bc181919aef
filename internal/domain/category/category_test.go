package category_test

import (
	"errors"
	"testing"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given a category key", t, func() {
		k := category.Key{Style: "Jazz", GroupSize: category.Solo, AgeBracket: category.Teen, Difficulty: category.Advanced}

		Convey("When rendering and parsing it", func() {
			s := k.String()
			back, err := category.Parse(s)

			Convey("Then it round-trips to the same four-tuple", func() {
				So(s, ShouldEqual, "Jazz|Solo|Teen|A")
				So(err, ShouldBeNil)
				So(back, ShouldResemble, k)
				So(back == k, ShouldBeTrue)
			})
		})

		Convey("When rendering a label", func() {
			So(k.Label(), ShouldEqual, "Jazz – Solo – Teen – A")
		})

		Convey("When comparing keys that differ only in case or whitespace", func() {
			spaced := k
			spaced.Style = "Jazz "
			lower := k
			lower.Style = "jazz"

			Convey("Then they are distinct categories", func() {
				So(spaced == k, ShouldBeFalse)
				So(lower == k, ShouldBeFalse)
			})
		})

		Convey("When parsing keys with the wrong number of components", func() {
			for _, bad := range []string{"", "Jazz|Solo|Teen", "Jazz|Solo|Teen|A|extra"} {
				_, err := category.Parse(bad)
				So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
			}
		})

		Convey("When parsing components with surrounding spaces", func() {
			parsed, err := category.Parse(" Jazz|Solo|Teen|A")

			Convey("Then they are kept verbatim", func() {
				So(err, ShouldBeNil)
				So(parsed.Style, ShouldEqual, " Jazz")
			})
		})
	})
}

func TestEnumerations(t *testing.T) {
	Convey("Given the enumerations", t, func() {
		Convey("Then group sizes carry the cardinality table", func() {
			want := map[category.GroupSize]category.Range{
				category.Solo:       {Min: 1, Max: 1},
				category.Duo:        {Min: 2, Max: 2},
				category.Trio:       {Min: 3, Max: 3},
				category.Group:      {Min: 4, Max: 9},
				category.Formation:  {Min: 10, Max: 29},
				category.Production: {Min: 30, Max: 200},
			}
			for g, r := range want {
				got, ok := g.Range()
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, r)
			}
			_, ok := category.GroupSize("Quartet").Range()
			So(ok, ShouldBeFalse)
		})

		Convey("Then indexes follow presentation order and unknowns sort last", func() {
			So(category.Solo.Index(), ShouldEqual, 0)
			So(category.Production.Index(), ShouldEqual, 5)
			So(category.GroupSize("Quartet").Index(), ShouldEqual, len(category.GroupSizes))
			So(category.Baby.Index(), ShouldBeLessThan, category.Adult.Index())
			So(category.AgeBracket("Senior").Valid(), ShouldBeFalse)
			So(category.Difficulty("A").Index(), ShouldEqual, 0)
		})

		Convey("Then only large classes require a group name", func() {
			So(category.Trio.RequiresGroupName(), ShouldBeFalse)
			So(category.Group.RequiresGroupName(), ShouldBeTrue)
			So(category.Production.RequiresGroupName(), ShouldBeTrue)
		})
	})
}

func TestCluster(t *testing.T) {
	Convey("Given items spread over three categories", t, func() {
		type item struct {
			id    int
			key   category.Key
			order int
		}
		a := category.Key{Style: "Jazz", GroupSize: category.Solo, AgeBracket: category.Teen, Difficulty: category.Advanced}
		b := category.Key{Style: "Ballet", GroupSize: category.Solo, AgeBracket: category.Teen, Difficulty: category.Advanced}
		c := category.Key{Style: "Tap", GroupSize: category.Duo, AgeBracket: category.Kids, Difficulty: category.Basic}
		items := []item{{1, a, 2}, {2, b, 0}, {3, a, 9}, {4, c, 2}, {5, b, 0}}

		buckets := category.Cluster(items,
			func(it item) category.Key { return it.key },
			func(it item) int { return it.order })

		Convey("Then buckets are ordered by the first item's order, ties by first appearance", func() {
			So(len(buckets), ShouldEqual, 3)
			So(buckets[0].Key, ShouldResemble, b)
			So(buckets[1].Key, ShouldResemble, a)
			So(buckets[2].Key, ShouldResemble, c)
		})

		Convey("Then items keep input order inside a bucket", func() {
			So(buckets[1].Items[0].id, ShouldEqual, 1)
			So(buckets[1].Items[1].id, ShouldEqual, 3)
			So(buckets[1].Order, ShouldEqual, 2)
		})

		Convey("Then the Group class stays a plain group-size value", func() {
			So(category.Group.RequiresGroupName(), ShouldBeTrue)
			r, ok := category.Group.Range()
			So(ok, ShouldBeTrue)
			So(r, ShouldResemble, category.Range{Min: 4, Max: 9})
		})
	})
}
