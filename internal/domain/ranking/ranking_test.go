package ranking_test

import (
	"testing"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	jazzSolo  = category.Key{Style: "Jazz", GroupSize: category.Solo, AgeBracket: category.Teen, Difficulty: category.Advanced}
	balletDuo = category.Key{Style: "Ballet", GroupSize: category.Duo, AgeBracket: category.Kids, Difficulty: category.Basic}
	tapTrio   = category.Key{Style: "Tap", GroupSize: category.Trio, AgeBracket: category.Youth, Difficulty: category.Advanced}
)

func cand(id int64, k category.Key, order *int, score float64, scored bool) ranking.Candidate {
	return ranking.Candidate{
		Entry:  model.Entry{ID: id, GroupDisplayOrder: order},
		Key:    k,
		Score:  score,
		Scored: scored,
	}
}

func TestPlace(t *testing.T) {
	Convey("Given candidates of one category", t, func() {
		cs := []ranking.Candidate{
			cand(1, jazzSolo, nil, 7.5, true),
			cand(2, jazzSolo, nil, 8.25, true),
			cand(3, jazzSolo, nil, 0, false),
			cand(4, jazzSolo, nil, 7.5, true),
			cand(5, jazzSolo, nil, 0, true),
		}

		placements := ranking.Place(cs)

		Convey("Then scored entries are ordered by score descending", func() {
			So(len(placements), ShouldEqual, 4)
			So(placements[0].Entry.ID, ShouldEqual, 2)
			So(placements[3].Entry.ID, ShouldEqual, 5)
		})

		Convey("Then ties keep input order and get distinct placements", func() {
			So(placements[1].Entry.ID, ShouldEqual, 1)
			So(placements[2].Entry.ID, ShouldEqual, 4)
			So(placements[1].Rank, ShouldEqual, 2)
			So(placements[2].Rank, ShouldEqual, 3)
		})

		Convey("Then unscored entries never appear, on every call", func() {
			again := ranking.Place(cs)
			So(again, ShouldResemble, placements)
			for _, p := range placements {
				So(p.Entry.ID, ShouldNotEqual, 3)
			}
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given candidates across categories", t, func() {
		cs := []ranking.Candidate{
			cand(1, jazzSolo, model.Int(2), 7, true),
			cand(2, balletDuo, model.Int(1), 9, true),
			cand(3, tapTrio, nil, 0, false),
			cand(4, jazzSolo, model.Int(2), 8, true),
			cand(5, balletDuo, model.Int(1), 6, true),
		}

		cats := ranking.Rank(cs)

		Convey("Then categories follow group display order", func() {
			So(len(cats), ShouldEqual, 2)
			So(cats[0].Key, ShouldResemble, balletDuo)
			So(cats[0].GroupDisplayOrder, ShouldEqual, 1)
			So(cats[1].Key, ShouldResemble, jazzSolo)
		})

		Convey("Then each category is ranked independently", func() {
			So(cats[1].Placements[0].Entry.ID, ShouldEqual, 4)
			So(cats[1].Placements[0].Rank, ShouldEqual, 1)
			So(cats[0].Placements[1].Entry.ID, ShouldEqual, 5)
		})

		Convey("Then a category without scores is omitted", func() {
			_, ok := ranking.Find(cats, tapTrio)
			So(ok, ShouldBeFalse)
			found, ok := ranking.Find(cats, jazzSolo)
			So(ok, ShouldBeTrue)
			So(len(found.Placements), ShouldEqual, 2)
		})

		Convey("Then unset group display orders count as zero", func() {
			unset := append([]ranking.Candidate{}, cs...)
			unset = append(unset, cand(6, tapTrio, nil, 5, true))
			again := ranking.Rank(unset)
			So(again[0].Key, ShouldResemble, tapTrio)
		})
	})
}

func TestDisplayName(t *testing.T) {
	Convey("Given performers", t, func() {
		p := func(f, l string) model.Performer { return model.Performer{FirstName: f, LastName: l} }
		four := []model.Performer{p("A", "One"), p("B", "Two"), p("C", "Three"), p("D", "Four")}

		Convey("A named group of four shows the group name", func() {
			So(ranking.DisplayName("Firebirds", four), ShouldEqual, "Firebirds")
			So(ranking.RecipientName("Firebirds", 4, four[0]), ShouldEqual, "Firebirds")
		})

		Convey("Smaller entries show performer names", func() {
			So(ranking.DisplayName("Firebirds", four[:2]), ShouldEqual, "A One, B Two")
			So(ranking.RecipientName("Firebirds", 3, four[1]), ShouldEqual, "B Two")
		})

		Convey("An unnamed group shows performer names", func() {
			So(ranking.DisplayName("", four), ShouldEqual, "A One, B Two, C Three, D Four")
		})
	})
}
