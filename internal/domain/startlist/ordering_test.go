package startlist_test

import (
	"errors"
	"testing"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/startlist"
	. "github.com/smartystreets/goconvey/convey"
)

func keyed(id int64, k category.Key) startlist.Keyed {
	return startlist.Keyed{Entry: model.Entry{ID: id, GroupSize: k.GroupSize, AgeBracket: k.AgeBracket, Difficulty: k.Difficulty}, Key: k}
}

func TestDefaultOrdering(t *testing.T) {
	Convey("Given entries in two categories", t, func() {
		teen := key("Jazz", category.Solo, category.Teen, category.Advanced)
		kids := key("Ballet", category.Solo, category.Kids, category.Advanced)
		entries := []startlist.Keyed{keyed(9, teen), keyed(4, kids), keyed(2, teen), keyed(7, kids)}

		a := startlist.Default(entries, startlist.AgeFirst(styles))

		Convey("Then categories are clustered in policy order and entries by id", func() {
			So(a.Entries[4], ShouldResemble, startlist.Position{DisplayOrder: 0, GroupDisplayOrder: 0})
			So(a.Entries[7], ShouldResemble, startlist.Position{DisplayOrder: 1, GroupDisplayOrder: 0})
			So(a.Entries[2], ShouldResemble, startlist.Position{DisplayOrder: 2, GroupDisplayOrder: 1})
			So(a.Entries[9], ShouldResemble, startlist.Position{DisplayOrder: 3, GroupDisplayOrder: 1})
		})

		Convey("Then ceremonies are not touched", func() {
			So(a.Ceremonies, ShouldBeEmpty)
			So(a.Len(), ShouldEqual, 4)
		})

		Convey("Then running it again gives the same assignment", func() {
			shuffled := []startlist.Keyed{entries[3], entries[1], entries[0], entries[2]}
			So(startlist.Default(shuffled, startlist.AgeFirst(styles)), ShouldResemble, a)
		})
	})
}

func TestManualOrdering(t *testing.T) {
	Convey("Given entries and ceremonies of an event", t, func() {
		jazz := key("Jazz", category.Solo, category.Teen, category.Advanced)
		ballet := key("Ballet", category.Duo, category.Kids, category.Basic)
		entries := map[int64]startlist.Keyed{5: keyed(5, jazz), 6: keyed(6, ballet), 7: keyed(7, jazz)}
		ceremonies := map[int64]model.Ceremony{1: {ID: 1, Minutes: 10}, 2: {ID: 2, Minutes: 5}}

		Convey("When saving an interleaved order", func() {
			order, err := startlist.ParseSlotIDs([]string{"ceremony-1", "5", "6", "ceremony-2", "7"})
			So(err, ShouldBeNil)
			a, err := startlist.Manual(order, entries, ceremonies)

			Convey("Then display order is the list position", func() {
				So(err, ShouldBeNil)
				So(a.Ceremonies[1], ShouldEqual, 0)
				So(a.Entries[5].DisplayOrder, ShouldEqual, 1)
				So(a.Entries[6].DisplayOrder, ShouldEqual, 2)
				So(a.Ceremonies[2], ShouldEqual, 3)
				So(a.Entries[7].DisplayOrder, ShouldEqual, 4)
			})

			Convey("Then categories are numbered by first appearance", func() {
				So(a.Entries[5].GroupDisplayOrder, ShouldEqual, 0)
				So(a.Entries[6].GroupDisplayOrder, ShouldEqual, 1)
				So(a.Entries[7].GroupDisplayOrder, ShouldEqual, 0)
			})
		})

		Convey("When an id does not belong to the event", func() {
			_, errEntry := startlist.Manual([]startlist.SlotID{{ID: 5}, {ID: 99}}, entries, ceremonies)
			_, errCeremony := startlist.Manual([]startlist.SlotID{{Ceremony: true, ID: 42}}, entries, ceremonies)

			Convey("Then the whole save is rejected as not found", func() {
				So(errors.Is(errEntry, errs.ErrNotFound), ShouldBeTrue)
				So(errors.Is(errCeremony, errs.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an id is listed twice", func() {
			_, err := startlist.Manual([]startlist.SlotID{{ID: 5}, {ID: 5}}, entries, ceremonies)

			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("When only some slots are listed", func() {
			a, err := startlist.Manual([]startlist.SlotID{{ID: 7}}, entries, ceremonies)

			Convey("Then the others are left out of the assignment", func() {
				So(err, ShouldBeNil)
				So(a.Len(), ShouldEqual, 1)
				_, ok := a.Entries[5]
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestParseSlotID(t *testing.T) {
	Convey("Given slot id strings", t, func() {
		id, err := startlist.ParseSlotID("ceremony-3")
		So(err, ShouldBeNil)
		So(id, ShouldResemble, startlist.SlotID{Ceremony: true, ID: 3})
		So(id.String(), ShouldEqual, "ceremony-3")

		id, err = startlist.ParseSlotID("17")
		So(err, ShouldBeNil)
		So(id.Ceremony, ShouldBeFalse)
		So(id.String(), ShouldEqual, "17")

		for _, bad := range []string{"", "ceremony-", "abc", "-4", "ceremony-x"} {
			_, err := startlist.ParseSlotID(bad)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		}
	})
}

func TestStateMachine(t *testing.T) {
	Convey("Given the publication states", t, func() {
		Convey("Saving moves draft and unpublished lists to saved", func() {
			So(startlist.Saved(model.StartListDraft), ShouldEqual, model.StartListSaved)
			So(startlist.Saved(""), ShouldEqual, model.StartListSaved)
			So(startlist.Saved(model.StartListUnpublished), ShouldEqual, model.StartListSaved)
			So(startlist.Saved(model.StartListPublished), ShouldEqual, model.StartListPublished)
		})

		Convey("Publishing works from any state but needs slots", func() {
			for _, s := range []model.StartListStatus{model.StartListDraft, model.StartListSaved, model.StartListPublished, model.StartListUnpublished} {
				got, err := startlist.Publish(s, 3)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, model.StartListPublished)
			}
			_, err := startlist.Publish(model.StartListSaved, 0)
			So(errors.Is(err, errs.ErrState), ShouldBeTrue)
		})

		Convey("Unpublishing is idempotent", func() {
			So(startlist.Unpublish(model.StartListPublished), ShouldEqual, model.StartListUnpublished)
			So(startlist.Unpublish(model.StartListUnpublished), ShouldEqual, model.StartListUnpublished)
			So(startlist.Unpublish(""), ShouldEqual, model.StartListDraft)
		})
	})
}
