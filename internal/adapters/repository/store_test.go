package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pirouette/internal/adapters/repository"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/startlist"
)

type backend struct {
	name string
	open func(t *testing.T) repository.Store
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(*testing.T) repository.Store { return repository.NewMemoryStore() }},
		{name: "sqlite", open: func(t *testing.T) repository.Store {
			dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
			s, err := repository.Open(context.Background(), repository.DriverSQLite, dsn, false)
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		}},
	}
}

type fixture struct {
	event  model.Event
	style  model.Style
	org    model.Organization
	people []model.Performer
}

func seed(ctx context.Context, s repository.Store) fixture {
	var f fixture
	f.event = model.Event{Name: "Spring Cup", City: "Zagreb", Date: time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), StartTime: "10:00", StartList: model.StartListDraft}
	So(s.CreateEvent(ctx, &f.event), ShouldBeNil)
	f.style = model.Style{EventID: f.event.ID, Name: "Jazz"}
	So(s.CreateStyle(ctx, &f.style), ShouldBeNil)
	f.org = model.Organization{Name: "Studio Plié", City: "Split"}
	So(s.CreateOrganization(ctx, &f.org), ShouldBeNil)
	for _, name := range []string{"Ana", "Ivo", "Mia"} {
		p := model.Performer{OrganizationID: f.org.ID, FirstName: name, LastName: "Horvat", BirthDate: time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)}
		So(s.CreatePerformer(ctx, &p), ShouldBeNil)
		f.people = append(f.people, p)
	}
	return f
}

func (f fixture) entry(performers ...int64) model.Entry {
	return model.Entry{
		EventID: f.event.ID, OrganizationID: f.org.ID, StyleID: f.style.ID,
		GroupSize: category.Trio, AgeBracket: category.Kids, Difficulty: category.Advanced,
		Choreography: "Spark", PerformerIDs: performers,
	}
}

func TestStoreContract(t *testing.T) {
	for _, b := range backends() {
		b := b
		Convey("Given a "+b.name+" store", t, func() {
			ctx := context.Background()
			s := b.open(t)
			Reset(func() { _ = s.Close() })
			f := seed(ctx, s)

			Convey("events round-trip and update", func() {
				got, err := s.GetEvent(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Spring Cup")
				So(got.StartTime, ShouldEqual, "10:00")

				got.ResultsPublished = true
				So(s.UpdateEvent(ctx, got), ShouldBeNil)
				again, err := s.GetEvent(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(again.ResultsPublished, ShouldBeTrue)

				_, err = s.GetEvent(ctx, 9999)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("style names are unique per event", func() {
				dup := model.Style{EventID: f.event.ID, Name: "Jazz"}
				err := s.CreateStyle(ctx, &dup)
				So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)
			})

			Convey("performers come back in the requested order", func() {
				ids := []int64{f.people[2].ID, f.people[0].ID}
				got, err := s.GetPerformers(ctx, ids)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 2)
				So(got[0].FirstName, ShouldEqual, "Mia")
				So(got[1].FirstName, ShouldEqual, "Ana")

				_, err = s.GetPerformers(ctx, []int64{f.people[0].ID, 9999})
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("entries keep their performer order", func() {
				e := f.entry(f.people[1].ID, f.people[0].ID, f.people[2].ID)
				So(s.CreateEntry(ctx, &e), ShouldBeNil)
				got, err := s.GetEntry(ctx, e.ID)
				So(err, ShouldBeNil)
				So(got.PerformerIDs, ShouldResemble, []int64{f.people[1].ID, f.people[0].ID, f.people[2].ID})
				So(got.DisplayOrder, ShouldBeNil)

				got.PerformerIDs = []int64{f.people[2].ID}
				got.AudioSeconds = model.Int(150)
				So(s.UpdateEntry(ctx, got), ShouldBeNil)
				again, err := s.GetEntry(ctx, e.ID)
				So(err, ShouldBeNil)
				So(again.PerformerIDs, ShouldResemble, []int64{f.people[2].ID})
				So(*again.AudioSeconds, ShouldEqual, 150)
			})

			Convey("scores upsert on (entry, judge)", func() {
				e := f.entry(f.people[0].ID)
				So(s.CreateEntry(ctx, &e), ShouldBeNil)
				j := model.Judge{EventID: f.event.ID, FirstName: "Ivana", Username: "judge_1_ivana"}
				So(s.CreateJudge(ctx, &j), ShouldBeNil)

				So(s.UpsertScores(ctx, []model.ScoreRecord{{EntryID: e.ID, JudgeID: j.ID, Technique: model.Float(7.5)}}), ShouldBeNil)
				So(s.UpsertScores(ctx, []model.ScoreRecord{{EntryID: e.ID, JudgeID: j.ID, Technique: model.Float(8), Image: model.Float(6.25)}}), ShouldBeNil)

				got, err := s.ListEntryScores(ctx, e.ID)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(*got[0].Technique, ShouldEqual, 8)
				So(*got[0].Image, ShouldEqual, 6.25)
				So(got[0].Composition, ShouldBeNil)

				all, err := s.ListScores(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 1)

				err = s.UpsertScores(ctx, []model.ScoreRecord{{EntryID: 9999, JudgeID: j.ID}})
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("judge usernames are unique and cursors persist", func() {
				j := model.Judge{EventID: f.event.ID, FirstName: "Ivana", Username: "judge_1_ivana"}
				So(s.CreateJudge(ctx, &j), ShouldBeNil)
				dup := model.Judge{EventID: f.event.ID, FirstName: "Ivana", Username: "judge_1_ivana"}
				So(errors.Is(s.CreateJudge(ctx, &dup), repository.ErrConflict), ShouldBeTrue)

				So(s.SetJudgeCursor(ctx, j.ID, 3), ShouldBeNil)
				got, err := s.GetJudge(ctx, j.ID)
				So(err, ShouldBeNil)
				So(got.Cursor, ShouldEqual, 3)
				So(errors.Is(s.SetJudgeCursor(ctx, 9999, 1), repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("ApplyOrdering writes positions and status together", func() {
				e := f.entry(f.people[0].ID)
				So(s.CreateEntry(ctx, &e), ShouldBeNil)
				c := model.Ceremony{EventID: f.event.ID, Title: "Opening", Minutes: 10}
				So(s.CreateCeremony(ctx, &c), ShouldBeNil)

				a := startlist.Assignment{
					Entries:    map[int64]startlist.Position{e.ID: {DisplayOrder: 1, GroupDisplayOrder: 0}},
					Ceremonies: map[int64]int{c.ID: 0},
				}
				So(s.ApplyOrdering(ctx, f.event.ID, a, model.StartListSaved), ShouldBeNil)

				got, err := s.GetEntry(ctx, e.ID)
				So(err, ShouldBeNil)
				So(*got.DisplayOrder, ShouldEqual, 1)
				So(*got.GroupDisplayOrder, ShouldEqual, 0)
				cs, err := s.ListCeremonies(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(*cs[0].DisplayOrder, ShouldEqual, 0)
				ev, err := s.GetEvent(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(ev.StartList, ShouldEqual, model.StartListSaved)

				Convey("and writes nothing when a slot is missing", func() {
					bad := startlist.Assignment{Entries: map[int64]startlist.Position{e.ID: {DisplayOrder: 5}, 9999: {DisplayOrder: 6}}}
					err := s.ApplyOrdering(ctx, f.event.ID, bad, model.StartListPublished)
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
					got, err := s.GetEntry(ctx, e.ID)
					So(err, ShouldBeNil)
					So(*got.DisplayOrder, ShouldEqual, 1)
					ev, err := s.GetEvent(ctx, f.event.ID)
					So(err, ShouldBeNil)
					So(ev.StartList, ShouldEqual, model.StartListSaved)
				})
			})

			Convey("MergeEntries folds duplicates with their scores", func() {
				a := f.entry(f.people[0].ID)
				b := f.entry(f.people[1].ID)
				So(s.CreateEntry(ctx, &a), ShouldBeNil)
				So(s.CreateEntry(ctx, &b), ShouldBeNil)
				So(s.UpsertScores(ctx, []model.ScoreRecord{{EntryID: b.ID, JudgeID: 1, Technique: model.Float(5)}}), ShouldBeNil)

				So(s.MergeEntries(ctx, a.ID, []int64{f.people[0].ID, f.people[1].ID}, []int64{b.ID}), ShouldBeNil)

				entries, err := s.ListEntries(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].PerformerIDs, ShouldResemble, []int64{f.people[0].ID, f.people[1].ID})
				scores, err := s.ListEntryScores(ctx, b.ID)
				So(err, ShouldBeNil)
				So(scores, ShouldBeEmpty)
			})

			Convey("highlight is empty until set", func() {
				key, err := s.GetHighlight(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(key, ShouldEqual, "")
				So(s.SetHighlight(ctx, f.event.ID, "entry-4"), ShouldBeNil)
				So(s.SetHighlight(ctx, f.event.ID, "entry-5"), ShouldBeNil)
				key, err = s.GetHighlight(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(key, ShouldEqual, "entry-5")
			})

			Convey("diplomas are replaced per category label", func() {
				for rank := 2; rank >= 1; rank-- {
					d := model.Diploma{EventID: f.event.ID, EntryID: 1, PerformerID: 1, CategoryLabel: "Jazz – Kids", Rank: rank, Artifact: fmt.Sprintf("d%d", rank)}
					So(s.CreateDiploma(ctx, &d), ShouldBeNil)
				}
				other := model.Diploma{EventID: f.event.ID, EntryID: 2, PerformerID: 2, CategoryLabel: "Ballet – Teen", Rank: 1}
				So(s.CreateDiploma(ctx, &other), ShouldBeNil)

				list, err := s.ListDiplomas(ctx, f.event.ID, "Jazz – Kids")
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].Rank, ShouldEqual, 1)

				removed, err := s.DeleteDiplomas(ctx, f.event.ID, "Jazz – Kids")
				So(err, ShouldBeNil)
				So(len(removed), ShouldEqual, 2)
				all, err := s.ListDiplomas(ctx, f.event.ID, "")
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 1)
				So(all[0].CategoryLabel, ShouldEqual, "Ballet – Teen")
			})

			Convey("DeleteEvent cascades", func() {
				e := f.entry(f.people[0].ID)
				So(s.CreateEntry(ctx, &e), ShouldBeNil)
				So(s.UpsertScores(ctx, []model.ScoreRecord{{EntryID: e.ID, JudgeID: 1, Image: model.Float(9)}}), ShouldBeNil)

				So(s.DeleteEvent(ctx, f.event.ID), ShouldBeNil)
				_, err := s.GetEntry(ctx, e.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				scores, err := s.ListEntryScores(ctx, e.ID)
				So(err, ShouldBeNil)
				So(scores, ShouldBeEmpty)
				styles, err := s.ListStyles(ctx, f.event.ID)
				So(err, ShouldBeNil)
				So(styles, ShouldBeEmpty)
				So(errors.Is(s.DeleteEvent(ctx, f.event.ID), repository.ErrNotFound), ShouldBeTrue)
			})
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	Convey("An unknown driver is rejected", t, func() {
		_, err := repository.Open(context.Background(), "oracle", "", false)
		So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
	})
}
