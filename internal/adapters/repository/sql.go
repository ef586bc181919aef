package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/startlist"
)

// SQLStore is a Store over any bun dialect. Cascades are issued explicitly
// inside transactions so they behave the same on every backend.
type SQLStore struct {
	db *bun.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps db and creates missing tables.
func NewSQLStore(ctx context.Context, db *bun.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, m := range tables() {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", m, err)
		}
	}
	return nil
}

// DB exposes the underlying handle for maintenance tools.
func (s *SQLStore) DB() *bun.DB { return s.db }

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }

func wrapNotFound(err error, kind string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(kind, id)
	}
	return fmt.Errorf("%s %d: %w", kind, id, err)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func affected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", kind, id, err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

// CreateEvent stores e and assigns its id.
func (s *SQLStore) CreateEvent(ctx context.Context, e *model.Event) error {
	row := eventFromModel(*e)
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID = row.ID
	return nil
}

// GetEvent returns the event with id.
func (s *SQLStore) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	var row eventRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Event{}, wrapNotFound(err, "event", id)
	}
	return row.toModel(), nil
}

// ListEvents returns every event ordered by id.
func (s *SQLStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	var rows []eventRow
	if err := s.db.NewSelect().Model(&rows).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]model.Event, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UpdateEvent rewrites the event row.
func (s *SQLStore) UpdateEvent(ctx context.Context, e model.Event) error {
	res, err := s.db.NewUpdate().Model(eventFromModel(e)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}
	return affected(res, "event", e.ID)
}

// DeleteEvent removes the event and everything that belongs to it.
func (s *SQLStore) DeleteEvent(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		entryIDs := tx.NewSelect().Model((*entryRow)(nil)).Column("id").Where("event_id = ?", id)
		steps := []*bun.DeleteQuery{
			tx.NewDelete().Model((*scoreRow)(nil)).Where("entry_id IN (?)", entryIDs),
			tx.NewDelete().Model((*entryPerformerRow)(nil)).Where("entry_id IN (?)", entryIDs),
			tx.NewDelete().Model((*entryRow)(nil)).Where("event_id = ?", id),
			tx.NewDelete().Model((*ceremonyRow)(nil)).Where("event_id = ?", id),
			tx.NewDelete().Model((*styleRow)(nil)).Where("event_id = ?", id),
			tx.NewDelete().Model((*judgeRow)(nil)).Where("event_id = ?", id),
			tx.NewDelete().Model((*diplomaRow)(nil)).Where("event_id = ?", id),
			tx.NewDelete().Model((*playbackRow)(nil)).Where("event_id = ?", id),
		}
		for _, q := range steps {
			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("delete event %d: %w", id, err)
			}
		}
		res, err := tx.NewDelete().Model((*eventRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete event %d: %w", id, err)
		}
		return affected(res, "event", id)
	})
}

// CreateStyle stores st; names are unique per event.
func (s *SQLStore) CreateStyle(ctx context.Context, st *model.Style) error {
	row := &styleRow{EventID: st.EventID, Name: st.Name}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("style %q: %w", st.Name, ErrConflict)
		}
		return fmt.Errorf("insert style: %w", err)
	}
	st.ID = row.ID
	return nil
}

// ListStyles returns the event's styles ordered by id.
func (s *SQLStore) ListStyles(ctx context.Context, eventID int64) ([]model.Style, error) {
	var rows []styleRow
	if err := s.db.NewSelect().Model(&rows).Where("event_id = ?", eventID).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list styles: %w", err)
	}
	out := make([]model.Style, len(rows))
	for i, r := range rows {
		out[i] = model.Style{ID: r.ID, EventID: r.EventID, Name: r.Name}
	}
	return out, nil
}

// CreateOrganization stores o.
func (s *SQLStore) CreateOrganization(ctx context.Context, o *model.Organization) error {
	row := &organizationRow{Name: o.Name, City: o.City, Country: o.Country, Email: o.Email, Representative: o.Representative, Confirmed: o.Confirmed}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	o.ID = row.ID
	return nil
}

func (r organizationRow) toModel() model.Organization {
	return model.Organization{ID: r.ID, Name: r.Name, City: r.City, Country: r.Country, Email: r.Email, Representative: r.Representative, Confirmed: r.Confirmed}
}

// GetOrganization returns the organization with id.
func (s *SQLStore) GetOrganization(ctx context.Context, id int64) (model.Organization, error) {
	var row organizationRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Organization{}, wrapNotFound(err, "organization", id)
	}
	return row.toModel(), nil
}

// ListOrganizations returns every organization ordered by id.
func (s *SQLStore) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	var rows []organizationRow
	if err := s.db.NewSelect().Model(&rows).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	out := make([]model.Organization, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UpdateOrganization rewrites the organization row.
func (s *SQLStore) UpdateOrganization(ctx context.Context, o model.Organization) error {
	row := &organizationRow{ID: o.ID, Name: o.Name, City: o.City, Country: o.Country, Email: o.Email, Representative: o.Representative, Confirmed: o.Confirmed}
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update organization %d: %w", o.ID, err)
	}
	return affected(res, "organization", o.ID)
}

// CreatePerformer stores p.
func (s *SQLStore) CreatePerformer(ctx context.Context, p *model.Performer) error {
	if _, err := s.GetOrganization(ctx, p.OrganizationID); err != nil {
		return err
	}
	row := &performerRow{OrganizationID: p.OrganizationID, FirstName: p.FirstName, LastName: p.LastName, BirthDate: p.BirthDate}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert performer: %w", err)
	}
	p.ID = row.ID
	return nil
}

func (r performerRow) toModel() model.Performer {
	return model.Performer{ID: r.ID, OrganizationID: r.OrganizationID, FirstName: r.FirstName, LastName: r.LastName, BirthDate: r.BirthDate}
}

// GetPerformers returns the performers with ids, in order.
func (s *SQLStore) GetPerformers(ctx context.Context, ids []int64) ([]model.Performer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []performerRow
	if err := s.db.NewSelect().Model(&rows).Where("id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("get performers: %w", err)
	}
	byID := make(map[int64]performerRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]model.Performer, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, notFound("performer", id)
		}
		out = append(out, r.toModel())
	}
	return out, nil
}

// ListPerformers returns the organization's performers ordered by id.
func (s *SQLStore) ListPerformers(ctx context.Context, organizationID int64) ([]model.Performer, error) {
	var rows []performerRow
	if err := s.db.NewSelect().Model(&rows).Where("organization_id = ?", organizationID).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list performers: %w", err)
	}
	out := make([]model.Performer, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func insertLinks(ctx context.Context, tx bun.Tx, entryID int64, performers []int64) error {
	if len(performers) == 0 {
		return nil
	}
	links := make([]entryPerformerRow, len(performers))
	for i, p := range performers {
		links[i] = entryPerformerRow{EntryID: entryID, PerformerID: p, Position: i}
	}
	if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
		return fmt.Errorf("insert performer links: %w", err)
	}
	return nil
}

// CreateEntry stores e with its performer links.
func (s *SQLStore) CreateEntry(ctx context.Context, e *model.Entry) error {
	if _, err := s.GetEvent(ctx, e.EventID); err != nil {
		return err
	}
	row := entryFromModel(*e)
	row.ID = 0
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return insertLinks(ctx, tx, row.ID, e.PerformerIDs)
	})
	if err != nil {
		return err
	}
	e.ID = row.ID
	return nil
}

// UpdateEntry rewrites the entry and replaces its performer links.
func (s *SQLStore) UpdateEntry(ctx context.Context, e model.Entry) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(entryFromModel(e)).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("update entry %d: %w", e.ID, err)
		}
		if err := affected(res, "entry", e.ID); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*entryPerformerRow)(nil)).Where("entry_id = ?", e.ID).Exec(ctx); err != nil {
			return fmt.Errorf("clear performer links: %w", err)
		}
		return insertLinks(ctx, tx, e.ID, e.PerformerIDs)
	})
}

func deleteEntries(ctx context.Context, tx bun.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := tx.NewDelete().Model((*scoreRow)(nil)).Where("entry_id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
		return fmt.Errorf("delete scores: %w", err)
	}
	if _, err := tx.NewDelete().Model((*entryPerformerRow)(nil)).Where("entry_id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
		return fmt.Errorf("delete performer links: %w", err)
	}
	res, err := tx.NewDelete().Model((*entryRow)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && int(n) != len(ids) {
		return fmt.Errorf("entries %v: %w", ids, ErrNotFound)
	}
	return nil
}

// DeleteEntry removes the entry with its scores and links.
func (s *SQLStore) DeleteEntry(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return deleteEntries(ctx, tx, []int64{id})
	})
}

func (s *SQLStore) links(ctx context.Context, entryIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	var rows []entryPerformerRow
	err := s.db.NewSelect().Model(&rows).
		Where("entry_id IN (?)", bun.In(entryIDs)).
		Order("entry_id", "position").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list performer links: %w", err)
	}
	for _, r := range rows {
		out[r.EntryID] = append(out[r.EntryID], r.PerformerID)
	}
	return out, nil
}

// GetEntry returns the entry with id.
func (s *SQLStore) GetEntry(ctx context.Context, id int64) (model.Entry, error) {
	var row entryRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Entry{}, wrapNotFound(err, "entry", id)
	}
	links, err := s.links(ctx, []int64{id})
	if err != nil {
		return model.Entry{}, err
	}
	return row.toModel(links[id]), nil
}

// ListEntries returns the event's entries ordered by id.
func (s *SQLStore) ListEntries(ctx context.Context, eventID int64) ([]model.Entry, error) {
	var rows []entryRow
	if err := s.db.NewSelect().Model(&rows).Where("event_id = ?", eventID).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	links, err := s.links(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Entry, len(rows))
	for i, r := range rows {
		out[i] = r.toModel(links[r.ID])
	}
	return out, nil
}

// MergeEntries folds duplicates into primary atomically.
func (s *SQLStore) MergeEntries(ctx context.Context, primary int64, performerIDs []int64, duplicates []int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := tx.NewSelect().Model((*entryRow)(nil)).Where("id = ?", primary).Count(ctx)
		if err != nil {
			return fmt.Errorf("merge entries: %w", err)
		}
		if n == 0 {
			return notFound("entry", primary)
		}
		if err := deleteEntries(ctx, tx, duplicates); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*entryPerformerRow)(nil)).Where("entry_id = ?", primary).Exec(ctx); err != nil {
			return fmt.Errorf("clear performer links: %w", err)
		}
		return insertLinks(ctx, tx, primary, performerIDs)
	})
}

// CreateCeremony stores c.
func (s *SQLStore) CreateCeremony(ctx context.Context, c *model.Ceremony) error {
	if _, err := s.GetEvent(ctx, c.EventID); err != nil {
		return err
	}
	row := &ceremonyRow{EventID: c.EventID, Title: c.Title, Minutes: c.Minutes, AgeBracket: string(c.AgeBracket), DisplayOrder: c.DisplayOrder}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert ceremony: %w", err)
	}
	c.ID = row.ID
	return nil
}

// ListCeremonies returns the event's ceremonies ordered by id.
func (s *SQLStore) ListCeremonies(ctx context.Context, eventID int64) ([]model.Ceremony, error) {
	var rows []ceremonyRow
	if err := s.db.NewSelect().Model(&rows).Where("event_id = ?", eventID).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list ceremonies: %w", err)
	}
	out := make([]model.Ceremony, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// DeleteCeremony removes the ceremony with id.
func (s *SQLStore) DeleteCeremony(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*ceremonyRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete ceremony %d: %w", id, err)
	}
	return affected(res, "ceremony", id)
}

// ApplyOrdering writes a and status in one transaction.
func (s *SQLStore) ApplyOrdering(ctx context.Context, eventID int64, a startlist.Assignment, status model.StartListStatus) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for id, pos := range a.Entries {
			res, err := tx.NewUpdate().Model((*entryRow)(nil)).
				Set("display_order = ?", pos.DisplayOrder).
				Set("group_display_order = ?", pos.GroupDisplayOrder).
				Where("id = ? AND event_id = ?", id, eventID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("order entry %d: %w", id, err)
			}
			if err := affected(res, "entry", id); err != nil {
				return err
			}
		}
		for id, pos := range a.Ceremonies {
			res, err := tx.NewUpdate().Model((*ceremonyRow)(nil)).
				Set("display_order = ?", pos).
				Where("id = ? AND event_id = ?", id, eventID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("order ceremony %d: %w", id, err)
			}
			if err := affected(res, "ceremony", id); err != nil {
				return err
			}
		}
		res, err := tx.NewUpdate().Model((*eventRow)(nil)).
			Set("start_list = ?", string(status)).
			Where("id = ?", eventID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("set start list status: %w", err)
		}
		return affected(res, "event", eventID)
	})
}

// UpsertScores writes records keyed by (entry, judge). It selects then
// updates or inserts so the statement is the same on every dialect.
func (s *SQLStore) UpsertScores(ctx context.Context, records []model.ScoreRecord) error {
	now := time.Now().UTC()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, r := range records {
			row := &scoreRow{
				EntryID: r.EntryID, JudgeID: r.JudgeID,
				Technique: r.Technique, Composition: r.Composition, Image: r.Image, ShowValue: r.ShowValue,
				UpdatedAt: now,
			}
			var existing scoreRow
			err := tx.NewSelect().Model(&existing).
				Where("entry_id = ? AND judge_id = ?", r.EntryID, r.JudgeID).
				Scan(ctx)
			switch {
			case err == nil:
				row.ID = existing.ID
				if _, err := tx.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
					return fmt.Errorf("update score: %w", err)
				}
			case errors.Is(err, sql.ErrNoRows):
				n, err := tx.NewSelect().Model((*entryRow)(nil)).Where("id = ?", r.EntryID).Count(ctx)
				if err != nil {
					return fmt.Errorf("check entry: %w", err)
				}
				if n == 0 {
					return notFound("entry", r.EntryID)
				}
				if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
					if isUniqueViolation(err) {
						return fmt.Errorf("score %d/%d: %w", r.EntryID, r.JudgeID, ErrConflict)
					}
					return fmt.Errorf("insert score: %w", err)
				}
			default:
				return fmt.Errorf("load score: %w", err)
			}
		}
		return nil
	})
}

func scoreModels(rows []scoreRow) []model.ScoreRecord {
	out := make([]model.ScoreRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out
}

// ListScores returns every score of the event's entries ordered by id.
func (s *SQLStore) ListScores(ctx context.Context, eventID int64) ([]model.ScoreRecord, error) {
	var rows []scoreRow
	entryIDs := s.db.NewSelect().Model((*entryRow)(nil)).Column("id").Where("event_id = ?", eventID)
	if err := s.db.NewSelect().Model(&rows).Where("entry_id IN (?)", entryIDs).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scoreModels(rows), nil
}

// ListEntryScores returns the entry's scores ordered by id.
func (s *SQLStore) ListEntryScores(ctx context.Context, entryID int64) ([]model.ScoreRecord, error) {
	var rows []scoreRow
	if err := s.db.NewSelect().Model(&rows).Where("entry_id = ?", entryID).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list entry scores: %w", err)
	}
	return scoreModels(rows), nil
}

// CreateJudge stores j; usernames are unique.
func (s *SQLStore) CreateJudge(ctx context.Context, j *model.Judge) error {
	row := &judgeRow{EventID: j.EventID, FirstName: j.FirstName, LastName: j.LastName, Username: j.Username, Cursor: j.Cursor}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("judge %q: %w", j.Username, ErrConflict)
		}
		return fmt.Errorf("insert judge: %w", err)
	}
	j.ID = row.ID
	return nil
}

// GetJudge returns the judge with id.
func (s *SQLStore) GetJudge(ctx context.Context, id int64) (model.Judge, error) {
	var row judgeRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Judge{}, wrapNotFound(err, "judge", id)
	}
	return row.toModel(), nil
}

// ListJudges returns the event's judges ordered by id.
func (s *SQLStore) ListJudges(ctx context.Context, eventID int64) ([]model.Judge, error) {
	var rows []judgeRow
	if err := s.db.NewSelect().Model(&rows).Where("event_id = ?", eventID).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list judges: %w", err)
	}
	out := make([]model.Judge, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// SetJudgeCursor stores the judge's category position.
func (s *SQLStore) SetJudgeCursor(ctx context.Context, id int64, cursor int) error {
	res, err := s.db.NewUpdate().Model((*judgeRow)(nil)).
		Set("category_cursor = ?", cursor).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set judge cursor: %w", err)
	}
	return affected(res, "judge", id)
}

// DeleteJudge removes the judge. Its scores stay with the entries.
func (s *SQLStore) DeleteJudge(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*judgeRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete judge %d: %w", id, err)
	}
	return affected(res, "judge", id)
}

// SetHighlight stores the event's highlight pointer.
func (s *SQLStore) SetHighlight(ctx context.Context, eventID int64, key string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := &playbackRow{EventID: eventID, HighlightKey: key}
		res, err := tx.NewUpdate().Model(row).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("update highlight: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert highlight: %w", err)
		}
		return nil
	})
}

// GetHighlight returns the event's highlight pointer, empty when unset.
func (s *SQLStore) GetHighlight(ctx context.Context, eventID int64) (string, error) {
	var row playbackRow
	err := s.db.NewSelect().Model(&row).Where("event_id = ?", eventID).Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("get highlight: %w", err)
	}
	return row.HighlightKey, nil
}

// DeleteDiplomas removes and returns the diplomas of one category.
func (s *SQLStore) DeleteDiplomas(ctx context.Context, eventID int64, label string) ([]model.Diploma, error) {
	var out []model.Diploma
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var rows []diplomaRow
		if err := tx.NewSelect().Model(&rows).
			Where("event_id = ? AND category_label = ?", eventID, label).
			Order("id").
			Scan(ctx); err != nil {
			return fmt.Errorf("list diplomas: %w", err)
		}
		if _, err := tx.NewDelete().Model((*diplomaRow)(nil)).
			Where("event_id = ? AND category_label = ?", eventID, label).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete diplomas: %w", err)
		}
		out = make([]model.Diploma, len(rows))
		for i, r := range rows {
			out[i] = r.toModel()
		}
		return nil
	})
	return out, err
}

// CreateDiploma stores d.
func (s *SQLStore) CreateDiploma(ctx context.Context, d *model.Diploma) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	row := &diplomaRow{
		EventID: d.EventID, EntryID: d.EntryID, PerformerID: d.PerformerID,
		CategoryLabel: d.CategoryLabel, Rank: d.Rank, Artifact: d.Artifact, CreatedAt: d.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert diploma: %w", err)
	}
	d.ID = row.ID
	return nil
}

// ListDiplomas returns the event's diplomas ordered by label and rank.
func (s *SQLStore) ListDiplomas(ctx context.Context, eventID int64, label string) ([]model.Diploma, error) {
	var rows []diplomaRow
	q := s.db.NewSelect().Model(&rows).Where("event_id = ?", eventID)
	if label != "" {
		q = q.Where("category_label = ?", label)
	}
	if err := q.Order("category_label", "placement", "id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list diplomas: %w", err)
	}
	out := make([]model.Diploma, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}
