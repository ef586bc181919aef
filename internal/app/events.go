package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/pkg/logger"
)

// EventInput holds the editable fields of an event.
type EventInput struct {
	Name     string
	Location string
	City     string
	Date     time.Time
	// StartTime is "HH:MM" or empty.
	StartTime string
}

func (in EventInput) validate(op string) error {
	if strings.TrimSpace(in.Name) == "" {
		return errs.Validation(op, "event name is required")
	}
	if in.StartTime != "" {
		if _, err := time.Parse("15:04", in.StartTime); err != nil {
			return errs.Validation(op, "start time %q is not HH:MM", in.StartTime)
		}
	}
	return nil
}

// CreateEvent creates an event with a draft start list and closed windows.
func (s *Service) CreateEvent(ctx context.Context, in EventInput) (_ model.Event, err error) {
	ctx, span := s.span(ctx, "CreateEvent")
	defer s.end(span, &err)

	if err := in.validate("create event"); err != nil {
		return model.Event{}, err
	}
	ev := model.Event{
		Name: in.Name, Location: in.Location, City: in.City, Date: in.Date, StartTime: in.StartTime,
		StartList: model.StartListDraft,
	}
	if err := s.store.CreateEvent(ctx, &ev); err != nil {
		return model.Event{}, storeErr("create event", err)
	}
	s.logger.Info(ctx, "event created", logger.Int64("event_id", ev.ID), logger.String("name", ev.Name))
	return ev, nil
}

// GetEvent returns one event.
func (s *Service) GetEvent(ctx context.Context, eventID int64) (_ model.Event, err error) {
	ctx, span := s.span(ctx, "GetEvent", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	return s.loadEvent(ctx, "get event", eventID)
}

// ListEvents returns every event.
func (s *Service) ListEvents(ctx context.Context) (_ []model.Event, err error) {
	ctx, span := s.span(ctx, "ListEvents")
	defer s.end(span, &err)
	list, err := s.store.ListEvents(ctx)
	return list, storeErr("list events", err)
}

// UpdateEvent rewrites the descriptive fields of an event.
func (s *Service) UpdateEvent(ctx context.Context, eventID int64, in EventInput) (_ model.Event, err error) {
	ctx, span := s.span(ctx, "UpdateEvent", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	if err := in.validate("update event"); err != nil {
		return model.Event{}, err
	}
	ev, err := s.loadEvent(ctx, "update event", eventID)
	if err != nil {
		return model.Event{}, err
	}
	ev.Name, ev.Location, ev.City, ev.Date, ev.StartTime = in.Name, in.Location, in.City, in.Date, in.StartTime
	if err := s.store.UpdateEvent(ctx, ev); err != nil {
		return model.Event{}, storeErr("update event", err)
	}
	s.logger.Info(ctx, "event updated", logger.Int64("event_id", ev.ID))
	return ev, nil
}

// Windows toggles the registration and music windows; nil leaves a flag as
// it is.
type Windows struct {
	Registration *bool
	Music        *bool
}

// SetWindows opens or closes the event's windows.
func (s *Service) SetWindows(ctx context.Context, eventID int64, w Windows) (_ model.Event, err error) {
	ctx, span := s.span(ctx, "SetWindows", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	ev, err := s.loadEvent(ctx, "set windows", eventID)
	if err != nil {
		return model.Event{}, err
	}
	if w.Registration != nil {
		ev.RegistrationOpen = *w.Registration
	}
	if w.Music != nil {
		ev.MusicOpen = *w.Music
	}
	if err := s.store.UpdateEvent(ctx, ev); err != nil {
		return model.Event{}, storeErr("set windows", err)
	}
	s.logger.Info(ctx, "event windows changed",
		logger.Int64("event_id", ev.ID),
		logger.Bool("registration_open", ev.RegistrationOpen),
		logger.Bool("music_open", ev.MusicOpen),
	)
	return ev, nil
}

// PublishResults shows or hides the awards to non-admins.
func (s *Service) PublishResults(ctx context.Context, eventID int64, published bool) (_ model.Event, err error) {
	ctx, span := s.span(ctx, "PublishResults", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	ev, err := s.loadEvent(ctx, "publish results", eventID)
	if err != nil {
		return model.Event{}, err
	}
	ev.ResultsPublished = published
	if err := s.store.UpdateEvent(ctx, ev); err != nil {
		return model.Event{}, storeErr("publish results", err)
	}
	s.logger.Info(ctx, "results publication changed", logger.Int64("event_id", ev.ID), logger.Bool("published", published))
	return ev, nil
}

// DeleteEvent removes an event with all its entries, scores and ceremonies.
func (s *Service) DeleteEvent(ctx context.Context, eventID int64) (err error) {
	ctx, span := s.span(ctx, "DeleteEvent", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return storeErr("delete event", err)
	}
	s.logger.Info(ctx, "event deleted", logger.Int64("event_id", eventID))
	return nil
}

// AddStyle adds a style to the event. The name is kept verbatim: it takes
// part in category keys, which compare exactly.
func (s *Service) AddStyle(ctx context.Context, eventID int64, name string) (_ model.Style, err error) {
	ctx, span := s.span(ctx, "AddStyle", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	if name == "" {
		return model.Style{}, errs.Validation("add style", "style name is required")
	}
	if strings.Contains(name, "|") {
		return model.Style{}, errs.Validation("add style", "style name %q must not contain '|'", name)
	}
	if _, err := s.loadEvent(ctx, "add style", eventID); err != nil {
		return model.Style{}, err
	}
	st := model.Style{EventID: eventID, Name: name}
	if err := s.store.CreateStyle(ctx, &st); err != nil {
		return model.Style{}, storeErr("add style", err)
	}
	return st, nil
}

// ListStyles returns the event's styles.
func (s *Service) ListStyles(ctx context.Context, eventID int64) (_ []model.Style, err error) {
	ctx, span := s.span(ctx, "ListStyles", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	list, err := s.store.ListStyles(ctx, eventID)
	return list, storeErr("list styles", err)
}

// OrganizationInput holds the editable fields of an organization.
type OrganizationInput struct {
	Name           string
	City           string
	Country        string
	Email          string
	Representative string
}

// CreateOrganization registers an unconfirmed organization.
func (s *Service) CreateOrganization(ctx context.Context, in OrganizationInput) (_ model.Organization, err error) {
	ctx, span := s.span(ctx, "CreateOrganization")
	defer s.end(span, &err)

	if strings.TrimSpace(in.Name) == "" {
		return model.Organization{}, errs.Validation("create organization", "organization name is required")
	}
	o := model.Organization{Name: in.Name, City: in.City, Country: in.Country, Email: in.Email, Representative: in.Representative}
	if err := s.store.CreateOrganization(ctx, &o); err != nil {
		return model.Organization{}, storeErr("create organization", err)
	}
	s.logger.Info(ctx, "organization registered", logger.Int64("organization_id", o.ID))
	return o, nil
}

// ConfirmOrganization approves an organization for notifications.
func (s *Service) ConfirmOrganization(ctx context.Context, orgID int64, confirmed bool) (_ model.Organization, err error) {
	ctx, span := s.span(ctx, "ConfirmOrganization", attribute.Int64("organization.id", orgID))
	defer s.end(span, &err)

	o, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return model.Organization{}, storeErr("confirm organization", err)
	}
	o.Confirmed = confirmed
	if err := s.store.UpdateOrganization(ctx, o); err != nil {
		return model.Organization{}, storeErr("confirm organization", err)
	}
	s.logger.Info(ctx, "organization confirmation changed", logger.Int64("organization_id", o.ID), logger.Bool("confirmed", confirmed))
	return o, nil
}

// ListOrganizations returns every organization.
func (s *Service) ListOrganizations(ctx context.Context) (_ []model.Organization, err error) {
	ctx, span := s.span(ctx, "ListOrganizations")
	defer s.end(span, &err)
	list, err := s.store.ListOrganizations(ctx)
	return list, storeErr("list organizations", err)
}

// scope resolves the organization an actor may act for. Members always act
// for their own organization; admins name one.
func scope(op string, actor Actor, requested int64) (int64, error) {
	if actor.Admin {
		if requested == 0 {
			return 0, errs.Validation(op, "organization is required")
		}
		return requested, nil
	}
	if actor.OrganizationID == 0 {
		return 0, errs.NotFound(op, "organization not found")
	}
	return actor.OrganizationID, nil
}

// PerformerInput holds a new performer.
type PerformerInput struct {
	OrganizationID int64
	FirstName      string
	LastName       string
	BirthDate      time.Time
}

// AddPerformer adds a performer to the actor's organization.
func (s *Service) AddPerformer(ctx context.Context, actor Actor, in PerformerInput) (_ model.Performer, err error) {
	ctx, span := s.span(ctx, "AddPerformer")
	defer s.end(span, &err)

	orgID, err := scope("add performer", actor, in.OrganizationID)
	if err != nil {
		return model.Performer{}, err
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return model.Performer{}, errs.Validation("add performer", "first and last name are required")
	}
	if !in.BirthDate.IsZero() && in.BirthDate.After(time.Now()) {
		return model.Performer{}, errs.Validation("add performer", "birth date %s is in the future", in.BirthDate.Format(time.DateOnly))
	}
	p := model.Performer{OrganizationID: orgID, FirstName: in.FirstName, LastName: in.LastName, BirthDate: in.BirthDate}
	if err := s.store.CreatePerformer(ctx, &p); err != nil {
		return model.Performer{}, storeErr("add performer", err)
	}
	return p, nil
}

// ListPerformers returns an organization's roster.
func (s *Service) ListPerformers(ctx context.Context, actor Actor, orgID int64) (_ []model.Performer, err error) {
	ctx, span := s.span(ctx, "ListPerformers")
	defer s.end(span, &err)

	orgID, err = scope("list performers", actor, orgID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListPerformers(ctx, orgID)
	return list, storeErr("list performers", err)
}

// CeremonyInput holds a new ceremony.
type CeremonyInput struct {
	Title      string
	Minutes    int
	AgeBracket category.AgeBracket
}

// AddCeremony adds an unplaced ceremony to the event.
func (s *Service) AddCeremony(ctx context.Context, eventID int64, in CeremonyInput) (_ model.Ceremony, err error) {
	ctx, span := s.span(ctx, "AddCeremony", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)

	if strings.TrimSpace(in.Title) == "" {
		return model.Ceremony{}, errs.Validation("add ceremony", "ceremony title is required")
	}
	if in.Minutes <= 0 {
		return model.Ceremony{}, errs.Validation("add ceremony", "ceremony duration must be positive, got %d", in.Minutes)
	}
	if in.AgeBracket != "" && !in.AgeBracket.Valid() {
		return model.Ceremony{}, errs.Validation("add ceremony", "unknown age bracket %q", in.AgeBracket)
	}
	c := model.Ceremony{EventID: eventID, Title: in.Title, Minutes: in.Minutes, AgeBracket: in.AgeBracket}
	if err := s.store.CreateCeremony(ctx, &c); err != nil {
		return model.Ceremony{}, storeErr("add ceremony", err)
	}
	s.logger.Info(ctx, "ceremony added", logger.Int64("event_id", eventID), logger.Int64("ceremony_id", c.ID))
	return c, nil
}

// ListCeremonies returns the event's ceremonies.
func (s *Service) ListCeremonies(ctx context.Context, eventID int64) (_ []model.Ceremony, err error) {
	ctx, span := s.span(ctx, "ListCeremonies", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	list, err := s.store.ListCeremonies(ctx, eventID)
	return list, storeErr("list ceremonies", err)
}

// DeleteCeremony removes a ceremony.
func (s *Service) DeleteCeremony(ctx context.Context, ceremonyID int64) (err error) {
	ctx, span := s.span(ctx, "DeleteCeremony", attribute.Int64("ceremony.id", ceremonyID))
	defer s.end(span, &err)
	if err := s.store.DeleteCeremony(ctx, ceremonyID); err != nil {
		return storeErr("delete ceremony", err)
	}
	s.logger.Info(ctx, "ceremony deleted", logger.Int64("ceremony_id", ceremonyID))
	return nil
}
