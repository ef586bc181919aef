package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/pirouette/internal/adapters/notify"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

// NotifyOrganizations sends one message per confirmed organization with an
// email address. An empty orgIDs addresses every organization. Empty
// subject or body announce the event. It returns how many sends succeeded.
func (s *Service) NotifyOrganizations(ctx context.Context, eventID int64, orgIDs []int64, subject, body string) (_ int, err error) {
	ctx, span := s.span(ctx, "NotifyOrganizations", attribute.Int64("event.id", eventID))
	defer s.end(span, &err)
	const op = "notify organizations"

	ev, err := s.loadEvent(ctx, op, eventID)
	if err != nil {
		return 0, err
	}
	var orgs []model.Organization
	if len(orgIDs) == 0 {
		if orgs, err = s.store.ListOrganizations(ctx); err != nil {
			return 0, storeErr(op, err)
		}
	} else {
		for _, id := range orgIDs {
			o, err := s.store.GetOrganization(ctx, id)
			if err != nil {
				return 0, storeErr(op, err)
			}
			orgs = append(orgs, o)
		}
	}

	if subject == "" {
		subject = ev.Name
	}
	if body == "" {
		body = fmt.Sprintf("You are invited to %s", ev.Name)
		if ev.City != "" {
			body += " in " + ev.City
		}
		if !ev.Date.IsZero() {
			body += " on " + ev.Date.Format("2 January 2006")
		}
		body += "."
	}

	sent := 0
	for _, o := range orgs {
		if !o.Confirmed || o.Email == "" {
			metrics.RecordNotification("skipped")
			continue
		}
		m := notify.Message{ID: uuid.NewString(), EventID: eventID, To: o.Email, Subject: subject, Body: body}
		if err := s.sender.Send(ctx, m); err != nil {
			metrics.RecordNotification("failed")
			s.logger.Warn(ctx, "notification failed",
				logger.Int64("organization_id", o.ID),
				logger.String("to", o.Email),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordNotification("sent")
		sent++
	}
	s.logger.Info(ctx, "organizations notified", logger.Int64("event_id", eventID), logger.Int("sent", sent))
	return sent, nil
}
