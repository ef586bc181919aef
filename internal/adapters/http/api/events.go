package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
)

func (s *Server) listEvents(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := s.deps.ListEvents(ctx)
	if err != nil {
		return err
	}
	out := make([]eventView, 0, len(list))
	for _, ev := range list {
		v, err := s.eventView(ctx, ev)
		if err != nil {
			return err
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) eventView(ctx context.Context, ev model.Event) (eventView, error) {
	v := newEventView(ev)
	has, err := s.deps.HasJudges(ctx, ev.ID)
	if err != nil {
		return eventView{}, err
	}
	v.HasJudges = has
	return v, nil
}

func (s *Server) createEvent(c echo.Context) error {
	var req eventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	ev, err := s.deps.CreateEvent(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newEventView(ev))
}

func (s *Server) getEvent(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ev, err := s.deps.GetEvent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	v, err := s.eventView(c.Request().Context(), ev)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) updateEvent(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req eventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	ev, err := s.deps.UpdateEvent(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newEventView(ev))
}

func (s *Server) deleteEvent(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.deps.DeleteEvent(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) setWindows(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req windowsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ev, err := s.deps.SetWindows(c.Request().Context(), id, service.Windows{Registration: req.Registration, Music: req.Music})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newEventView(ev))
}

func (s *Server) publishResults(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req resultsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ev, err := s.deps.PublishResults(c.Request().Context(), id, req.Published)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newEventView(ev))
}

func (s *Server) listStyles(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := s.deps.ListStyles(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, func(st model.Style) styleView {
		return styleView{ID: st.ID, EventID: st.EventID, Name: st.Name}
	}))
}

func (s *Server) addStyle(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req styleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	st, err := s.deps.AddStyle(c.Request().Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, styleView{ID: st.ID, EventID: st.EventID, Name: st.Name})
}

func (s *Server) listCeremonies(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := s.deps.ListCeremonies(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, newCeremonyView))
}

func (s *Server) addCeremony(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req ceremonyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cer, err := s.deps.AddCeremony(c.Request().Context(), id, service.CeremonyInput{
		Title: req.Title, Minutes: req.Minutes, AgeBracket: category.AgeBracket(req.AgeBracket),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newCeremonyView(cer))
}

func (s *Server) deleteCeremony(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.deps.DeleteCeremony(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listOrganizations(c echo.Context) error {
	list, err := s.deps.ListOrganizations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, newOrganizationView))
}

func (s *Server) createOrganization(c echo.Context) error {
	var req organizationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := s.deps.CreateOrganization(c.Request().Context(), service.OrganizationInput{
		Name: req.Name, City: req.City, Country: req.Country, Email: req.Email, Representative: req.Representative,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newOrganizationView(o))
}

func (s *Server) confirmOrganization(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req confirmRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := s.deps.ConfirmOrganization(c.Request().Context(), id, req.Confirmed)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrganizationView(o))
}

func (s *Server) listPerformers(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := s.deps.ListPerformers(c.Request().Context(), scopedActor(c, id), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, newPerformerView))
}

func (s *Server) addPerformer(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req performerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	birth, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		return err
	}
	p, err := s.deps.AddPerformer(c.Request().Context(), scopedActor(c, id), service.PerformerInput{
		OrganizationID: id, FirstName: req.FirstName, LastName: req.LastName, BirthDate: birth,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newPerformerView(p))
}

// scopedActor hides another organization's roster: a member addressing an
// organization other than its own acts without one and gets not-found.
func scopedActor(c echo.Context, orgID int64) service.Actor {
	a := actorFrom(c)
	if !a.Admin && a.OrganizationID != orgID {
		return service.Actor{}
	}
	return a
}
