package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
)

func (s *Server) listEntries(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := s.deps.ListEntries(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, newEntryView))
}

func (s *Server) registerEntry(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req entryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := s.deps.RegisterEntry(c.Request().Context(), actorFrom(c), id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newEntryView(e))
}

func (s *Server) getEntry(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	e, err := s.deps.GetEntry(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newEntryView(e))
}

func (s *Server) editEntry(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req entryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := s.deps.EditEntry(c.Request().Context(), actorFrom(c), id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newEntryView(e))
}

func (s *Server) deleteEntry(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.deps.DeleteEntry(c.Request().Context(), actorFrom(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) setAudio(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req audioRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := s.deps.SetAudio(c.Request().Context(), actorFrom(c), id, req.Seconds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newEntryView(e))
}

func (s *Server) mergeEntries(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	n, err := s.deps.MergeDuplicates(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"merged": n})
}

func (s *Server) summary(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	sum, err := s.deps.Summarize(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryView{
		Organizations: mapViews(sum.Organizations, func(o service.OrganizationSummary) summaryRowView {
			return newSummaryRow(o, true)
		}),
		Totals: newSummaryRow(sum.Totals, false),
	})
}

func (s *Server) categoryLint(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	distance := 0
	if raw := c.QueryParam("distance"); raw != "" {
		if distance, err = strconv.Atoi(raw); err != nil || distance < 0 {
			return errs.Validation("request", "invalid distance %q", raw)
		}
	}
	found, err := s.deps.CategoryLint(c.Request().Context(), id, distance)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(found, func(sim category.Similar) similarView {
		return similarView{A: newKeyView(sim.A), B: newKeyView(sim.B), Distance: sim.Distance}
	}))
}
