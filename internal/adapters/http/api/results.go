package api

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

func (s *Server) awards(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := s.deps.Awards(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, newAwardCategoryView))
}

func (s *Server) breakdown(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	b, err := s.deps.ScoreBreakdown(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newBreakdownView(b))
}

func (s *Server) generateDiplomas(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req diplomaRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rep, err := s.deps.GenerateDiplomas(c.Request().Context(), id, req.Category)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newDiplomaReportView(rep))
}

func (s *Server) listDiplomas(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := s.deps.ListDiplomas(c.Request().Context(), id, c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, newDiplomaView))
}

func (s *Server) artifact(c echo.Context) error {
	name := c.Param("name")
	data, err := s.deps.Artifact(c.Request().Context(), name)
	if err != nil {
		return err
	}
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, ct, data)
}

func (s *Server) notify(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req notifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	n, err := s.deps.NotifyOrganizations(c.Request().Context(), id, req.OrganizationIDs, req.Subject, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"sent": n})
}
