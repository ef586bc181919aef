package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) listJudges(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := s.deps.ListJudges(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapViews(list, newJudgeView))
}

func (s *Server) createJudge(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req judgeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	j, err := s.deps.CreateJudge(c.Request().Context(), id, req.FirstName, req.LastName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newJudgeView(j))
}

func (s *Server) deleteJudge(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.deps.DeleteJudge(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) judgeSheet(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	sh, err := s.deps.JudgeSheet(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSheetView(sh))
}

func (s *Server) judgeAct(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req actRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := req.submission()
	if err != nil {
		return err
	}
	sh, err := s.deps.JudgeAct(c.Request().Context(), id, sub)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSheetView(sh))
}
