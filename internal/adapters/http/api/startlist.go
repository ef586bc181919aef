package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	service "github.com/okian/pirouette/internal/app"
)

func orderResponse(r service.OrderResult) orderView {
	return orderView{Status: string(r.Status), Slots: r.Slots}
}

func (s *Server) defaultOrder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	res, err := s.deps.DefaultOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse(res))
}

func (s *Server) saveOrder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req orderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := s.deps.SaveOrder(c.Request().Context(), id, req.Order)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse(res))
}

func (s *Server) publish(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req publishRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := s.deps.Publish(c.Request().Context(), id, req.Order)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse(res))
}

func (s *Server) unpublish(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	res, err := s.deps.Unpublish(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse(res))
}

func (s *Server) timeline(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	tl, err := s.deps.Timeline(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTimelineView(tl))
}

func (s *Server) getHighlight(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	key, err := s.deps.GetHighlight(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, highlightRequest{Key: key})
}

func (s *Server) setHighlight(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req highlightRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.deps.SetHighlight(c.Request().Context(), id, req.Key); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}
