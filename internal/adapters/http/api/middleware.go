package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/pkg/metrics"
)

// Identity headers. Authentication happens in front of this service; the
// proxy forwards who the caller is.
const (
	HeaderOrganization = "X-Organization-ID"
	HeaderRole         = "X-Viewer-Role"
	RoleAdmin          = "admin"

	actorKey = "actor"
)

// MetricsMiddleware records request count and latency by route, method and
// status. Handler errors are rendered here so the recorded status is the
// one sent.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			durationMs := float64(time.Since(start).Microseconds()) / 1000
			metrics.RecordHTTPRequest(route, c.Request().Method, strconv.Itoa(c.Response().Status), durationMs)
			return nil
		}
	}
}

// Identity resolves the caller from the identity headers. A malformed
// organization id is a bad request; no headers make an anonymous viewer.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var actor service.Actor
			if strings.EqualFold(c.Request().Header.Get(HeaderRole), RoleAdmin) {
				actor.Admin = true
			}
			if raw := c.Request().Header.Get(HeaderOrganization); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("%w: invalid %s header", ErrBadRequest, HeaderOrganization)
				}
				actor.OrganizationID = id
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !actorFrom(c).Admin {
				return fmt.Errorf("%w: admin role required", ErrForbidden)
			}
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) service.Actor {
	a, _ := c.Get(actorKey).(service.Actor)
	return a
}
