package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/pkg/logger"
)

// Sentinel kinds for transport errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("forbidden")
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusOf maps an error to its HTTP status and machine-readable code.
func statusOf(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code, codeFor(he.Code)
	case errors.Is(err, ErrBadRequest), errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrState):
		return http.StatusConflict, "state_error"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func codeFor(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case status >= http.StatusInternalServerError:
		return "internal_error"
	default:
		return "bad_request"
	}
}

// handleError writes every handler error as {code, message}. Internal
// failures are logged and their text is not echoed back.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, code := statusOf(err)
	msg := errs.Message(err)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", logger.String("path", c.Path()), logger.Error(err))
		msg = http.StatusText(status)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{Code: code, Message: msg})
	}
	if err != nil {
		s.logger.Error(c.Request().Context(), "write error response", logger.Error(err))
	}
}

type requestValidator struct {
	v *validator.Validate
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs struct tags and reports every failing field by its JSON
// name.
func (r *requestValidator) Validate(i any) error {
	err := r.v.Struct(i)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	parts := make([]string, 0, len(ves))
	for _, fe := range ves {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return errs.Validation("request", "%s", strings.Join(parts, "; "))
}
