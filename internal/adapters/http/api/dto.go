package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/judging"
)

// bind decodes the body into req and runs its validation tags.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: malformed request body", ErrBadRequest)
	}
	return c.Validate(req)
}

func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("request", "invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errs.Validation("request", "%s %q is not YYYY-MM-DD", field, raw)
	}
	return t, nil
}

type eventRequest struct {
	Name      string `json:"name" validate:"required"`
	Location  string `json:"location"`
	City      string `json:"city"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"omitempty,datetime=15:04"`
}

func (r eventRequest) input() (service.EventInput, error) {
	date, err := parseDate("date", r.Date)
	if err != nil {
		return service.EventInput{}, err
	}
	return service.EventInput{Name: r.Name, Location: r.Location, City: r.City, Date: date, StartTime: r.StartTime}, nil
}

type windowsRequest struct {
	Registration *bool `json:"registration_open"`
	Music        *bool `json:"music_open"`
}

type resultsRequest struct {
	Published bool `json:"published"`
}

type styleRequest struct {
	Name string `json:"name" validate:"required"`
}

type ceremonyRequest struct {
	Title      string `json:"title" validate:"required"`
	Minutes    int    `json:"minutes" validate:"gt=0"`
	AgeBracket string `json:"age_bracket"`
}

type organizationRequest struct {
	Name           string `json:"name" validate:"required"`
	City           string `json:"city"`
	Country        string `json:"country"`
	Email          string `json:"email" validate:"omitempty,email"`
	Representative string `json:"representative"`
}

type confirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

type performerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

type entryRequest struct {
	OrganizationID int64   `json:"organization_id" validate:"gte=0"`
	StyleID        int64   `json:"style_id" validate:"required,gt=0"`
	GroupSize      string  `json:"group_size" validate:"required"`
	Difficulty     string  `json:"difficulty" validate:"required"`
	Choreographer  string  `json:"choreographer"`
	Choreography   string  `json:"choreography"`
	GroupName      string  `json:"group_name"`
	PerformerIDs   []int64 `json:"performer_ids" validate:"required,min=1,dive,gt=0"`
	AudioSeconds   *int    `json:"audio_seconds" validate:"omitempty,gt=0"`
}

func (r entryRequest) input() service.EntryInput {
	return service.EntryInput{
		OrganizationID: r.OrganizationID,
		StyleID:        r.StyleID,
		GroupSize:      category.GroupSize(r.GroupSize),
		Difficulty:     category.Difficulty(r.Difficulty),
		Choreographer:  r.Choreographer,
		Choreography:   r.Choreography,
		GroupName:      r.GroupName,
		PerformerIDs:   r.PerformerIDs,
		AudioSeconds:   r.AudioSeconds,
	}
}

type audioRequest struct {
	Seconds int `json:"seconds" validate:"gt=0"`
}

type orderRequest struct {
	Order []string `json:"order" validate:"required,min=1"`
}

type publishRequest struct {
	Order []string `json:"order"`
}

type highlightRequest struct {
	Key string `json:"key"`
}

type judgeRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
}

type marksRequest struct {
	Technique   *float64 `json:"technique" validate:"omitempty,gte=0,lte=99.99"`
	Composition *float64 `json:"composition" validate:"omitempty,gte=0,lte=99.99"`
	Image       *float64 `json:"image" validate:"omitempty,gte=0,lte=99.99"`
	ShowValue   *float64 `json:"show_value" validate:"omitempty,gte=0,lte=99.99"`
}

// actRequest is one judge request. Marks are keyed by entry id.
type actRequest struct {
	Submit bool                    `json:"submit"`
	Action string                  `json:"action"`
	Marks  map[string]marksRequest `json:"marks" validate:"dive"`
}

func (r actRequest) submission() (service.Submission, error) {
	action, err := judging.ParseAction(r.Action)
	if err != nil {
		return service.Submission{}, err
	}
	sub := service.Submission{Submit: r.Submit, Action: action}
	if len(r.Marks) > 0 {
		sub.Marks = make(map[int64]judging.Marks, len(r.Marks))
	}
	for raw, m := range r.Marks {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return service.Submission{}, errs.Validation("request", "invalid entry id %q", raw)
		}
		sub.Marks[id] = judging.Marks{Technique: m.Technique, Composition: m.Composition, Image: m.Image, ShowValue: m.ShowValue}
	}
	return sub, nil
}

type diplomaRequest struct {
	Category string `json:"category" validate:"required"`
}

type notifyRequest struct {
	OrganizationIDs []int64 `json:"organization_ids" validate:"dive,gt=0"`
	Subject         string  `json:"subject"`
	Body            string  `json:"body"`
}
