// Package api exposes the competition service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/category"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/internal/domain/scoring"
	"github.com/okian/pirouette/internal/domain/startlist"
	"github.com/okian/pirouette/pkg/logger"
	"github.com/okian/pirouette/pkg/metrics"
)

// Dependencies required by HTTP handlers. *service.Service implements it;
// tests may substitute their own.
type Dependencies interface {
	CreateEvent(ctx context.Context, in service.EventInput) (model.Event, error)
	GetEvent(ctx context.Context, eventID int64) (model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	HasJudges(ctx context.Context, eventID int64) (bool, error)
	UpdateEvent(ctx context.Context, eventID int64, in service.EventInput) (model.Event, error)
	DeleteEvent(ctx context.Context, eventID int64) error
	SetWindows(ctx context.Context, eventID int64, w service.Windows) (model.Event, error)
	PublishResults(ctx context.Context, eventID int64, published bool) (model.Event, error)

	AddStyle(ctx context.Context, eventID int64, name string) (model.Style, error)
	ListStyles(ctx context.Context, eventID int64) ([]model.Style, error)
	AddCeremony(ctx context.Context, eventID int64, in service.CeremonyInput) (model.Ceremony, error)
	ListCeremonies(ctx context.Context, eventID int64) ([]model.Ceremony, error)
	DeleteCeremony(ctx context.Context, ceremonyID int64) error

	CreateOrganization(ctx context.Context, in service.OrganizationInput) (model.Organization, error)
	ConfirmOrganization(ctx context.Context, orgID int64, confirmed bool) (model.Organization, error)
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	AddPerformer(ctx context.Context, actor service.Actor, in service.PerformerInput) (model.Performer, error)
	ListPerformers(ctx context.Context, actor service.Actor, orgID int64) ([]model.Performer, error)

	RegisterEntry(ctx context.Context, actor service.Actor, eventID int64, in service.EntryInput) (model.Entry, error)
	EditEntry(ctx context.Context, actor service.Actor, entryID int64, in service.EntryInput) (model.Entry, error)
	DeleteEntry(ctx context.Context, actor service.Actor, entryID int64) error
	SetAudio(ctx context.Context, actor service.Actor, entryID int64, seconds int) (model.Entry, error)
	GetEntry(ctx context.Context, actor service.Actor, entryID int64) (model.Entry, error)
	ListEntries(ctx context.Context, actor service.Actor, eventID int64) ([]model.Entry, error)
	MergeDuplicates(ctx context.Context, eventID int64) (int, error)
	Summarize(ctx context.Context, eventID int64) (service.Summary, error)
	CategoryLint(ctx context.Context, eventID int64, maxDistance int) ([]category.Similar, error)

	DefaultOrder(ctx context.Context, eventID int64) (service.OrderResult, error)
	SaveOrder(ctx context.Context, eventID int64, ids []string) (service.OrderResult, error)
	Publish(ctx context.Context, eventID int64, ids []string) (service.OrderResult, error)
	Unpublish(ctx context.Context, eventID int64) (service.OrderResult, error)
	Timeline(ctx context.Context, actor service.Actor, eventID int64) (startlist.Timeline, error)
	SetHighlight(ctx context.Context, eventID int64, key string) error
	GetHighlight(ctx context.Context, eventID int64) (string, error)

	CreateJudge(ctx context.Context, eventID int64, firstName, lastName string) (model.Judge, error)
	ListJudges(ctx context.Context, eventID int64) ([]model.Judge, error)
	DeleteJudge(ctx context.Context, judgeID int64) error
	JudgeSheet(ctx context.Context, judgeID int64) (service.Sheet, error)
	JudgeAct(ctx context.Context, judgeID int64, sub service.Submission) (service.Sheet, error)

	Awards(ctx context.Context, actor service.Actor, eventID int64) ([]service.AwardCategory, error)
	ScoreBreakdown(ctx context.Context, entryID int64) (scoring.Breakdown, error)
	GenerateDiplomas(ctx context.Context, eventID int64, rawKey string) (service.DiplomaReport, error)
	ListDiplomas(ctx context.Context, eventID int64, label string) ([]model.Diploma, error)
	Artifact(ctx context.Context, name string) ([]byte, error)
	NotifyOrganizations(ctx context.Context, eventID int64, orgIDs []int64, subject, body string) (int, error)
}

var _ Dependencies = (*service.Service)(nil)

// Server wires HTTP routes for the competition API.
type Server struct {
	deps     Dependencies
	logger   logger.Logger
	validate *validator.Validate
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, logger: logger.Nop(), validate: newValidator()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches middleware and every route to e.
func (s *Server) Register(e *echo.Echo) {
	e.Validator = &requestValidator{v: s.validate}
	e.HTTPErrorHandler = s.handleError

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(s.requestLogger())
	e.Use(MetricsMiddleware())
	e.Use(Identity())

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})))

	admin := RequireAdmin()

	e.GET("/events", s.listEvents)
	e.POST("/events", s.createEvent, admin)
	e.GET("/events/:id", s.getEvent)
	e.PUT("/events/:id", s.updateEvent, admin)
	e.DELETE("/events/:id", s.deleteEvent, admin)
	e.PUT("/events/:id/windows", s.setWindows, admin)
	e.PUT("/events/:id/results", s.publishResults, admin)

	e.GET("/events/:id/styles", s.listStyles)
	e.POST("/events/:id/styles", s.addStyle, admin)
	e.GET("/events/:id/ceremonies", s.listCeremonies)
	e.POST("/events/:id/ceremonies", s.addCeremony, admin)
	e.DELETE("/ceremonies/:id", s.deleteCeremony, admin)

	e.GET("/organizations", s.listOrganizations, admin)
	e.POST("/organizations", s.createOrganization)
	e.PUT("/organizations/:id/confirmation", s.confirmOrganization, admin)
	e.GET("/organizations/:id/performers", s.listPerformers)
	e.POST("/organizations/:id/performers", s.addPerformer)

	e.GET("/events/:id/entries", s.listEntries)
	e.POST("/events/:id/entries", s.registerEntry)
	e.POST("/events/:id/entries/merge", s.mergeEntries, admin)
	e.GET("/events/:id/summary", s.summary, admin)
	e.GET("/events/:id/categories/lint", s.categoryLint, admin)
	e.GET("/entries/:id", s.getEntry)
	e.PUT("/entries/:id", s.editEntry)
	e.DELETE("/entries/:id", s.deleteEntry)
	e.PUT("/entries/:id/audio", s.setAudio)
	e.GET("/entries/:id/breakdown", s.breakdown, admin)

	e.POST("/events/:id/startlist/default", s.defaultOrder, admin)
	e.PUT("/events/:id/startlist", s.saveOrder, admin)
	e.POST("/events/:id/startlist/publish", s.publish, admin)
	e.POST("/events/:id/startlist/unpublish", s.unpublish, admin)
	e.GET("/events/:id/timeline", s.timeline)
	e.GET("/events/:id/highlight", s.getHighlight)
	e.PUT("/events/:id/highlight", s.setHighlight, admin)

	e.GET("/events/:id/judges", s.listJudges, admin)
	e.POST("/events/:id/judges", s.createJudge, admin)
	e.DELETE("/judges/:id", s.deleteJudge, admin)
	e.GET("/judges/:id/sheet", s.judgeSheet)
	e.POST("/judges/:id/sheet", s.judgeAct)

	e.GET("/events/:id/awards", s.awards)
	e.POST("/events/:id/diplomas", s.generateDiplomas, admin)
	e.GET("/events/:id/diplomas", s.listDiplomas, admin)
	e.GET("/artifacts/:name", s.artifact, admin)
	e.POST("/events/:id/notifications", s.notify, admin)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request; 4xx at Warn and 5xx at Error.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ctx := c.Request().Context()
			fields := []logger.Field{
				logger.Int("status", v.Status),
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.String("request_id", v.RequestID),
				logger.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				s.logger.Error(ctx, "http request", fields...)
			case v.Status >= http.StatusBadRequest:
				s.logger.Warn(ctx, "http request", fields...)
			default:
				s.logger.Debug(ctx, "http request", fields...)
			}
			return nil
		},
	})
}
