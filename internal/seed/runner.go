package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/internal/domain/errs"
	"github.com/okian/pirouette/internal/domain/judging"
	"github.com/okian/pirouette/internal/domain/model"
	"github.com/okian/pirouette/pkg/logger"
)

// Engine is the slice of the service a seeding run drives.
type Engine interface {
	CreateEvent(ctx context.Context, in service.EventInput) (model.Event, error)
	GetEvent(ctx context.Context, eventID int64) (model.Event, error)
	SetWindows(ctx context.Context, eventID int64, w service.Windows) (model.Event, error)
	PublishResults(ctx context.Context, eventID int64, published bool) (model.Event, error)
	AddStyle(ctx context.Context, eventID int64, name string) (model.Style, error)
	ListStyles(ctx context.Context, eventID int64) ([]model.Style, error)
	CreateOrganization(ctx context.Context, in service.OrganizationInput) (model.Organization, error)
	ConfirmOrganization(ctx context.Context, orgID int64, confirmed bool) (model.Organization, error)
	AddPerformer(ctx context.Context, actor service.Actor, in service.PerformerInput) (model.Performer, error)
	RegisterEntry(ctx context.Context, actor service.Actor, eventID int64, in service.EntryInput) (model.Entry, error)
	CreateJudge(ctx context.Context, eventID int64, firstName, lastName string) (model.Judge, error)
	ListJudges(ctx context.Context, eventID int64) ([]model.Judge, error)
	JudgeSheet(ctx context.Context, judgeID int64) (service.Sheet, error)
	JudgeAct(ctx context.Context, judgeID int64, sub service.Submission) (service.Sheet, error)
	DefaultOrder(ctx context.Context, eventID int64) (service.OrderResult, error)
	Publish(ctx context.Context, eventID int64, ids []string) (service.OrderResult, error)
	Awards(ctx context.Context, actor service.Actor, eventID int64) ([]service.AwardCategory, error)
}

var _ Engine = (*service.Service)(nil)

// Run executes a complete seeding run against eng.
func Run(ctx context.Context, eng Engine, config *Config, log logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	cfg := withDefaults(*config)
	stats := &Stats{StartTime: time.Now(), EntriesPlanned: cfg.Entries}

	log.Info(ctx, "starting seeding run",
		logger.Int64("event", cfg.EventID),
		logger.Int("performers", cfg.Performers),
		logger.Int("entries", cfg.Entries),
		logger.Int("judges", cfg.Judges),
		logger.Int("workers", cfg.Workers))

	// Step 1: event and styles
	ev, styles, err := prepareEvent(ctx, eng, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("event preparation failed: %w", err)
	}

	// Step 2: organization and performers
	org, performers, err := prepareOrganization(ctx, eng, cfg)
	if err != nil {
		return Result{EventID: ev.ID}, fmt.Errorf("organization preparation failed: %w", err)
	}
	res := Result{EventID: ev.ID, OrganizationID: org.ID}

	// Step 3: entries
	if err := registerEntries(ctx, eng, cfg, ev.ID, org.ID, styles, performers, stats, log); err != nil {
		return res, fmt.Errorf("entry registration failed: %w", err)
	}

	// Step 4: start list
	if _, err := eng.DefaultOrder(ctx, ev.ID); err != nil {
		return res, fmt.Errorf("default order failed: %w", err)
	}

	// Step 5: judges mark every category
	if err := judgeAll(ctx, eng, cfg, ev.ID, stats); err != nil {
		return res, fmt.Errorf("judging failed: %w", err)
	}

	// Step 6: verify the awards
	awards, err := eng.Awards(ctx, service.Admin, ev.ID)
	if err != nil {
		return res, fmt.Errorf("awards retrieval failed: %w", err)
	}
	if err := verifyAwards(ctx, awards, stats, cfg.Verbose, log); err != nil {
		return res, fmt.Errorf("award verification failed: %w", err)
	}

	if cfg.Publish {
		if _, err := eng.Publish(ctx, ev.ID, nil); err != nil {
			return res, fmt.Errorf("start list publication failed: %w", err)
		}
		if _, err := eng.PublishResults(ctx, ev.ID, true); err != nil {
			return res, fmt.Errorf("results publication failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	res.Stats = *stats
	displayFinalStats(ctx, stats, log)
	return res, nil
}

func withDefaults(c Config) Config {
	if c.Performers <= 0 {
		c.Performers = DefaultPerformers
	}
	if c.Entries <= 0 {
		c.Entries = DefaultEntries
	}
	if c.Judges <= 0 {
		c.Judges = DefaultJudges
	}
	if c.Judges > len(firstNames) {
		c.Judges = len(firstNames)
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.EventName == "" {
		c.EventName = DefaultEventName
	}
	if len(c.Styles) == 0 {
		c.Styles = defaultStyles
	}
	return c
}

// prepareEvent creates or loads the event, opens its registration window
// and makes sure it offers at least one style.
func prepareEvent(ctx context.Context, eng Engine, cfg Config) (model.Event, []model.Style, error) {
	var (
		ev  model.Event
		err error
	)
	if cfg.EventID == 0 {
		ev, err = eng.CreateEvent(ctx, service.EventInput{
			Name:      cfg.EventName,
			City:      "Zagreb",
			Date:      seedDate,
			StartTime: "10:00",
		})
	} else {
		ev, err = eng.GetEvent(ctx, cfg.EventID)
	}
	if err != nil {
		return model.Event{}, nil, err
	}

	open := true
	if ev, err = eng.SetWindows(ctx, ev.ID, service.Windows{Registration: &open, Music: &open}); err != nil {
		return model.Event{}, nil, err
	}

	styles, err := eng.ListStyles(ctx, ev.ID)
	if err != nil {
		return model.Event{}, nil, err
	}
	if len(styles) == 0 {
		for _, name := range cfg.Styles {
			st, err := eng.AddStyle(ctx, ev.ID, name)
			if err != nil {
				return model.Event{}, nil, err
			}
			styles = append(styles, st)
		}
	}
	return ev, styles, nil
}

// prepareOrganization registers and confirms a fresh organization with
// its performers. The name carries a run id so reruns never collide.
func prepareOrganization(ctx context.Context, eng Engine, cfg Config) (model.Organization, []model.Performer, error) {
	run := uuid.NewString()[:8]
	org, err := eng.CreateOrganization(ctx, service.OrganizationInput{
		Name:           "Seed Studio " + run,
		City:           "Zagreb",
		Country:        "HR",
		Email:          "seed-" + run + "@example.org",
		Representative: "Seed Runner",
	})
	if err != nil {
		return model.Organization{}, nil, err
	}
	if org, err = eng.ConfirmOrganization(ctx, org.ID, true); err != nil {
		return model.Organization{}, nil, err
	}

	member := service.Actor{OrganizationID: org.ID}
	performers := make([]model.Performer, 0, cfg.Performers)
	for i := 0; i < cfg.Performers; i++ {
		first, last := performerName(i)
		p, err := eng.AddPerformer(ctx, member, service.PerformerInput{
			OrganizationID: org.ID,
			FirstName:      first,
			LastName:       last,
			BirthDate:      randomBirthDate(),
		})
		if err != nil {
			return model.Organization{}, nil, err
		}
		performers = append(performers, p)
	}
	return org, performers, nil
}

// registerEntries registers the planned entries concurrently. Rejections
// by domain rules are counted, anything else aborts the run.
func registerEntries(ctx context.Context, eng Engine, cfg Config, eventID, orgID int64,
	styles []model.Style, performers []model.Performer, stats *Stats, log logger.Logger,
) error {
	member := service.Actor{OrganizationID: orgID}
	var registered, rejected atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Entries; i++ {
		in := planEntry(orgID, styles, performers, i)
		g.Go(func() error {
			e, err := eng.RegisterEntry(gctx, member, eventID, in)
			switch {
			case err == nil:
				registered.Add(1)
				if cfg.Verbose {
					log.Debug(gctx, "entry registered",
						logger.Int64("entry", e.ID),
						logger.String("size", string(e.GroupSize)),
						logger.String("age", string(e.AgeBracket)))
				}
				return nil
			case errors.Is(err, errs.ErrValidation):
				rejected.Add(1)
				log.Warn(gctx, "entry rejected", logger.String("reason", errs.Message(err)))
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	stats.EntriesRegistered = int(registered.Load())
	stats.EntriesRejected = int(rejected.Load())
	return nil
}

// judgeAll reuses the event's judges, creates the missing ones and lets
// each walk the whole sheet, submitting random marks for every category.
func judgeAll(ctx context.Context, eng Engine, cfg Config, eventID int64, stats *Stats) error {
	judges, err := eng.ListJudges(ctx, eventID)
	if err != nil {
		return err
	}
	if len(judges) > cfg.Judges {
		judges = judges[:cfg.Judges]
	}
	for i := 0; len(judges) < cfg.Judges && i < len(firstNames); i++ {
		j, err := eng.CreateJudge(ctx, eventID, firstNames[len(firstNames)-1-i], "Sudac")
		if errors.Is(err, errs.ErrValidation) {
			// Username taken.
			continue
		}
		if err != nil {
			return err
		}
		judges = append(judges, j)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, j := range judges {
		j := j
		g.Go(func() error {
			n, cats, err := judgeSheet(gctx, eng, j.ID)
			mu.Lock()
			stats.MarksSubmitted += n
			stats.Categories = cats
			mu.Unlock()
			return err
		})
	}
	return g.Wait()
}

func judgeSheet(ctx context.Context, eng Engine, judgeID int64) (int, int, error) {
	sheet, err := eng.JudgeSheet(ctx, judgeID)
	if err != nil {
		return 0, 0, err
	}
	if !sheet.HasCategory {
		return 0, 0, nil
	}
	// Reviewing restarts a sheet that a previous run left midway.
	if sheet.Cursor != 0 {
		if sheet, err = eng.JudgeAct(ctx, judgeID, service.Submission{Action: judging.Review}); err != nil {
			return 0, 0, err
		}
	}
	submitted := 0
	for step := 0; step < maxSheetSteps; step++ {
		marks := randomMarks(sheet.Criteria, sheet.Rows)
		submitted += len(marks)
		next, err := eng.JudgeAct(ctx, judgeID, service.Submission{Submit: true, Marks: marks, Action: judging.Next})
		if err != nil {
			return submitted, sheet.Total, err
		}
		if next.AllScored || !sheet.HasNext {
			return submitted, sheet.Total, nil
		}
		sheet = next
	}
	return submitted, sheet.Total, fmt.Errorf("judge %d: sheet did not finish", judgeID)
}
