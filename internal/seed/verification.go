package seed

import (
	"context"
	"fmt"

	service "github.com/okian/pirouette/internal/app"
	"github.com/okian/pirouette/pkg/logger"
)

// verifyAwards checks that every category is ranked 1..n with
// non-increasing scores, and counts the awards.
func verifyAwards(ctx context.Context, awards []service.AwardCategory, stats *Stats, verbose bool, log logger.Logger) error {
	if stats.EntriesRegistered > 0 && len(awards) == 0 {
		return fmt.Errorf("no ranked categories for %d entries", stats.EntriesRegistered)
	}
	for _, cat := range awards {
		if err := verifyCategory(cat); err != nil {
			return err
		}
		stats.Awards += len(cat.Awards)
		if verbose {
			displayCategory(ctx, cat, log)
		}
	}
	return nil
}

func verifyCategory(cat service.AwardCategory) error {
	if len(cat.Awards) == 0 {
		return fmt.Errorf("%s: empty category", cat.Label)
	}
	if cat.Awards[0].Rank != 1 {
		return fmt.Errorf("%s: first rank is %d", cat.Label, cat.Awards[0].Rank)
	}
	for i := 1; i < len(cat.Awards); i++ {
		prev, cur := cat.Awards[i-1], cat.Awards[i]
		if cur.Score > prev.Score {
			return fmt.Errorf("%s: entry %d scores %.2f above entry %d at %.2f",
				cat.Label, cur.Entry.ID, cur.Score, prev.Entry.ID, prev.Score)
		}
		if cur.Rank != i+1 {
			return fmt.Errorf("%s: position %d holds rank %d", cat.Label, i+1, cur.Rank)
		}
	}
	return nil
}

func displayCategory(ctx context.Context, cat service.AwardCategory, log logger.Logger) {
	for _, a := range cat.Awards {
		log.Info(ctx, "award",
			logger.String("category", cat.Label),
			logger.Int("rank", a.Rank),
			logger.Float64("score", a.Score),
			logger.String("name", a.DisplayName))
	}
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats, log logger.Logger) {
	var acceptance float64
	if stats.EntriesPlanned > 0 {
		acceptance = float64(stats.EntriesRegistered) / float64(stats.EntriesPlanned) * percentageMultiplier
	}
	log.Info(ctx, "final statistics",
		logger.Int("entriesPlanned", stats.EntriesPlanned),
		logger.Int("entriesRegistered", stats.EntriesRegistered),
		logger.Int("entriesRejected", stats.EntriesRejected),
		logger.Int("marksSubmitted", stats.MarksSubmitted),
		logger.Int("categories", stats.Categories),
		logger.Int("awards", stats.Awards),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptanceRate", acceptance))
}
