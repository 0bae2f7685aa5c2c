package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/simp-lee/touradmin/internal/config"
)

// jobTimeout bounds a single background run.
const jobTimeout = 5 * time.Minute

// Job is one unit of background work that reports how many items it handled.
type Job func(ctx context.Context) (int, error)

// newScheduler registers the asset sweep and notification drain on a cron
// scheduler. Runs of the same job never overlap.
func newScheduler(cfg config.JobsConfig, sweep, drain Job, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New(
		cron.WithParser(config.ScheduleParser),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	jobs := []struct {
		name     string
		schedule string
		run      Job
	}{
		{"asset_sweep", cfg.AssetSweep, sweep},
		{"notification_drain", cfg.NotificationDrain, drain},
	}
	for _, j := range jobs {
		if j.run == nil {
			continue
		}
		if _, err := c.AddFunc(j.schedule, runJob(j.name, j.run, logger)); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.name, err)
		}
		logger.Info("job scheduled", slog.String("job", j.name), slog.String("schedule", j.schedule))
	}
	return c, nil
}

func runJob(name string, run Job, logger *slog.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		n, err := run(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "job failed",
				slog.String("job", name),
				slog.Int("handled", n),
				slog.String("error", err.Error()),
			)
			return
		}
		if n > 0 {
			logger.InfoContext(ctx, "job finished",
				slog.String("job", name),
				slog.Int("handled", n),
				slog.Duration("took", time.Since(start)),
			)
		}
	}
}
