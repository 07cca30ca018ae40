package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HourlyPruneSpec       = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	pruneRunsTimeout      = time.Minute
)

// Pruner deletes journal rows created before cutoff.
type Pruner interface {
	PruneRuns(ctx context.Context, cutoff time.Time) (int64, error)
}

type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	pruner    Pruner
	retention time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func New(
	ctx context.Context,
	pruner Pruner,
	retention time.Duration,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		log:       log,
	}
}

// Start registers the hourly prune job. A non-positive retention keeps runs
// forever and schedules nothing.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		s.log.InfoContext(s.ctx, "Journal retention is disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(HourlyPruneSpec, s.pruneRuns); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneRuns() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneRunsTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	cutoff := s.now().UTC().Add(-s.retention)

	removed, err := s.pruner.PruneRuns(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune runs",
			"error", err,
			"cutoff", cutoff)
		return
	}

	if removed > 0 {
		s.log.InfoContext(ctx, "Old runs are pruned",
			"removed", removed,
			"cutoff", cutoff)
	}
}
