package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/jr0senblum/honbasho/internal/domain/basho"
	"github.com/jr0senblum/honbasho/internal/domain/draft"
	"github.com/jr0senblum/honbasho/internal/platform/logging"
)

type banzukeLoader interface {
	LoadPendingBanzuke(ctx context.Context) error
}

type draftCatchUpper interface {
	CatchUp(ctx context.Context, draftID int64) error
}

// Scheduler drives the ingestion pipeline on a fixed interval: load any
// pending banzuke first, then walk every draft of the current year's
// loaded basho up to the last elapsed tournament day. Every step is
// idempotent, so overlapping runs and restarts are harmless.
type Scheduler struct {
	scheduler    gocron.Scheduler
	bashoRepo    basho.Repository
	draftRepo    draft.Repository
	roster       banzukeLoader
	results      draftCatchUpper
	logger       *logging.Logger
	sweepTimeout time.Duration
	now          func() time.Time
}

func NewScheduler(
	bashoRepo basho.Repository,
	draftRepo draft.Repository,
	roster banzukeLoader,
	results draftCatchUpper,
	logger *logging.Logger,
) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler:    scheduler,
		bashoRepo:    bashoRepo,
		draftRepo:    draftRepo,
		roster:       roster,
		results:      results,
		logger:       logger,
		sweepTimeout: 5 * time.Minute,
		now:          time.Now,
	}, nil
}

// Start registers the sweep job and begins running it every interval.
func (s *Scheduler) Start(interval time.Duration) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runSweep),
	)
	if err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}

	s.scheduler.Start()
	s.logger.Info("results sweep scheduled", "interval", interval.String())
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.sweepTimeout)
	defer cancel()

	s.Sweep(ctx)
}

// Sweep runs one full pass. Failures are logged and skipped so that one
// broken draft or a source outage never stalls the rest.
func (s *Scheduler) Sweep(ctx context.Context) {
	if err := s.roster.LoadPendingBanzuke(ctx); err != nil {
		s.logger.WarnContext(ctx, "pending banzuke sweep failed", "error", err)
	}

	now := s.now()
	bashoList, err := s.bashoRepo.ListByYear(ctx, true, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "list basho for sweep failed", "error", err)
		return
	}

	for _, b := range bashoList {
		drafts, err := s.draftRepo.ListByBasho(ctx, b.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "list drafts for sweep failed",
				"basho_id", b.ID, "error", err)
			continue
		}

		for _, d := range drafts {
			if d.LastDaysResultsLoaded >= basho.MaxDay {
				continue
			}
			if err := s.results.CatchUp(ctx, d.ID); err != nil {
				s.logger.WarnContext(ctx, "draft catch-up failed",
					"draft_id", d.ID, "basho_id", b.ID, "error", err)
			}
		}
	}
}
