package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jr0senblum/honbasho/external/sumodb"
	"github.com/jr0senblum/honbasho/internal/domain/basho"
	"github.com/jr0senblum/honbasho/internal/domain/draft"
	"github.com/jr0senblum/honbasho/internal/domain/scoring"
	"github.com/jr0senblum/honbasho/internal/platform/cache"
	"github.com/jr0senblum/honbasho/internal/platform/logging"
)

type resultsFetcher interface {
	FetchDayResults(ctx context.Context, year, month, day int) ([]sumodb.Bout, error)
}

// ResultsService drives the daily scoring pipeline. Correctness under
// concurrent callers rests entirely on the conditional counter updates
// in the repositories; nothing here takes a lock.
type ResultsService struct {
	bashoRepo basho.Repository
	draftRepo draft.Repository
	roster    *RosterService
	prizes    *PrizeService
	source    resultsFetcher
	cache     *cache.Store
	logger    *logging.Logger
	now       func() time.Time
}

func NewResultsService(
	bashoRepo basho.Repository,
	draftRepo draft.Repository,
	roster *RosterService,
	prizes *PrizeService,
	source resultsFetcher,
	store *cache.Store,
	logger *logging.Logger,
) *ResultsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultsService{
		bashoRepo: bashoRepo,
		draftRepo: draftRepo,
		roster:    roster,
		prizes:    prizes,
		source:    source,
		cache:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// AdvanceDay scores one tournament day for one draft. Days must be taken
// in order; a draft whose counter is not at day-1 gets ErrStaleDay and no
// writes. Day 16 carries no bouts and runs prize attribution instead.
func (s *ResultsService) AdvanceDay(ctx context.Context, draftID int64, day int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.AdvanceDay")
	defer span.End()

	if day < 1 || day > basho.MaxDay {
		return fmt.Errorf("%w: day must be within 1..%d", ErrInvalidInput, basho.MaxDay)
	}

	d, found, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return fmt.Errorf("get draft: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: draft %d", ErrNotFound, draftID)
	}

	b, found, err := s.bashoRepo.GetByID(ctx, d.BashoID)
	if err != nil {
		return fmt.Errorf("get basho: %w", err)
	}
	if !found {
		return fmt.Errorf("draft %d references missing basho %d", d.ID, d.BashoID)
	}

	// The basho-level marker is shared across drafts and advisory only;
	// losing this race changes nothing below.
	if _, err := s.bashoRepo.AdvanceUpdateDay(ctx, b.ID, day); err != nil {
		return fmt.Errorf("advance basho day marker: %w", err)
	}

	if d.LastDaysResultsLoaded != day-1 {
		return fmt.Errorf("%w: draft %d is at day %d, requested %d",
			ErrStaleDay, d.ID, d.LastDaysResultsLoaded, day)
	}

	if day == basho.MaxDay {
		return s.completeBasho(ctx, d, b)
	}

	bouts, err := s.fetchDay(ctx, b, day)
	if err != nil {
		return err
	}

	results, err := s.scoreDay(ctx, d, b, day, bouts)
	if err != nil {
		return err
	}

	moved, err := s.draftRepo.CommitDayResults(ctx, d.ID, day, results)
	if err != nil {
		return fmt.Errorf("commit day results: %w", err)
	}
	if !moved {
		return fmt.Errorf("%w: draft %d lost the day %d commit race", ErrStaleDay, d.ID, day)
	}
	s.logger.InfoContext(ctx, "day scored",
		"draft_id", d.ID, "day", day, "rows", len(results))

	if day == basho.BoutDays {
		if err := s.AdvanceDay(ctx, d.ID, basho.MaxDay); err != nil && !errors.Is(err, ErrStaleDay) {
			s.logger.WarnContext(ctx, "prize attribution deferred",
				"draft_id", d.ID, "error", err)
		}
	}
	return nil
}

// completeBasho is the day-16 step: no bouts, only the one-shot sansho
// and yusho attribution plus the final counter move.
func (s *ResultsService) completeBasho(ctx context.Context, d draft.Draft, b basho.Basho) error {
	if s.prizes != nil {
		if err := s.prizes.AwardSansho(ctx, d, b); err != nil {
			return err
		}
		if err := s.prizes.AwardYusho(ctx, d, b); err != nil {
			return err
		}
	}

	moved, err := s.draftRepo.CommitDayResults(ctx, d.ID, basho.MaxDay, nil)
	if err != nil {
		return fmt.Errorf("close out basho for draft: %w", err)
	}
	if !moved {
		return fmt.Errorf("%w: draft %d already closed out", ErrStaleDay, d.ID)
	}
	s.logger.InfoContext(ctx, "basho closed out", "draft_id", d.ID, "basho_id", b.ID)
	return nil
}

// CatchUp advances a draft sequentially from its counter up to the
// elapsed tournament day. Stale days mean another caller got there
// first; the walk keeps going.
func (s *ResultsService) CatchUp(ctx context.Context, draftID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.CatchUp")
	defer span.End()

	d, found, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return fmt.Errorf("get draft: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: draft %d", ErrNotFound, draftID)
	}

	b, found, err := s.bashoRepo.GetByID(ctx, d.BashoID)
	if err != nil {
		return fmt.Errorf("get basho: %w", err)
	}
	if !found {
		return fmt.Errorf("draft %d references missing basho %d", d.ID, d.BashoID)
	}

	target := b.ElapsedDays(s.now())
	for day := d.LastDaysResultsLoaded + 1; day <= target; day++ {
		if err := s.AdvanceDay(ctx, draftID, day); err != nil {
			if errors.Is(err, ErrStaleDay) {
				s.logger.DebugContext(ctx, "day already scored", "draft_id", draftID, "day", day)
				continue
			}
			return fmt.Errorf("catch up day %d: %w", day, err)
		}
	}
	return nil
}

// DayResults returns the stored result rows for one day of a draft and
// bumps the freshness marker when the caller is looking at a newer day.
func (s *ResultsService) DayResults(ctx context.Context, draftID int64, day int) ([]draft.DayResultView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.DayResults")
	defer span.End()

	if day < 1 || day > basho.BoutDays {
		return nil, fmt.Errorf("%w: day must be within 1..%d", ErrInvalidInput, basho.BoutDays)
	}

	d, found, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: draft %d", ErrNotFound, draftID)
	}

	rows, err := s.draftRepo.ListDayResults(ctx, draftID, day)
	if err != nil {
		return nil, fmt.Errorf("list day results: %w", err)
	}

	if day > d.LastSeen {
		if err := s.draftRepo.BumpLastSeen(ctx, draftID, day); err != nil {
			s.logger.WarnContext(ctx, "bump last seen failed", "draft_id", draftID, "error", err)
		}
	}
	return rows, nil
}

// Picks returns the running tallies for a draft.
func (s *ResultsService) Picks(ctx context.Context, draftID int64) ([]draft.DraftPick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.Picks")
	defer span.End()

	_, found, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: draft %d", ErrNotFound, draftID)
	}

	picks, err := s.draftRepo.ListPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("list draft picks: %w", err)
	}
	return picks, nil
}

// Preview fetches one day of sumodb results without touching any draft.
func (s *ResultsService) Preview(ctx context.Context, year, month, day int) ([]sumodb.Bout, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.Preview")
	defer span.End()

	if year < 1900 || month < 1 || month > 12 || day < 1 || day > basho.BoutDays {
		return nil, fmt.Errorf("%w: year, month and day must form a valid tournament date", ErrInvalidInput)
	}
	return s.fetchRaw(ctx, year, month, day)
}

func (s *ResultsService) fetchDay(ctx context.Context, b basho.Basho, day int) ([]sumodb.Bout, error) {
	return s.fetchRaw(ctx, b.StartYear, b.StartMonth, day)
}

func (s *ResultsService) fetchRaw(ctx context.Context, year, month, day int) ([]sumodb.Bout, error) {
	load := func(ctx context.Context) (any, error) {
		return s.source.FetchDayResults(ctx, year, month, day)
	}

	var value any
	var err error
	if s.cache != nil {
		key := fmt.Sprintf("day-results:%04d%02d:%d", year, month, day)
		value, err = s.cache.GetOrLoad(ctx, key, load)
	} else {
		value, err = load(ctx)
	}
	if err != nil {
		if errors.Is(err, sumodb.ErrResultsUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}
		return nil, fmt.Errorf("fetch day results: %w", err)
	}
	return value.([]sumodb.Bout), nil
}

// scoreDay resolves every bout against the roster and produces the rows
// for rikishi held by the draft. Roster rows are created for every
// competitor so later drafts and call-ups see a complete banzuke.
func (s *ResultsService) scoreDay(ctx context.Context, d draft.Draft, b basho.Basho, day int, bouts []sumodb.Bout) ([]draft.DayResult, error) {
	picks, err := s.draftRepo.ListPicks(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list draft picks: %w", err)
	}
	winsBefore := make(map[int64]int, len(picks))
	picked := make(map[int64]bool, len(picks))
	for _, pick := range picks {
		picked[pick.RikishiID] = true
		winsBefore[pick.RikishiID] = pick.Wins
	}

	results := make([]draft.DayResult, 0, len(bouts))
	for _, bout := range bouts {
		winner, err := s.roster.EnsureCompetitor(ctx, b.ID, bout.WinnerName)
		if err != nil {
			return nil, err
		}
		loser, err := s.roster.EnsureCompetitor(ctx, b.ID, bout.LoserName)
		if err != nil {
			return nil, err
		}

		fusen := bout.Technique == sumodb.TechniqueFusen
		if picked[winner.RikishiID] {
			results = append(results, draft.DayResult{
				DraftID:       d.ID,
				TournamentDay: day,
				RikishiID:     winner.RikishiID,
				OpponentID:    loser.RikishiID,
				Win:           true,
				Fusensho:      fusen,
				Points: scoring.Points(
					winner.RankNo,
					loser.RankNo,
					bout.Technique,
					winsBefore[winner.RikishiID],
				),
			})
		}
		if picked[loser.RikishiID] {
			results = append(results, draft.DayResult{
				DraftID:       d.ID,
				TournamentDay: day,
				RikishiID:     loser.RikishiID,
				OpponentID:    winner.RikishiID,
				Loss:          true,
				Fusensho:      fusen,
			})
		}
	}
	return results, nil
}
