package usecase

import (
	"context"
	"fmt"

	"github.com/jr0senblum/honbasho/external/sumodb"
	"github.com/jr0senblum/honbasho/internal/domain/basho"
	"github.com/jr0senblum/honbasho/internal/domain/draft"
	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
	"github.com/jr0senblum/honbasho/internal/platform/logging"
)

type prizeFetcher interface {
	FetchSanshoWinners(ctx context.Context, year, month int) ([]sumodb.SanshoAward, error)
	FetchYushoWinner(ctx context.Context, year, month int) (string, error)
}

// PrizeService applies the end-of-basho awards to a draft's picks. Each
// award path is one-shot per draft, guarded by a flag claimed in the
// same transaction as the awards so a failed pass leaves nothing behind.
type PrizeService struct {
	draftRepo   draft.Repository
	rikishiRepo rikishi.Repository
	source      prizeFetcher
	logger      *logging.Logger
}

func NewPrizeService(
	draftRepo draft.Repository,
	rikishiRepo rikishi.Repository,
	source prizeFetcher,
	logger *logging.Logger,
) *PrizeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PrizeService{
		draftRepo:   draftRepo,
		rikishiRepo: rikishiRepo,
		source:      source,
		logger:      logger,
	}
}

// AwardSansho credits each special-prize winner held by the draft. The
// winners are resolved up front and the prizes flag is claimed in the
// same transaction as the awards, so a source outage or a failed write
// leaves the flag unclaimed and the pass retryable; losing the claim
// means another caller already awarded.
func (s *PrizeService) AwardSansho(ctx context.Context, d draft.Draft, b basho.Basho) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeService.AwardSansho")
	defer span.End()

	if d.PrizesAwarded {
		return nil
	}

	awards, err := s.source.FetchSanshoWinners(ctx, b.StartYear, b.StartMonth)
	if err != nil {
		return fmt.Errorf("%w: fetch sansho winners: %v", ErrDependencyUnavailable, err)
	}

	ids := make([]int64, 0, len(awards))
	for _, award := range awards {
		id, found, err := s.rikishiRepo.GetIDByRingName(ctx, award.RingName)
		if err != nil {
			return fmt.Errorf("resolve sansho winner %q: %w", award.RingName, err)
		}
		if !found {
			s.logger.WarnContext(ctx, "sansho winner unknown to roster",
				"ring_name", award.RingName, "prize", award.Prize)
			continue
		}
		ids = append(ids, id)
	}

	claimed, err := s.draftRepo.CommitSpecialPrizes(ctx, d.ID, ids)
	if err != nil {
		return fmt.Errorf("commit special prizes: %w", err)
	}
	if !claimed {
		return nil
	}
	s.logger.InfoContext(ctx, "sansho awarded", "draft_id", d.ID, "awards", len(ids))
	return nil
}

// AwardYusho credits the basho champion on the draft holding them. An
// empty champion means the source page is incomplete; the flag stays
// unclaimed so a later pass can retry.
func (s *PrizeService) AwardYusho(ctx context.Context, d draft.Draft, b basho.Basho) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeService.AwardYusho")
	defer span.End()

	if d.WinnerAwarded {
		return nil
	}

	champion, err := s.source.FetchYushoWinner(ctx, b.StartYear, b.StartMonth)
	if err != nil {
		return fmt.Errorf("%w: fetch yusho winner: %v", ErrDependencyUnavailable, err)
	}
	if champion == "" {
		s.logger.WarnContext(ctx, "yusho winner not yet published",
			"basho_id", b.ID, "year", b.StartYear, "month", b.StartMonth)
		return nil
	}

	id, found, err := s.rikishiRepo.GetIDByRingName(ctx, champion)
	if err != nil {
		return fmt.Errorf("resolve yusho winner %q: %w", champion, err)
	}
	if !found {
		s.logger.WarnContext(ctx, "yusho winner unknown to roster", "ring_name", champion)
		return nil
	}

	claimed, err := s.draftRepo.CommitBashoWinner(ctx, d.ID, id)
	if err != nil {
		return fmt.Errorf("commit basho winner: %w", err)
	}
	if !claimed {
		return nil
	}
	s.logger.InfoContext(ctx, "yusho awarded", "draft_id", d.ID, "ring_name", champion)
	return nil
}

// BashoWinners lists the ring names flagged as champion across a basho's
// drafts.
func (s *PrizeService) BashoWinners(ctx context.Context, bashoID int64) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeService.BashoWinners")
	defer span.End()

	names, err := s.draftRepo.ListBashoWinners(ctx, bashoID)
	if err != nil {
		return nil, fmt.Errorf("list basho winners: %w", err)
	}
	return names, nil
}

// PrizeWinners lists the ring names holding at least one special prize
// across a basho's drafts.
func (s *PrizeService) PrizeWinners(ctx context.Context, bashoID int64) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeService.PrizeWinners")
	defer span.End()

	names, err := s.draftRepo.ListPrizeWinners(ctx, bashoID)
	if err != nil {
		return nil, fmt.Errorf("list prize winners: %w", err)
	}
	return names, nil
}
