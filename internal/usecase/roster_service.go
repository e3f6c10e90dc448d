package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jr0senblum/honbasho/internal/domain/basho"
	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
	"github.com/jr0senblum/honbasho/internal/platform/cache"
	"github.com/jr0senblum/honbasho/internal/platform/logging"
)

type banzukeFetcher interface {
	FetchBanzuke(ctx context.Context, year, month int) ([]rikishi.BanzukeSlot, error)
}

// RosterService resolves ring names against the per-basho banzuke,
// creating rikishi rows and banzuke entries lazily as source documents
// mention them.
type RosterService struct {
	bashoRepo   basho.Repository
	rikishiRepo rikishi.Repository
	source      banzukeFetcher
	cache       *cache.Store
	logger      *logging.Logger
	now         func() time.Time
}

func NewRosterService(
	bashoRepo basho.Repository,
	rikishiRepo rikishi.Repository,
	source banzukeFetcher,
	store *cache.Store,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{
		bashoRepo:   bashoRepo,
		rikishiRepo: rikishiRepo,
		source:      source,
		cache:       store,
		logger:      logger,
		now:         time.Now,
	}
}

// Resolve returns the rikishi id for a ring name within a basho, creating
// the rikishi and its banzuke entry as needed. Idempotent per
// (basho, rikishi).
func (s *RosterService) Resolve(ctx context.Context, bashoID int64, ringName string, rankID int64, callUp bool) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Resolve")
	defer span.End()

	ringName = strings.TrimSpace(ringName)
	if ringName == "" {
		return 0, fmt.Errorf("%w: ring name is required", ErrInvalidInput)
	}

	id, found, err := s.rikishiRepo.GetIDByRingName(ctx, ringName)
	if err != nil {
		return 0, fmt.Errorf("resolve ring name: %w", err)
	}
	if !found {
		id, err = s.rikishiRepo.Create(ctx, ringName)
		if err != nil {
			return 0, fmt.Errorf("create rikishi: %w", err)
		}
	}

	hasEntry, err := s.rikishiRepo.HasBanzukeEntry(ctx, bashoID, id)
	if err != nil {
		return 0, fmt.Errorf("check banzuke entry: %w", err)
	}
	if !hasEntry {
		entry := rikishi.BanzukeEntry{
			BashoID:   bashoID,
			RikishiID: id,
			RankID:    rankID,
			CallUp:    callUp,
		}
		if err := s.rikishiRepo.CreateBanzukeEntry(ctx, entry); err != nil {
			return 0, fmt.Errorf("create banzuke entry: %w", err)
		}
	}
	return id, nil
}

// EnsureCompetitor resolves a ring name seen in bout results. Names not
// on the published banzuke are registered as call-ups at the placeholder
// rank; either way the ranked join row must exist afterwards.
func (s *RosterService) EnsureCompetitor(ctx context.Context, bashoID int64, ringName string) (rikishi.RankedRikishi, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.EnsureCompetitor")
	defer span.End()

	callUpRankID, err := s.rikishiRepo.GetRankID(ctx, rikishi.CallUpRankNo, rikishi.SideEast)
	if err != nil {
		return rikishi.RankedRikishi{}, fmt.Errorf("resolve call-up rank: %w", err)
	}
	if _, err := s.Resolve(ctx, bashoID, ringName, callUpRankID, true); err != nil {
		return rikishi.RankedRikishi{}, err
	}

	ranked, found, err := s.rikishiRepo.GetRanked(ctx, bashoID, strings.TrimSpace(ringName))
	if err != nil {
		return rikishi.RankedRikishi{}, fmt.Errorf("get ranked rikishi: %w", err)
	}
	if !found {
		return rikishi.RankedRikishi{}, fmt.Errorf("rikishi %q missing from basho %d after resolution", ringName, bashoID)
	}
	return ranked, nil
}

// LoadBanzuke fetches and persists the published Makuuchi banzuke for one
// basho. A banzuke that is not yet published is a quiet no-op; the loaded
// flag is only set once every slot persisted.
func (s *RosterService) LoadBanzuke(ctx context.Context, bashoID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.LoadBanzuke")
	defer span.End()

	b, found, err := s.bashoRepo.GetByID(ctx, bashoID)
	if err != nil {
		return fmt.Errorf("get basho: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: basho %d", ErrNotFound, bashoID)
	}
	if b.BanzukeLoaded {
		return nil
	}

	slots, err := s.source.FetchBanzuke(ctx, b.StartYear, b.StartMonth)
	if err != nil {
		return fmt.Errorf("%w: fetch banzuke: %v", ErrDependencyUnavailable, err)
	}
	if len(slots) == 0 {
		s.logger.InfoContext(ctx, "banzuke not yet published",
			"basho_id", b.ID, "year", b.StartYear, "month", b.StartMonth)
		return nil
	}

	for _, slot := range slots {
		rankID, err := s.rikishiRepo.GetRankID(ctx, slot.RankNo, slot.Side)
		if err != nil {
			return fmt.Errorf("resolve rank for %q: %w", slot.RingName, err)
		}
		if _, err := s.Resolve(ctx, b.ID, slot.RingName, rankID, false); err != nil {
			return fmt.Errorf("persist banzuke slot %q: %w", slot.RingName, err)
		}
	}

	if err := s.bashoRepo.MarkBanzukeLoaded(ctx, b.ID); err != nil {
		return fmt.Errorf("mark banzuke loaded: %w", err)
	}
	if s.cache != nil {
		s.cache.Delete(ctx, banzukeBoardCacheKey(b.ID))
	}
	s.logger.InfoContext(ctx, "banzuke loaded", "basho_id", b.ID, "slots", len(slots))
	return nil
}

// LoadPendingBanzuke walks this year's started basho that still lack a
// banzuke and tries to load each. Individual failures are logged and do
// not stop the sweep.
func (s *RosterService) LoadPendingBanzuke(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.LoadPendingBanzuke")
	defer span.End()

	pending, err := s.bashoRepo.ListByYear(ctx, false, s.now())
	if err != nil {
		return fmt.Errorf("list pending basho: %w", err)
	}
	for _, b := range pending {
		if err := s.LoadBanzuke(ctx, b.ID); err != nil {
			s.logger.WarnContext(ctx, "banzuke load failed", "basho_id", b.ID, "error", err)
		}
	}
	return nil
}

// ListBasho returns started basho, optionally filtered on the loaded
// flag. With no filter it spans years; with one it covers the current
// year, matching what the board views need.
func (s *RosterService) ListBasho(ctx context.Context, loaded *bool) ([]basho.Basho, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListBasho")
	defer span.End()

	if loaded == nil {
		out, err := s.bashoRepo.ListNotFuture(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("list basho: %w", err)
		}
		return out, nil
	}
	out, err := s.bashoRepo.ListByYear(ctx, *loaded, s.now())
	if err != nil {
		return nil, fmt.Errorf("list basho by year: %w", err)
	}
	return out, nil
}

// BanzukeBoard groups the banzuke East/West per rank number for display,
// call-ups excluded.
func (s *RosterService) BanzukeBoard(ctx context.Context, bashoID int64) ([]rikishi.BanzukeRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.BanzukeBoard")
	defer span.End()

	if _, found, err := s.bashoRepo.GetByID(ctx, bashoID); err != nil {
		return nil, fmt.Errorf("get basho: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: basho %d", ErrNotFound, bashoID)
	}

	load := func(ctx context.Context) (any, error) {
		ranked, err := s.rikishiRepo.ListRanked(ctx, bashoID)
		if err != nil {
			return nil, fmt.Errorf("list ranked rikishi: %w", err)
		}
		return buildBanzukeBoard(ranked), nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]rikishi.BanzukeRow), nil
	}

	value, err := s.cache.GetOrLoad(ctx, banzukeBoardCacheKey(bashoID), load)
	if err != nil {
		return nil, err
	}
	return value.([]rikishi.BanzukeRow), nil
}

func buildBanzukeBoard(ranked []rikishi.RankedRikishi) []rikishi.BanzukeRow {
	rows := make([]rikishi.BanzukeRow, 0, (len(ranked)+1)/2)
	index := make(map[int]int, len(ranked))
	for _, item := range ranked {
		pos, ok := index[item.RankNo]
		if !ok {
			pos = len(rows)
			index[item.RankNo] = pos
			rows = append(rows, rikishi.BanzukeRow{
				RankNo:   item.RankNo,
				RankName: item.RankName,
			})
		}
		if item.Cardinality == rikishi.SideWest {
			rows[pos].West = item.RingName
		} else {
			rows[pos].East = item.RingName
		}
	}
	return rows
}

func banzukeBoardCacheKey(bashoID int64) string {
	return fmt.Sprintf("banzuke-board:%d", bashoID)
}
