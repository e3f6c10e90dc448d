package workers

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/jr0senblum/honbasho/internal/domain/basho"
	"github.com/jr0senblum/honbasho/internal/domain/draft"
	"github.com/jr0senblum/honbasho/internal/platform/logging"
)

type stubBashoRepo struct {
	list []basho.Basho
}

func (s *stubBashoRepo) GetByID(context.Context, int64) (basho.Basho, bool, error) {
	return basho.Basho{}, false, nil
}

func (s *stubBashoRepo) ListByYear(context.Context, bool, time.Time) ([]basho.Basho, error) {
	return s.list, nil
}

func (s *stubBashoRepo) ListNotFuture(context.Context, time.Time) ([]basho.Basho, error) {
	return s.list, nil
}

func (s *stubBashoRepo) GetByStart(context.Context, int, int) (basho.Basho, bool, error) {
	return basho.Basho{}, false, nil
}

func (s *stubBashoRepo) AdvanceUpdateDay(context.Context, int64, int) (bool, error) {
	return false, nil
}

func (s *stubBashoRepo) MarkBanzukeLoaded(context.Context, int64) error { return nil }

type stubDraftRepo struct {
	draft.Repository
	byBasho map[int64][]draft.Draft
}

func (s *stubDraftRepo) ListByBasho(_ context.Context, bashoID int64) ([]draft.Draft, error) {
	return s.byBasho[bashoID], nil
}

type stubLoader struct {
	calls int
	err   error
}

func (s *stubLoader) LoadPendingBanzuke(context.Context) error {
	s.calls++
	return s.err
}

type stubCatchUpper struct {
	draftIDs []int64
}

func (s *stubCatchUpper) CatchUp(_ context.Context, draftID int64) error {
	s.draftIDs = append(s.draftIDs, draftID)
	return nil
}

func TestSweep_CatchesUpUnfinishedDrafts(t *testing.T) {
	bashoRepo := &stubBashoRepo{list: []basho.Basho{{ID: 1, BanzukeLoaded: true}}}
	draftRepo := &stubDraftRepo{byBasho: map[int64][]draft.Draft{
		1: {
			{ID: 10, BashoID: 1, LastDaysResultsLoaded: 3},
			{ID: 11, BashoID: 1, LastDaysResultsLoaded: basho.MaxDay},
		},
	}}
	loader := &stubLoader{}
	catcher := &stubCatchUpper{}

	sched, err := NewScheduler(bashoRepo, draftRepo, loader, catcher, logging.NewNop())
	require.NoError(t, err)

	sched.Sweep(context.Background())

	require.Equal(t, 1, loader.calls)
	require.Equal(t, []int64{10}, catcher.draftIDs)
}

func TestSweep_BanzukeFailureDoesNotStallCatchUp(t *testing.T) {
	bashoRepo := &stubBashoRepo{list: []basho.Basho{{ID: 1, BanzukeLoaded: true}}}
	draftRepo := &stubDraftRepo{byBasho: map[int64][]draft.Draft{
		1: {{ID: 10, BashoID: 1, LastDaysResultsLoaded: 0}},
	}}
	loader := &stubLoader{err: errors.New("sumodb down")}
	catcher := &stubCatchUpper{}

	sched, err := NewScheduler(bashoRepo, draftRepo, loader, catcher, logging.NewNop())
	require.NoError(t, err)

	sched.Sweep(context.Background())

	require.Equal(t, []int64{10}, catcher.draftIDs)
}
