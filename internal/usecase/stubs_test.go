package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jr0senblum/honbasho/external/sumodb"
	"github.com/jr0senblum/honbasho/internal/domain/basho"
	"github.com/jr0senblum/honbasho/internal/domain/draft"
	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
)

type stubBashoRepository struct {
	byID         map[int64]basho.Basho
	markerCalls  []int
	markedLoaded []int64
}

func (s *stubBashoRepository) GetByID(_ context.Context, id int64) (basho.Basho, bool, error) {
	b, ok := s.byID[id]
	return b, ok, nil
}

func (s *stubBashoRepository) ListByYear(_ context.Context, loaded bool, now time.Time) ([]basho.Basho, error) {
	out := make([]basho.Basho, 0, len(s.byID))
	for _, b := range s.byID {
		if b.StartYear == now.Year() && b.BanzukeLoaded == loaded && b.StartMonth <= int(now.Month()) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubBashoRepository) ListNotFuture(_ context.Context, now time.Time) ([]basho.Basho, error) {
	out := make([]basho.Basho, 0, len(s.byID))
	for _, b := range s.byID {
		if !b.StartDate().After(now) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubBashoRepository) GetByStart(_ context.Context, year, month int) (basho.Basho, bool, error) {
	for _, b := range s.byID {
		if b.StartYear == year && b.StartMonth == month {
			return b, true, nil
		}
	}
	return basho.Basho{}, false, nil
}

func (s *stubBashoRepository) AdvanceUpdateDay(_ context.Context, id int64, day int) (bool, error) {
	s.markerCalls = append(s.markerCalls, day)
	b, ok := s.byID[id]
	if !ok || b.LastUpdateDay != day-1 {
		return false, nil
	}
	b.LastUpdateDay = day
	s.byID[id] = b
	return true, nil
}

func (s *stubBashoRepository) MarkBanzukeLoaded(_ context.Context, id int64) error {
	s.markedLoaded = append(s.markedLoaded, id)
	b, ok := s.byID[id]
	if ok {
		b.BanzukeLoaded = true
		s.byID[id] = b
	}
	return nil
}

type stubRikishiRepository struct {
	nextID    int64
	idsByName map[string]int64
	namesByID map[int64]string
	entries   map[string]rikishi.BanzukeEntry
	ranks     map[int64]rikishi.Rank
	rankIDs   map[string]int64
	created   []string
}

func newStubRikishiRepository() *stubRikishiRepository {
	return &stubRikishiRepository{
		nextID:    1,
		idsByName: map[string]int64{},
		namesByID: map[int64]string{},
		entries:   map[string]rikishi.BanzukeEntry{},
		ranks:     map[int64]rikishi.Rank{},
		rankIDs:   map[string]int64{},
	}
}

func (s *stubRikishiRepository) addRank(rankNo int, rankName, cardinality string) int64 {
	id := int64(1000 + len(s.ranks))
	s.ranks[id] = rikishi.Rank{ID: id, RankNo: rankNo, RankName: rankName, Cardinality: cardinality}
	s.rankIDs[rankKey(rankNo, cardinality)] = id
	return id
}

func (s *stubRikishiRepository) addRikishi(ringName string) int64 {
	id := s.nextID
	s.nextID++
	s.idsByName[ringName] = id
	s.namesByID[id] = ringName
	return id
}

func (s *stubRikishiRepository) addEntry(bashoID, rikishiID, rankID int64, callUp bool) {
	s.entries[entryKey(bashoID, rikishiID)] = rikishi.BanzukeEntry{
		BashoID:   bashoID,
		RikishiID: rikishiID,
		RankID:    rankID,
		CallUp:    callUp,
	}
}

func (s *stubRikishiRepository) GetIDByRingName(_ context.Context, ringName string) (int64, bool, error) {
	id, ok := s.idsByName[ringName]
	return id, ok, nil
}

func (s *stubRikishiRepository) Create(_ context.Context, ringName string) (int64, error) {
	if id, ok := s.idsByName[ringName]; ok {
		return id, nil
	}
	s.created = append(s.created, ringName)
	return s.addRikishi(ringName), nil
}

func (s *stubRikishiRepository) HasBanzukeEntry(_ context.Context, bashoID, rikishiID int64) (bool, error) {
	_, ok := s.entries[entryKey(bashoID, rikishiID)]
	return ok, nil
}

func (s *stubRikishiRepository) CreateBanzukeEntry(_ context.Context, entry rikishi.BanzukeEntry) error {
	key := entryKey(entry.BashoID, entry.RikishiID)
	if _, ok := s.entries[key]; !ok {
		s.entries[key] = entry
	}
	return nil
}

func (s *stubRikishiRepository) GetRanked(_ context.Context, bashoID int64, ringName string) (rikishi.RankedRikishi, bool, error) {
	id, ok := s.idsByName[ringName]
	if !ok {
		return rikishi.RankedRikishi{}, false, nil
	}
	entry, ok := s.entries[entryKey(bashoID, id)]
	if !ok {
		return rikishi.RankedRikishi{}, false, nil
	}
	rank := s.ranks[entry.RankID]
	return rikishi.RankedRikishi{
		RikishiID:   id,
		RingName:    ringName,
		RankNo:      rank.RankNo,
		RankName:    rank.RankName,
		Cardinality: rank.Cardinality,
	}, true, nil
}

func (s *stubRikishiRepository) ListRanked(_ context.Context, bashoID int64) ([]rikishi.RankedRikishi, error) {
	out := make([]rikishi.RankedRikishi, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.BashoID != bashoID || entry.CallUp {
			continue
		}
		rank := s.ranks[entry.RankID]
		out = append(out, rikishi.RankedRikishi{
			RikishiID:   entry.RikishiID,
			RingName:    s.namesByID[entry.RikishiID],
			RankNo:      rank.RankNo,
			RankName:    rank.RankName,
			Cardinality: rank.Cardinality,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RankNo != out[j].RankNo {
			return out[i].RankNo < out[j].RankNo
		}
		return out[i].Cardinality < out[j].Cardinality
	})
	return out, nil
}

func (s *stubRikishiRepository) GetRankID(_ context.Context, rankNo int, cardinality string) (int64, error) {
	id, ok := s.rankIDs[rankKey(rankNo, cardinality)]
	if !ok {
		return 0, fmt.Errorf("rank %d %s not seeded", rankNo, cardinality)
	}
	return id, nil
}

type stubDraftRepository struct {
	drafts        map[int64]draft.Draft
	picks         map[int64][]draft.DraftPick
	committed     map[string][]draft.DayResult
	dayViews      map[string][]draft.DayResultView
	lastSeen      map[int64]int
	specialAwards [][2]int64
	winnerAwards  [][2]int64
	bashoWinners  []string
	prizeWinners  []string

	commitPrizesErr error
	commitWinnerErr error
}

func newStubDraftRepository() *stubDraftRepository {
	return &stubDraftRepository{
		drafts:    map[int64]draft.Draft{},
		picks:     map[int64][]draft.DraftPick{},
		committed: map[string][]draft.DayResult{},
		dayViews:  map[string][]draft.DayResultView{},
		lastSeen:  map[int64]int{},
	}
}

func (s *stubDraftRepository) GetByID(_ context.Context, id int64) (draft.Draft, bool, error) {
	d, ok := s.drafts[id]
	return d, ok, nil
}

func (s *stubDraftRepository) ListByBasho(_ context.Context, bashoID int64) ([]draft.Draft, error) {
	out := make([]draft.Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		if d.BashoID == bashoID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubDraftRepository) ListPicks(_ context.Context, draftID int64) ([]draft.DraftPick, error) {
	return s.picks[draftID], nil
}

func (s *stubDraftRepository) CommitDayResults(_ context.Context, draftID int64, day int, results []draft.DayResult) (bool, error) {
	d, ok := s.drafts[draftID]
	if !ok || d.LastDaysResultsLoaded != day-1 {
		return false, nil
	}
	s.committed[dayKey(draftID, day)] = results
	for _, result := range results {
		picks := s.picks[draftID]
		for idx := range picks {
			if picks[idx].RikishiID != result.RikishiID {
				continue
			}
			if result.Win {
				picks[idx].Wins++
				picks[idx].Points += result.Points
			}
			if result.Loss {
				picks[idx].Losses++
			}
		}
	}
	d.LastDaysResultsLoaded = day
	s.drafts[draftID] = d
	return true, nil
}

func (s *stubDraftRepository) ListDayResults(_ context.Context, draftID int64, day int) ([]draft.DayResultView, error) {
	return s.dayViews[dayKey(draftID, day)], nil
}

func (s *stubDraftRepository) BumpLastSeen(_ context.Context, draftID int64, day int) error {
	s.lastSeen[draftID] = day
	d, ok := s.drafts[draftID]
	if ok {
		d.LastSeen = day
		s.drafts[draftID] = d
	}
	return nil
}

func (s *stubDraftRepository) CommitSpecialPrizes(_ context.Context, draftID int64, rikishiIDs []int64) (bool, error) {
	if s.commitPrizesErr != nil {
		return false, s.commitPrizesErr
	}
	d, ok := s.drafts[draftID]
	if !ok || d.PrizesAwarded {
		return false, nil
	}
	d.PrizesAwarded = true
	s.drafts[draftID] = d
	for _, rikishiID := range rikishiIDs {
		s.specialAwards = append(s.specialAwards, [2]int64{draftID, rikishiID})
	}
	return true, nil
}

func (s *stubDraftRepository) CommitBashoWinner(_ context.Context, draftID, rikishiID int64) (bool, error) {
	if s.commitWinnerErr != nil {
		return false, s.commitWinnerErr
	}
	d, ok := s.drafts[draftID]
	if !ok || d.WinnerAwarded {
		return false, nil
	}
	d.WinnerAwarded = true
	s.drafts[draftID] = d
	s.winnerAwards = append(s.winnerAwards, [2]int64{draftID, rikishiID})
	return true, nil
}

func (s *stubDraftRepository) ListBashoWinners(_ context.Context, _ int64) ([]string, error) {
	return s.bashoWinners, nil
}

func (s *stubDraftRepository) ListPrizeWinners(_ context.Context, _ int64) ([]string, error) {
	return s.prizeWinners, nil
}

type stubSumoSource struct {
	boutsByDay    map[int][]sumodb.Bout
	boutsErr      error
	fetchDayCalls []int
	banzuke       []rikishi.BanzukeSlot
	banzukeErr    error
	sansho        []sumodb.SanshoAward
	sanshoErr     error
	yusho         string
	yushoErr      error
}

func (s *stubSumoSource) FetchDayResults(_ context.Context, _, _, day int) ([]sumodb.Bout, error) {
	s.fetchDayCalls = append(s.fetchDayCalls, day)
	if s.boutsErr != nil {
		return nil, s.boutsErr
	}
	return s.boutsByDay[day], nil
}

func (s *stubSumoSource) FetchBanzuke(_ context.Context, _, _ int) ([]rikishi.BanzukeSlot, error) {
	if s.banzukeErr != nil {
		return nil, s.banzukeErr
	}
	return s.banzuke, nil
}

func (s *stubSumoSource) FetchSanshoWinners(_ context.Context, _, _ int) ([]sumodb.SanshoAward, error) {
	if s.sanshoErr != nil {
		return nil, s.sanshoErr
	}
	return s.sansho, nil
}

func (s *stubSumoSource) FetchYushoWinner(_ context.Context, _, _ int) (string, error) {
	if s.yushoErr != nil {
		return "", s.yushoErr
	}
	return s.yusho, nil
}

func entryKey(bashoID, rikishiID int64) string {
	return fmt.Sprintf("%d:%d", bashoID, rikishiID)
}

func rankKey(rankNo int, cardinality string) string {
	return fmt.Sprintf("%d:%s", rankNo, cardinality)
}

func dayKey(draftID int64, day int) string {
	return fmt.Sprintf("%d:%d", draftID, day)
}
