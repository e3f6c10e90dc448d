package postgres

import (
	"time"

	"github.com/jr0senblum/honbasho/internal/domain/draft"
)

type draftTableModel struct {
	ID                    int64     `db:"id"`
	UserID                int64     `db:"user_id"`
	BashoID               int64     `db:"basho_id"`
	Name                  string    `db:"name"`
	LastDaysResultsLoaded int       `db:"last_days_results_loaded"`
	LastSeen              int       `db:"last_seen"`
	PrizesAwarded         bool      `db:"prizes_awarded"`
	WinnerAwarded         bool      `db:"winner_awarded"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func draftToDomain(row draftTableModel) draft.Draft {
	return draft.Draft{
		ID:                    row.ID,
		UserID:                row.UserID,
		BashoID:               row.BashoID,
		Name:                  row.Name,
		LastDaysResultsLoaded: row.LastDaysResultsLoaded,
		LastSeen:              row.LastSeen,
		PrizesAwarded:         row.PrizesAwarded,
		WinnerAwarded:         row.WinnerAwarded,
	}
}

type draftPickTableModel struct {
	ID            int64     `db:"id"`
	DraftID       int64     `db:"draft_id"`
	PlayerID      int64     `db:"player_id"`
	RikishiID     int64     `db:"rikishi_id"`
	Wins          int       `db:"wins"`
	Losses        int       `db:"losses"`
	Points        int       `db:"points"`
	SpecialPrizes int       `db:"special_prizes"`
	BashoWinner   bool      `db:"basho_winner"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func draftPickToDomain(row draftPickTableModel) draft.DraftPick {
	return draft.DraftPick{
		ID:            row.ID,
		DraftID:       row.DraftID,
		PlayerID:      row.PlayerID,
		RikishiID:     row.RikishiID,
		Wins:          row.Wins,
		Losses:        row.Losses,
		Points:        row.Points,
		SpecialPrizes: row.SpecialPrizes,
		BashoWinner:   row.BashoWinner,
	}
}

type dayResultInsertModel struct {
	DraftID       int64 `db:"draft_id"`
	TournamentDay int   `db:"tournament_day"`
	RikishiID     int64 `db:"rikishi_id"`
	OpponentID    int64 `db:"opponent_id"`
	Win           bool  `db:"win"`
	Loss          bool  `db:"loss"`
	Fusensho      bool  `db:"fusensho"`
	Points        int   `db:"points"`
}

type dayResultViewRowModel struct {
	DraftID        int64  `db:"draft_id"`
	TournamentDay  int    `db:"tournament_day"`
	RikishiID      int64  `db:"rikishi_id"`
	OpponentID     int64  `db:"opponent_id"`
	Win            bool   `db:"win"`
	Loss           bool   `db:"loss"`
	Fusensho       bool   `db:"fusensho"`
	Points         int    `db:"points"`
	RingName       string `db:"ring_name"`
	RankNo         int    `db:"rank_no"`
	OpponentRankNo int    `db:"opponent_rank_no"`
}

func dayResultViewToDomain(row dayResultViewRowModel) draft.DayResultView {
	return draft.DayResultView{
		DayResult: draft.DayResult{
			DraftID:       row.DraftID,
			TournamentDay: row.TournamentDay,
			RikishiID:     row.RikishiID,
			OpponentID:    row.OpponentID,
			Win:           row.Win,
			Loss:          row.Loss,
			Fusensho:      row.Fusensho,
			Points:        row.Points,
		},
		RingName:       row.RingName,
		RankNo:         row.RankNo,
		OpponentRankNo: row.OpponentRankNo,
	}
}
