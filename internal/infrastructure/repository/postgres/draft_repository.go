package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jr0senblum/honbasho/internal/domain/draft"
	"github.com/jr0senblum/honbasho/internal/domain/scoring"
	qb "github.com/jr0senblum/honbasho/internal/platform/querybuilder"
)

type DraftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) GetByID(ctx context.Context, id int64) (draft.Draft, bool, error) {
	query, args, err := qb.Select("*").
		From("drafts").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return draft.Draft{}, false, fmt.Errorf("build get draft query: %w", err)
	}

	var row draftTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draft.Draft{}, false, nil
		}
		return draft.Draft{}, false, fmt.Errorf("get draft: %w", err)
	}
	return draftToDomain(row), true, nil
}

func (r *DraftRepository) ListByBasho(ctx context.Context, bashoID int64) ([]draft.Draft, error) {
	query, args, err := qb.Select("*").
		From("drafts").
		Where(qb.Eq("basho_id", bashoID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list drafts query: %w", err)
	}

	var rows []draftTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	out := make([]draft.Draft, 0, len(rows))
	for _, row := range rows {
		out = append(out, draftToDomain(row))
	}
	return out, nil
}

func (r *DraftRepository) ListPicks(ctx context.Context, draftID int64) ([]draft.DraftPick, error) {
	query, args, err := qb.Select("*").
		From("draft_picks").
		Where(qb.Eq("draft_id", draftID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list draft picks query: %w", err)
	}

	var rows []draftPickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list draft picks: %w", err)
	}

	out := make([]draft.DraftPick, 0, len(rows))
	for _, row := range rows {
		out = append(out, draftPickToDomain(row))
	}
	return out, nil
}

// CommitDayResults applies one day of scoring in a single transaction.
// Row inserts are idempotent on (draft_id, tournament_day, rikishi_id);
// tallies are only bumped for rows this call actually inserted, and the
// whole batch stands or falls with the counter CAS at the end.
func (r *DraftRepository) CommitDayResults(ctx context.Context, draftID int64, day int, results []draft.DayResult) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx commit day results: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, result := range results {
		inserted, err := insertDayResult(ctx, tx, result)
		if err != nil {
			return false, err
		}
		if !inserted {
			continue
		}
		if err := applyPickTally(ctx, tx, result); err != nil {
			return false, err
		}
	}

	query, args, err := qb.Update("drafts").
		Set("last_days_results_loaded", day).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", draftID),
			qb.Eq("last_days_results_loaded", day-1),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build advance draft day query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("advance draft day: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance draft day rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit day results tx: %w", err)
	}
	return true, nil
}

func insertDayResult(ctx context.Context, tx *sqlx.Tx, result draft.DayResult) (bool, error) {
	insertModel := dayResultInsertModel{
		DraftID:       result.DraftID,
		TournamentDay: result.TournamentDay,
		RikishiID:     result.RikishiID,
		OpponentID:    result.OpponentID,
		Win:           result.Win,
		Loss:          result.Loss,
		Fusensho:      result.Fusensho,
		Points:        result.Points,
	}
	query, args, err := qb.InsertModel("days_results", insertModel, "ON CONFLICT (draft_id, tournament_day, rikishi_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert day result query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert day result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert day result rows affected: %w", err)
	}
	return affected > 0, nil
}

func applyPickTally(ctx context.Context, tx *sqlx.Tx, result draft.DayResult) error {
	builder := qb.Update("draft_picks").
		SetExpr("updated_at", "NOW()")
	switch {
	case result.Win:
		builder = builder.
			SetExpr("wins", "wins + 1").
			SetExpr("points", "points + ?", result.Points)
	case result.Loss:
		builder = builder.SetExpr("losses", "losses + 1")
	default:
		return nil
	}

	query, args, err := builder.
		Where(
			qb.Eq("draft_id", result.DraftID),
			qb.Eq("rikishi_id", result.RikishiID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build apply pick tally query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("apply pick tally: %w", err)
	}
	return nil
}

func (r *DraftRepository) ListDayResults(ctx context.Context, draftID int64, day int) ([]draft.DayResultView, error) {
	query, args, err := qb.Select(
		"dr.draft_id AS draft_id",
		"dr.tournament_day AS tournament_day",
		"dr.rikishi_id AS rikishi_id",
		"dr.opponent_id AS opponent_id",
		"dr.win AS win",
		"dr.loss AS loss",
		"dr.fusensho AS fusensho",
		"dr.points AS points",
		"rikishi.ring_name AS ring_name",
		"own_rank.rank_no AS rank_no",
		"opp_rank.rank_no AS opponent_rank_no",
	).
		From("days_results dr").
		Join("JOIN drafts ON drafts.id = dr.draft_id").
		Join("JOIN rikishi ON rikishi.id = dr.rikishi_id").
		Join("JOIN banzuke own_entry ON own_entry.basho_id = drafts.basho_id AND own_entry.rikishi_id = dr.rikishi_id").
		Join("JOIN ranks own_rank ON own_rank.id = own_entry.rank_id").
		Join("JOIN banzuke opp_entry ON opp_entry.basho_id = drafts.basho_id AND opp_entry.rikishi_id = dr.opponent_id").
		Join("JOIN ranks opp_rank ON opp_rank.id = opp_entry.rank_id").
		Where(
			qb.Eq("dr.draft_id", draftID),
			qb.Eq("dr.tournament_day", day),
		).
		OrderBy("own_rank.rank_no", "dr.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list day results query: %w", err)
	}

	var rows []dayResultViewRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list day results: %w", err)
	}

	out := make([]draft.DayResultView, 0, len(rows))
	for _, row := range rows {
		out = append(out, dayResultViewToDomain(row))
	}
	return out, nil
}

func (r *DraftRepository) BumpLastSeen(ctx context.Context, draftID int64, day int) error {
	query, args, err := qb.Update("drafts").
		Set("last_seen", day).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", draftID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build bump last seen query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bump last seen: %w", err)
	}
	return nil
}

// CommitSpecialPrizes claims the prizes flag and applies every award in
// one transaction. A mid-award failure rolls the claim back, leaving the
// attribution retryable.
func (r *DraftRepository) CommitSpecialPrizes(ctx context.Context, draftID int64, rikishiIDs []int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx commit special prizes: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	claimed, err := claimFlag(ctx, tx, draftID, "prizes_awarded")
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	for _, rikishiID := range rikishiIDs {
		if err := awardSpecialPrize(ctx, tx, draftID, rikishiID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit special prizes tx: %w", err)
	}
	return true, nil
}

// CommitBashoWinner claims the winner flag and credits the champion's
// pick in one transaction.
func (r *DraftRepository) CommitBashoWinner(ctx context.Context, draftID, rikishiID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx commit basho winner: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	claimed, err := claimFlag(ctx, tx, draftID, "winner_awarded")
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	if err := awardBashoWinner(ctx, tx, draftID, rikishiID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit basho winner tx: %w", err)
	}
	return true, nil
}

func claimFlag(ctx context.Context, tx *sqlx.Tx, draftID int64, column string) (bool, error) {
	query, args, err := qb.Update("drafts").
		Set(column, true).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", draftID),
			qb.Eq(column, false),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build claim %s query: %w", column, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim %s rows affected: %w", column, err)
	}
	return affected > 0, nil
}

func awardSpecialPrize(ctx context.Context, tx *sqlx.Tx, draftID, rikishiID int64) error {
	query, args, err := qb.Update("draft_picks").
		SetExpr("special_prizes", "special_prizes + 1").
		SetExpr("points", "points + ?", scoring.SpecialPrizePoints).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("draft_id", draftID),
			qb.Eq("rikishi_id", rikishiID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build award special prize query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("award special prize: %w", err)
	}
	return nil
}

func awardBashoWinner(ctx context.Context, tx *sqlx.Tx, draftID, rikishiID int64) error {
	query, args, err := qb.Update("draft_picks").
		Set("basho_winner", true).
		SetExpr("points", "points + ?", scoring.YushoPoints).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("draft_id", draftID),
			qb.Eq("rikishi_id", rikishiID),
			qb.Eq("basho_winner", false),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build award basho winner query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("award basho winner: %w", err)
	}
	return nil
}

func (r *DraftRepository) ListBashoWinners(ctx context.Context, bashoID int64) ([]string, error) {
	query, args, err := qb.Select("DISTINCT rikishi.ring_name").
		From("draft_picks").
		Join("JOIN drafts ON drafts.id = draft_picks.draft_id").
		Join("JOIN rikishi ON rikishi.id = draft_picks.rikishi_id").
		Where(
			qb.Eq("drafts.basho_id", bashoID),
			qb.Eq("draft_picks.basho_winner", true),
		).
		OrderBy("rikishi.ring_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list basho winners query: %w", err)
	}

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, fmt.Errorf("list basho winners: %w", err)
	}
	return names, nil
}

func (r *DraftRepository) ListPrizeWinners(ctx context.Context, bashoID int64) ([]string, error) {
	query, args, err := qb.Select("DISTINCT rikishi.ring_name").
		From("draft_picks").
		Join("JOIN drafts ON drafts.id = draft_picks.draft_id").
		Join("JOIN rikishi ON rikishi.id = draft_picks.rikishi_id").
		Where(
			qb.Eq("drafts.basho_id", bashoID),
			qb.Expr("draft_picks.special_prizes > 0"),
		).
		OrderBy("rikishi.ring_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list prize winners query: %w", err)
	}

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, fmt.Errorf("list prize winners: %w", err)
	}
	return names, nil
}
