package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
	qb "github.com/jr0senblum/honbasho/internal/platform/querybuilder"
)

type RikishiRepository struct {
	db *sqlx.DB
}

func NewRikishiRepository(db *sqlx.DB) *RikishiRepository {
	return &RikishiRepository{db: db}
}

func (r *RikishiRepository) GetIDByRingName(ctx context.Context, ringName string) (int64, bool, error) {
	query, args, err := qb.Select("id").
		From("rikishi").
		Where(qb.Eq("ring_name", ringName)).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build get rikishi id query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get rikishi id: %w", err)
	}
	return id, true, nil
}

// Create is idempotent on ring_name so two concurrent resolutions of the
// same wrestler converge on one row.
func (r *RikishiRepository) Create(ctx context.Context, ringName string) (int64, error) {
	insertModel := rikishiInsertModel{RingName: ringName}
	query, args, err := qb.InsertModel("rikishi", insertModel,
		"ON CONFLICT (ring_name) DO UPDATE SET ring_name = EXCLUDED.ring_name RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build create rikishi query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create rikishi: %w", err)
	}
	return id, nil
}

func (r *RikishiRepository) HasBanzukeEntry(ctx context.Context, bashoID, rikishiID int64) (bool, error) {
	query, args, err := qb.Select("id").
		From("banzuke").
		Where(
			qb.Eq("basho_id", bashoID),
			qb.Eq("rikishi_id", rikishiID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has banzuke entry query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("has banzuke entry: %w", err)
	}
	return true, nil
}

func (r *RikishiRepository) CreateBanzukeEntry(ctx context.Context, entry rikishi.BanzukeEntry) error {
	insertModel := banzukeInsertModel{
		BashoID:   entry.BashoID,
		RikishiID: entry.RikishiID,
		RankID:    entry.RankID,
		CallUp:    entry.CallUp,
	}
	query, args, err := qb.InsertModel("banzuke", insertModel, "ON CONFLICT (basho_id, rikishi_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build create banzuke entry query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create banzuke entry: %w", err)
	}
	return nil
}

func (r *RikishiRepository) GetRanked(ctx context.Context, bashoID int64, ringName string) (rikishi.RankedRikishi, bool, error) {
	query, args, err := rankedSelect().
		Where(
			qb.Eq("banzuke.basho_id", bashoID),
			qb.Eq("rikishi.ring_name", ringName),
		).
		ToSQL()
	if err != nil {
		return rikishi.RankedRikishi{}, false, fmt.Errorf("build get ranked rikishi query: %w", err)
	}

	var row rankedRikishiRowModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rikishi.RankedRikishi{}, false, nil
		}
		return rikishi.RankedRikishi{}, false, fmt.Errorf("get ranked rikishi: %w", err)
	}
	return rankedToDomain(row), true, nil
}

func (r *RikishiRepository) ListRanked(ctx context.Context, bashoID int64) ([]rikishi.RankedRikishi, error) {
	query, args, err := rankedSelect().
		Where(
			qb.Eq("banzuke.basho_id", bashoID),
			qb.Eq("banzuke.call_up", false),
		).
		OrderBy("ranks.rank_no", "ranks.cardinality").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ranked rikishi query: %w", err)
	}

	var rows []rankedRikishiRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ranked rikishi: %w", err)
	}

	out := make([]rikishi.RankedRikishi, 0, len(rows))
	for _, row := range rows {
		out = append(out, rankedToDomain(row))
	}
	return out, nil
}

func (r *RikishiRepository) GetRankID(ctx context.Context, rankNo int, cardinality string) (int64, error) {
	query, args, err := qb.Select("id").
		From("ranks").
		Where(
			qb.Eq("rank_no", rankNo),
			qb.Eq("cardinality", cardinality),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build get rank id query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("get rank id %d %s: %w", rankNo, cardinality, err)
	}
	return id, nil
}

func rankedSelect() *qb.SelectBuilder {
	return qb.Select(
		"banzuke.rikishi_id AS rikishi_id",
		"rikishi.ring_name AS ring_name",
		"ranks.rank_no AS rank_no",
		"ranks.rank_name AS rank_name",
		"ranks.cardinality AS cardinality",
	).
		From("banzuke").
		Join("JOIN rikishi ON rikishi.id = banzuke.rikishi_id").
		Join("JOIN ranks ON ranks.id = banzuke.rank_id")
}
