package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jr0senblum/honbasho/internal/domain/basho"
	qb "github.com/jr0senblum/honbasho/internal/platform/querybuilder"
)

type BashoRepository struct {
	db *sqlx.DB
}

func NewBashoRepository(db *sqlx.DB) *BashoRepository {
	return &BashoRepository{db: db}
}

func (r *BashoRepository) GetByID(ctx context.Context, id int64) (basho.Basho, bool, error) {
	query, args, err := qb.Select("*").
		From("basho").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return basho.Basho{}, false, fmt.Errorf("build get basho query: %w", err)
	}

	var row bashoTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return basho.Basho{}, false, nil
		}
		return basho.Basho{}, false, fmt.Errorf("get basho: %w", err)
	}
	return bashoToDomain(row), true, nil
}

func (r *BashoRepository) ListByYear(ctx context.Context, loaded bool, now time.Time) ([]basho.Basho, error) {
	query, args, err := qb.Select("*").
		From("basho").
		Where(
			qb.Eq("start_year", now.Year()),
			qb.Eq("banzuke_loaded", loaded),
			qb.Expr("start_month <= ?", int(now.Month())),
		).
		OrderBy("start_month").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list basho by year query: %w", err)
	}

	var rows []bashoTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list basho by year: %w", err)
	}

	out := make([]basho.Basho, 0, len(rows))
	for _, row := range rows {
		out = append(out, bashoToDomain(row))
	}
	return out, nil
}

func (r *BashoRepository) ListNotFuture(ctx context.Context, now time.Time) ([]basho.Basho, error) {
	query, args, err := qb.Select("*").
		From("basho").
		Where(qb.Expr("make_date(start_year, start_month, start_day) <= ?", now)).
		OrderBy("start_year", "start_month").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list started basho query: %w", err)
	}

	var rows []bashoTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list started basho: %w", err)
	}

	out := make([]basho.Basho, 0, len(rows))
	for _, row := range rows {
		out = append(out, bashoToDomain(row))
	}
	return out, nil
}

func (r *BashoRepository) GetByStart(ctx context.Context, year, month int) (basho.Basho, bool, error) {
	query, args, err := qb.Select("*").
		From("basho").
		Where(
			qb.Eq("start_year", year),
			qb.Eq("start_month", month),
		).
		ToSQL()
	if err != nil {
		return basho.Basho{}, false, fmt.Errorf("build get basho by start query: %w", err)
	}

	var row bashoTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return basho.Basho{}, false, nil
		}
		return basho.Basho{}, false, fmt.Errorf("get basho by start: %w", err)
	}
	return bashoToDomain(row), true, nil
}

func (r *BashoRepository) AdvanceUpdateDay(ctx context.Context, id int64, day int) (bool, error) {
	query, args, err := qb.Update("basho").
		Set("last_update_day", day).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("last_update_day", day-1),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build advance basho update day query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("advance basho update day: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance basho update day rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *BashoRepository) MarkBanzukeLoaded(ctx context.Context, id int64) error {
	query, args, err := qb.Update("basho").
		Set("banzuke_loaded", true).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark banzuke loaded query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark banzuke loaded: %w", err)
	}
	return nil
}
