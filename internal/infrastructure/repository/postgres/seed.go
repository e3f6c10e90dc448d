package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
)

// BootstrapSeed loads the static rank reference rows on first boot. Every
// rank exists east and west except the call-up placeholder, which only
// needs one row. Safe to run on every start.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM ranks`); err != nil {
		return fmt.Errorf("count ranks for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := func(rankNo int, rankName, cardinality string) error {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO ranks (rank_no, rank_name, cardinality)
VALUES (:rank_no, :rank_name, :cardinality)
ON CONFLICT (rank_no, cardinality) DO NOTHING`, map[string]any{
			"rank_no":     rankNo,
			"rank_name":   rankName,
			"cardinality": cardinality,
		})
		if err != nil {
			return fmt.Errorf("bind seed rank %d %s query: %w", rankNo, cardinality, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed rank %d %s: %w", rankNo, cardinality, err)
		}
		return nil
	}

	for rankNo, rankName := range seedRankNames() {
		for _, cardinality := range []string{rikishi.SideEast, rikishi.SideWest} {
			if err := insert(rankNo, rankName, cardinality); err != nil {
				return err
			}
		}
	}
	if err := insert(rikishi.CallUpRankNo, "Call-up", rikishi.SideEast); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}

func seedRankNames() map[int]string {
	names := map[int]string{
		rikishi.RankYokozuna: "Yokozuna",
		rikishi.RankOzeki:    "Ozeki",
		rikishi.RankSekiwake: "Sekiwake",
		rikishi.RankKomusubi: "Komusubi",
	}
	// Maegashira n maps to rank_no n+4; 18 slots cover the largest
	// modern banzuke.
	for n := 1; n <= 18; n++ {
		names[n+4] = fmt.Sprintf("Maegashira %d", n)
	}
	return names
}
