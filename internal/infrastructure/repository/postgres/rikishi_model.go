package postgres

import (
	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
)

type rikishiInsertModel struct {
	RingName string `db:"ring_name"`
}

type banzukeInsertModel struct {
	BashoID   int64 `db:"basho_id"`
	RikishiID int64 `db:"rikishi_id"`
	RankID    int64 `db:"rank_id"`
	CallUp    bool  `db:"call_up"`
}

type rankedRikishiRowModel struct {
	RikishiID   int64  `db:"rikishi_id"`
	RingName    string `db:"ring_name"`
	RankNo      int    `db:"rank_no"`
	RankName    string `db:"rank_name"`
	Cardinality string `db:"cardinality"`
}

func rankedToDomain(row rankedRikishiRowModel) rikishi.RankedRikishi {
	return rikishi.RankedRikishi{
		RikishiID:   row.RikishiID,
		RingName:    row.RingName,
		RankNo:      row.RankNo,
		RankName:    row.RankName,
		Cardinality: row.Cardinality,
	}
}
