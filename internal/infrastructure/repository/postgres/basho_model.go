package postgres

import (
	"time"

	"github.com/jr0senblum/honbasho/internal/domain/basho"
)

type bashoTableModel struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	City          string    `db:"city"`
	StartYear     int       `db:"start_year"`
	StartMonth    int       `db:"start_month"`
	StartDay      int       `db:"start_day"`
	LastUpdateDay int       `db:"last_update_day"`
	BanzukeLoaded bool      `db:"banzuke_loaded"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func bashoToDomain(row bashoTableModel) basho.Basho {
	return basho.Basho{
		ID:            row.ID,
		Name:          row.Name,
		City:          row.City,
		StartYear:     row.StartYear,
		StartMonth:    row.StartMonth,
		StartDay:      row.StartDay,
		LastUpdateDay: row.LastUpdateDay,
		BanzukeLoaded: row.BanzukeLoaded,
	}
}
