package basho

import (
	"context"
	"time"
)

// Repository exposes basho read operations plus the shared day-marker CAS.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Basho, bool, error)
	// ListByYear returns the basho of now's calendar year whose start
	// month is not in the future, filtered on the banzuke_loaded flag.
	ListByYear(ctx context.Context, loaded bool, now time.Time) ([]Basho, error)
	ListNotFuture(ctx context.Context, now time.Time) ([]Basho, error)
	GetByStart(ctx context.Context, year, month int) (Basho, bool, error)
	// AdvanceUpdateDay sets last_update_day to day only when it currently
	// equals day-1, reporting whether a row changed. Zero rows is an
	// expected outcome under concurrent callers, not an error.
	AdvanceUpdateDay(ctx context.Context, id int64, day int) (bool, error)
	MarkBanzukeLoaded(ctx context.Context, id int64) error
}
