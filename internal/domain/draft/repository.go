package draft

import "context"

// Repository exposes draft reads plus the transactional scoring commit.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Draft, bool, error)
	ListByBasho(ctx context.Context, bashoID int64) ([]Draft, error)
	ListPicks(ctx context.Context, draftID int64) ([]DraftPick, error)

	// CommitDayResults atomically inserts the day's rows (insert-if-absent
	// on the (draft, day, rikishi) key), applies the matching pick tally
	// increments for each row actually inserted, and CAS-advances the
	// draft counter from day-1 to day. It reports whether the counter
	// moved; false without error means another caller got there first and
	// every write was rolled back.
	CommitDayResults(ctx context.Context, draftID int64, day int, results []DayResult) (bool, error)

	ListDayResults(ctx context.Context, draftID int64, day int) ([]DayResultView, error)
	BumpLastSeen(ctx context.Context, draftID int64, day int) error

	// CommitSpecialPrizes atomically claims the one-shot prizes flag and
	// credits each listed pick in the same transaction, reporting whether
	// this caller won the claim. A failed award rolls the claim back so a
	// later pass can retry.
	CommitSpecialPrizes(ctx context.Context, draftID int64, rikishiIDs []int64) (bool, error)

	// CommitBashoWinner does the same for the champion flag and pick.
	CommitBashoWinner(ctx context.Context, draftID, rikishiID int64) (bool, error)

	// ListBashoWinners and ListPrizeWinners back the read-only award
	// views, returning awarded ring names.
	ListBashoWinners(ctx context.Context, bashoID int64) ([]string, error)
	ListPrizeWinners(ctx context.Context, bashoID int64) ([]string, error)
}
