package draft

// Draft is one user's set of picks for one basho. LastDaysResultsLoaded
// is the CAS-protected progress counter: day N is only ever scored when
// the counter reads N-1, and advancing it is the last write of the
// scoring transaction.
type Draft struct {
	ID                    int64
	UserID                int64
	BashoID               int64
	Name                  string
	LastDaysResultsLoaded int
	LastSeen              int
	PrizesAwarded         bool
	WinnerAwarded         bool
}

// DraftPick binds a drafted rikishi to a player within a draft and
// accumulates running tallies. Only the scoring pipeline and prize
// attribution mutate it.
type DraftPick struct {
	ID            int64
	DraftID       int64
	PlayerID      int64
	RikishiID     int64
	Wins          int
	Losses        int
	Points        int
	SpecialPrizes int
	BashoWinner   bool
}

// DayResult is one rikishi's outcome on one tournament day within a
// draft. Unique per (draft, day, rikishi); re-inserting an existing key
// is a no-op, which is the idempotence guard for the whole pipeline.
type DayResult struct {
	DraftID       int64
	TournamentDay int
	RikishiID     int64
	OpponentID    int64
	Win           bool
	Loss          bool
	Fusensho      bool
	Points        int
}

// DayResultView is the read model for a day's results, enriched with the
// banzuke ranks of both sides.
type DayResultView struct {
	DayResult
	RingName       string
	RankNo         int
	OpponentRankNo int
}
