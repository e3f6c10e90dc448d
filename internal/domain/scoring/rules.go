package scoring

// TechniqueFusen is the sentinel technique for forfeit wins. A fusen win
// still earns the base point but never an upset kicker.
const TechniqueFusen = "fusen"

const (
	// BaseWinPoints is awarded for every win, forfeit included.
	BaseWinPoints = 1
	// KachikoshiBonus rewards the win that secures a winning record
	// (the 8th, i.e. exactly 7 wins entering the bout).
	KachikoshiBonus = 2
	// TenthWinBonus rewards the 10th win (exactly 9 entering the bout).
	TenthWinBonus = 1
	// SpecialPrizePoints is added per sansho a pick earns.
	SpecialPrizePoints = 2
	// YushoPoints is added to the pick holding the basho champion.
	YushoPoints = 10
)

// Tier buckets rank numbers for upset computation. Maegashira and below
// collapse into one bucket.
type Tier int

const (
	TierYokozuna   Tier = 1
	TierOzeki      Tier = 2
	TierSekiwake   Tier = 3
	TierKomusubi   Tier = 4
	TierMaegashira Tier = 5
)

// TierOf buckets a banzuke rank number.
func TierOf(rankNo int) Tier {
	if rankNo > 4 {
		return TierMaegashira
	}
	return Tier(rankNo)
}

// upsetKicker[winner tier][loser tier] holds the bonus for a lower tier
// beating a higher one. Kept as an explicit table so the point rules stay
// auditable in one place.
var upsetKicker = map[Tier]map[Tier]int{
	TierMaegashira: {TierKomusubi: 1, TierSekiwake: 2, TierOzeki: 3, TierYokozuna: 5},
	TierKomusubi:   {TierSekiwake: 1, TierOzeki: 2, TierYokozuna: 3},
	TierSekiwake:   {TierOzeki: 1, TierYokozuna: 2},
	TierOzeki:      {TierYokozuna: 1},
}

// UpsetKicker returns the rank-gap bonus for a win, zero when the winner
// was the equal-or-higher-ranked side.
func UpsetKicker(winnerRankNo, loserRankNo int) int {
	return upsetKicker[TierOf(winnerRankNo)][TierOf(loserRankNo)]
}

// MilestoneBonus is evaluated on the winner's win count entering the
// bout. The two milestones are mutually exclusive and independent of
// technique.
func MilestoneBonus(winsBefore int) int {
	switch winsBefore {
	case 7:
		return KachikoshiBonus
	case 9:
		return TenthWinBonus
	default:
		return 0
	}
}

// Points computes the winner's full award for one bout. Losers always
// score zero and never reach this function.
func Points(winnerRankNo, loserRankNo int, technique string, winsBefore int) int {
	points := BaseWinPoints + MilestoneBonus(winsBefore)
	if technique != TechniqueFusen {
		points += UpsetKicker(winnerRankNo, loserRankNo)
	}
	return points
}
