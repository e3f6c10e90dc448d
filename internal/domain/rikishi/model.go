package rikishi

import (
	"fmt"
	"strconv"
	"strings"
)

// Rank numbers are ordered tiers: lower is higher-ranked.
const (
	RankYokozuna = 1
	RankOzeki    = 2
	RankSekiwake = 3
	RankKomusubi = 4

	// CallUpRankNo is the placeholder rank for substitutes pulled onto a
	// banzuke mid-basho; their true rank is unknown to this system.
	CallUpRankNo = 44
)

const (
	SideEast = "EAST"
	SideWest = "WEST"
)

// Rikishi is a wrestler competing across tournaments. Rows are created
// lazily the first time a source document mentions a ring name.
type Rikishi struct {
	ID       int64
	RingName string
}

// Rank is one ordered banzuke tier with an East/West side.
type Rank struct {
	ID          int64
	RankNo      int
	RankName    string
	Cardinality string
}

// BanzukeEntry binds a rikishi to one basho at a rank. Unique per
// (basho, rikishi); call_up marks substitutes absent from the published
// banzuke.
type BanzukeEntry struct {
	ID        int64
	BashoID   int64
	RikishiID int64
	RankID    int64
	CallUp    bool
}

// RankedRikishi is the banzuke join used for bout annotation and display.
type RankedRikishi struct {
	RikishiID   int64
	RingName    string
	RankNo      int
	RankName    string
	Cardinality string
}

// BanzukeRow pairs the East and West holders of one rank number for
// display.
type BanzukeRow struct {
	RankNo   int
	RankName string
	East     string
	West     string
}

// BanzukeSlot is one scraped banzuke position.
type BanzukeSlot struct {
	RingName string
	RankNo   int
	Side     string
}

// RankNoFromShort maps a sumodb short rank code to a rank number:
// Y, O, S, K are the named tiers; M<n> (and lower divisions, J<n> etc.)
// map to n+4.
func RankNoFromShort(code string) (int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, fmt.Errorf("empty rank code")
	}
	switch code {
	case "Y":
		return RankYokozuna, nil
	case "O":
		return RankOzeki, nil
	case "S":
		return RankSekiwake, nil
	case "K":
		return RankKomusubi, nil
	}
	n, err := strconv.Atoi(code[1:])
	if err != nil {
		return 0, fmt.Errorf("parse rank code %q: %w", code, err)
	}
	return n + 4, nil
}
