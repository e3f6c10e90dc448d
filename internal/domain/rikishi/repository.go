package rikishi

import "context"

// Repository exposes rikishi and banzuke persistence. Creation paths are
// idempotent per uniqueness constraint so roster resolution can be called
// once per bout side.
type Repository interface {
	GetIDByRingName(ctx context.Context, ringName string) (int64, bool, error)
	Create(ctx context.Context, ringName string) (int64, error)
	HasBanzukeEntry(ctx context.Context, bashoID, rikishiID int64) (bool, error)
	CreateBanzukeEntry(ctx context.Context, entry BanzukeEntry) error
	// GetRanked returns the banzuke join row for one rikishi in one basho.
	GetRanked(ctx context.Context, bashoID int64, ringName string) (RankedRikishi, bool, error)
	// ListRanked returns the non-call-up banzuke for a basho ordered by
	// rank number.
	ListRanked(ctx context.Context, bashoID int64) ([]RankedRikishi, error)
	GetRankID(ctx context.Context, rankNo int, cardinality string) (int64, error)
}
