package models

import "time"

// CacheEntry is a snapshot of the cached content lists for one profile.
// Watchlist membership reflects optimistic mutations, not only committed
// server state. FetchedAt is zero until the first population completes.
type CacheEntry struct {
	Trending  []ContentItem   `json:"trending"`
	Movies    []ContentItem   `json:"movies"`
	TVShows   []ContentItem   `json:"tvShows"`
	Watchlist map[string]bool `json:"watchlist"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Loaded reports whether the entry has been populated at least once.
func (e CacheEntry) Loaded() bool {
	return !e.FetchedAt.IsZero()
}
