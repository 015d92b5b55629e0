package models

// MutationAction is the direction of a watchlist mutation.
type MutationAction string

const (
	MutationAdd    MutationAction = "add"
	MutationRemove MutationAction = "remove"
)

// MutationStatus tracks a watchlist mutation through its round trip.
type MutationStatus string

const (
	MutationPending    MutationStatus = "pending"
	MutationCommitted  MutationStatus = "committed"
	MutationRolledBack MutationStatus = "rolledback"
)

// WatchlistMutation is an ephemeral record of one optimistic watchlist
// change. It exists only for the duration of the gateway round trip and is
// never persisted.
type WatchlistMutation struct {
	ID        string         `json:"id"`
	ProfileID string         `json:"profileId"`
	ContentID string         `json:"contentId"`
	Action    MutationAction `json:"action"`
	Status    MutationStatus `json:"status"`
}
