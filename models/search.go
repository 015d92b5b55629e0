package models

// SearchState is a snapshot of the search coordinator. Generation increments
// every time a query is issued or the state is reset; a gateway response is
// applied only if its generation still matches, which is the sole ordering
// guarantee against network reordering.
type SearchState struct {
	Query      string        `json:"query"`
	Generation uint64        `json:"generation"`
	Results    []ContentItem `json:"results"`
}
