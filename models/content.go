package models

// ContentType discriminates movies from TV shows.
type ContentType string

const (
	ContentMovie ContentType = "movie"
	ContentTV    ContentType = "tv"
)

// Video is a trailer or clip attached to a content item.
type Video struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

// ContentItem is a catalog entry as returned by the gateway. It is a value
// object: never mutated after fetch, replaced wholesale on refetch.
type ContentItem struct {
	ID             string      `json:"id"`
	Type           ContentType `json:"contentType"`
	Title          string      `json:"title"`
	PosterPath     string      `json:"posterPath,omitempty"`
	BackdropPath   string      `json:"backdropPath,omitempty"`
	Overview       string      `json:"overview,omitempty"`
	VoteAverage    float64     `json:"voteAverage"`
	ReleaseYear    int         `json:"releaseYear,omitempty"`
	Genres         []string    `json:"genres,omitempty"`
	RuntimeMinutes int         `json:"runtimeMinutes,omitempty"` // movies
	SeasonCount    int         `json:"seasonCount,omitempty"`    // tv shows
	MaturityRating string      `json:"maturityRating,omitempty"`
	Videos         []Video     `json:"videos,omitempty"`
}
