package catalog

import (
	"strings"

	"streamvault/models"
)

// Maximum ratings applied to kids profiles unless overridden.
const (
	DefaultKidsMaxMovieRating = "PG"
	DefaultKidsMaxTVRating    = "TV-PG"
)

// Rating ladders, lower level = more restrictive.
var movieRatingOrder = map[string]int{
	"G":     1,
	"PG":    2,
	"PG-13": 3,
	"R":     4,
	"NC-17": 5,
}

var tvRatingOrder = map[string]int{
	"TV-Y":  1,
	"TV-Y7": 2,
	"TV-G":  3,
	"TV-PG": 4,
	"TV-14": 5,
	"TV-MA": 6,
}

// ratingLevel returns the restrictiveness level for a rating, 0 if unknown.
func ratingLevel(rating string, contentType models.ContentType) int {
	rating = strings.ToUpper(strings.TrimSpace(rating))
	if rating == "" {
		return 0
	}
	if contentType == models.ContentMovie {
		return movieRatingOrder[rating]
	}
	return tvRatingOrder[rating]
}

// ratingAllowed reports whether an item's rating fits under the maximum.
// Unrated or unknown-rated content is blocked: kids mode fails closed.
func ratingAllowed(item models.ContentItem, maxMovie, maxTV string) bool {
	max := maxTV
	if item.Type == models.ContentMovie {
		max = maxMovie
	}
	if strings.TrimSpace(max) == "" {
		return true
	}

	itemLevel := ratingLevel(item.MaturityRating, item.Type)
	maxLevel := ratingLevel(max, item.Type)
	if itemLevel == 0 || maxLevel == 0 {
		return false
	}
	return itemLevel <= maxLevel
}

// filterByRatings removes items a kids profile may not see.
func filterByRatings(items []models.ContentItem, maxMovie, maxTV string) []models.ContentItem {
	filtered := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if ratingAllowed(item, maxMovie, maxTV) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
