package handlers

import "strings"

// contentRecord is the server-side content row, serialized to the wire
// format by the content handler.
type contentRecord struct {
	ID             string
	ContentType    string
	Title          string
	Overview       string
	PosterPath     string
	BackdropPath   string
	ReleaseDate    string
	Runtime        int
	SeasonCount    int
	VoteAverage    float64
	Genres         []genre
	MaturityRating string
}

type genre struct {
	ID   int
	Name string
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func seedTrending() []contentRecord {
	return []contentRecord{
		{
			ID: "t-1001", ContentType: "movie", Title: "Midnight Cartel",
			Overview:       "An undercover customs agent unravels a smuggling ring from the inside.",
			PosterPath:     "/posters/midnight-cartel.jpg",
			ReleaseDate:    "2024-11-08", Runtime: 128, VoteAverage: 7.4,
			Genres:         []genre{{ID: 80, Name: "Crime"}, {ID: 53, Name: "Thriller"}},
			MaturityRating: "R",
		},
		{
			ID: "t-1002", ContentType: "tv", Title: "Harbor Lights",
			Overview:       "Three generations run a failing lighthouse hotel on the Atlantic coast.",
			PosterPath:     "/posters/harbor-lights.jpg",
			ReleaseDate:    "2023-03-17", SeasonCount: 4, VoteAverage: 8.1,
			Genres:         []genre{{ID: 18, Name: "Drama"}},
			MaturityRating: "TV-PG",
		},
		{
			ID: "t-1003", ContentType: "movie", Title: "Paper Rockets",
			Overview:       "Two kids in a mill town build a backyard rocket for the county fair.",
			PosterPath:     "/posters/paper-rockets.jpg",
			ReleaseDate:    "2025-06-20", Runtime: 96, VoteAverage: 7.9,
			Genres:         []genre{{ID: 10751, Name: "Family"}},
			MaturityRating: "PG",
		},
	}
}

func seedMovies() []contentRecord {
	return []contentRecord{
		{
			ID: "m-2001", ContentType: "movie", Title: "The Long Meridian",
			Overview:       "A cartographer crosses a collapsing empire to deliver one last map.",
			PosterPath:     "/posters/long-meridian.jpg",
			ReleaseDate:    "2024-02-02", Runtime: 141, VoteAverage: 7.7,
			Genres:         []genre{{ID: 12, Name: "Adventure"}, {ID: 36, Name: "History"}},
			MaturityRating: "PG-13",
		},
		{
			ID: "m-2002", ContentType: "movie", Title: "Sunday Static",
			Overview:       "A late-night radio host takes a call she was never meant to receive.",
			PosterPath:     "/posters/sunday-static.jpg",
			ReleaseDate:    "2023-10-27", Runtime: 104, VoteAverage: 6.9,
			Genres:         []genre{{ID: 27, Name: "Horror"}},
			MaturityRating: "R",
		},
		{
			ID: "m-2003", ContentType: "movie", Title: "Clover and the Comet",
			Overview:       "A stray dog follows a comet across the night sky to find her way home.",
			PosterPath:     "/posters/clover-comet.jpg",
			ReleaseDate:    "2025-01-10", Runtime: 88, VoteAverage: 8.3,
			Genres:         []genre{{ID: 16, Name: "Animation"}, {ID: 10751, Name: "Family"}},
			MaturityRating: "G",
		},
	}
}

func seedTVShows() []contentRecord {
	return []contentRecord{
		{
			ID: "s-3001", ContentType: "tv", Title: "Switchboard",
			Overview:       "Operators at a 1960s phone exchange overhear the wrong conversation.",
			PosterPath:     "/posters/switchboard.jpg",
			ReleaseDate:    "2022-09-09", SeasonCount: 3, VoteAverage: 8.5,
			Genres:         []genre{{ID: 9648, Name: "Mystery"}},
			MaturityRating: "TV-14",
		},
		{
			ID: "s-3002", ContentType: "tv", Title: "Grandma's Garage",
			Overview:       "A retired mechanic teaches neighborhood kids to rebuild a classic car.",
			PosterPath:     "/posters/grandmas-garage.jpg",
			ReleaseDate:    "2024-05-03", SeasonCount: 2, VoteAverage: 7.2,
			Genres:         []genre{{ID: 10751, Name: "Family"}},
			MaturityRating: "TV-G",
		},
		{
			ID: "s-3003", ContentType: "tv", Title: "Night Shift at the Aquarium",
			Overview:       "Something in tank seven only moves after the lights go out.",
			PosterPath:     "/posters/night-shift-aquarium.jpg",
			ReleaseDate:    "2023-08-18", SeasonCount: 1, VoteAverage: 7.8,
			Genres:         []genre{{ID: 10765, Name: "Sci-Fi & Fantasy"}},
			MaturityRating: "TV-MA",
		},
	}
}
