package handlers

import (
	"encoding/json"
	"net/http"

	"streamvault/models"
)

// Wire shapes the simulator serves. They mirror the gateway contract's
// snake_case convention.

// ProfileResponse represents a profile on the wire.
type ProfileResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	IsKid  bool   `json:"is_kid"`
}

// UserResponse represents an account with its profiles.
type UserResponse struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	SubscriptionPlan string            `json:"subscription_plan"`
	Profiles         []ProfileResponse `json:"profiles"`
}

// GenreResponse represents a content genre.
type GenreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ContentResponse represents a content item on the wire.
type ContentResponse struct {
	ID             string          `json:"id"`
	ContentType    string          `json:"content_type"`
	Title          string          `json:"title"`
	Overview       string          `json:"overview"`
	PosterPath     string          `json:"poster_path"`
	BackdropPath   string          `json:"backdrop_path"`
	ReleaseDate    string          `json:"release_date"`
	Runtime        int             `json:"runtime"`
	SeasonCount    int             `json:"number_of_seasons"`
	VoteAverage    float64         `json:"vote_average"`
	Genres         []GenreResponse `json:"genres"`
	MaturityRating string          `json:"maturity_rating"`
}

// WatchlistItemResponse represents one watchlist entry.
type WatchlistItemResponse struct {
	ContentID string `json:"content_id"`
}

func profileToWire(p models.Profile) ProfileResponse {
	return ProfileResponse{ID: p.ID, Name: p.Name, Avatar: p.Avatar, IsKid: p.IsKid}
}

func userToWire(u models.User) UserResponse {
	resp := UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		SubscriptionPlan: string(u.SubscriptionPlan),
		Profiles:         make([]ProfileResponse, 0, len(u.Profiles)),
	}
	for _, p := range u.Profiles {
		resp.Profiles = append(resp.Profiles, profileToWire(p))
	}
	return resp
}

func contentToWire(rec contentRecord) ContentResponse {
	resp := ContentResponse{
		ID:             rec.ID,
		ContentType:    rec.ContentType,
		Title:          rec.Title,
		Overview:       rec.Overview,
		PosterPath:     rec.PosterPath,
		BackdropPath:   rec.BackdropPath,
		ReleaseDate:    rec.ReleaseDate,
		Runtime:        rec.Runtime,
		SeasonCount:    rec.SeasonCount,
		VoteAverage:    rec.VoteAverage,
		Genres:         make([]GenreResponse, 0, len(rec.Genres)),
		MaturityRating: rec.MaturityRating,
	}
	for _, g := range rec.Genres {
		resp.Genres = append(resp.Genres, GenreResponse{ID: g.ID, Name: g.Name})
	}
	return resp
}

func contentListToWire(recs []contentRecord) []ContentResponse {
	out := make([]ContentResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, contentToWire(rec))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
