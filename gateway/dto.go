package gateway

import (
	"strconv"

	"streamvault/models"
)

// Wire shapes for the JSON API. Field names follow the gateway's snake_case
// convention; mapping to models happens here so the rest of the core never
// sees wire types.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type registerRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	SubscriptionPlan string `json:"subscription_plan"`
}

type profileDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	IsKid  bool   `json:"is_kid"`
}

type userDTO struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	SubscriptionPlan string       `json:"subscription_plan"`
	Profiles         []profileDTO `json:"profiles"`
}

type profileCreateRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	IsKid  bool   `json:"is_kid"`
}

type genreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type videoDTO struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

type contentDTO struct {
	ID             string     `json:"id"`
	ContentType    string     `json:"content_type"`
	Title          string     `json:"title"`
	Overview       string     `json:"overview"`
	PosterPath     string     `json:"poster_path"`
	BackdropPath   string     `json:"backdrop_path"`
	ReleaseDate    string     `json:"release_date"`
	Runtime        int        `json:"runtime"`
	SeasonCount    int        `json:"number_of_seasons"`
	VoteAverage    float64    `json:"vote_average"`
	Genres         []genreDTO `json:"genres"`
	Videos         []videoDTO `json:"videos"`
	MaturityRating string     `json:"maturity_rating"`
}

type watchlistAddRequest struct {
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
}

type watchlistItemDTO struct {
	ContentID string `json:"content_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (p profileDTO) toModel() models.Profile {
	return models.Profile{ID: p.ID, Name: p.Name, Avatar: p.Avatar, IsKid: p.IsKid}
}

func (u userDTO) toModel() models.User {
	user := models.User{
		ID:               u.ID,
		Email:            u.Email,
		SubscriptionPlan: models.ParsePlan(u.SubscriptionPlan),
		Profiles:         make([]models.Profile, 0, len(u.Profiles)),
	}
	for _, p := range u.Profiles {
		user.Profiles = append(user.Profiles, p.toModel())
	}
	return user
}

func (c contentDTO) toModel() models.ContentItem {
	item := models.ContentItem{
		ID:             c.ID,
		Type:           models.ContentType(c.ContentType),
		Title:          c.Title,
		Overview:       c.Overview,
		PosterPath:     c.PosterPath,
		BackdropPath:   c.BackdropPath,
		ReleaseYear:    parseYear(c.ReleaseDate),
		RuntimeMinutes: c.Runtime,
		SeasonCount:    c.SeasonCount,
		VoteAverage:    c.VoteAverage,
		MaturityRating: c.MaturityRating,
	}
	for _, g := range c.Genres {
		item.Genres = append(item.Genres, g.Name)
	}
	for _, v := range c.Videos {
		item.Videos = append(item.Videos, models.Video{Site: v.Site, Type: v.Type, Key: v.Key})
	}
	return item
}

func contentItems(dtos []contentDTO) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, d.toModel())
	}
	return items
}

// parseYear extracts the year from a "2006-01-02" release date. Returns 0
// when the date is absent or malformed.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
