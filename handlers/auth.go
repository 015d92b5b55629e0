package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"streamvault/models"
)

// AuthHandler handles authentication and profile endpoints.
type AuthHandler struct {
	sim *Simulator
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sim *Simulator) *AuthHandler {
	return &AuthHandler{sim: sim}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	SubscriptionPlan string `json:"subscription_plan"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ProfileCreateRequest represents the profile creation request body.
type ProfileCreateRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	IsKid  bool   `json:"is_kid"`
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	plan := models.ParsePlan(req.SubscriptionPlan)
	if err := h.sim.Register(req.Email, req.Password, req.FirstName, plan); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Login authenticates a user and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, ttl, err := h.sim.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
	})
}

// Me returns the account that owns the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, userToWire(user))
}

// CreateProfile adds a profile to the authenticated account.
func (h *AuthHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req ProfileCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "profile name is required")
		return
	}

	profile, err := h.sim.CreateProfile(user.ID, models.ProfileParams{
		Name:   req.Name,
		Avatar: req.Avatar,
		IsKid:  req.IsKid,
	})
	if err != nil {
		if errors.Is(err, ErrProfileLimit) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, profileToWire(profile))
}
