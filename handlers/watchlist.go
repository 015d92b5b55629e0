package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// WatchlistHandler serves the per-profile watchlist endpoints.
type WatchlistHandler struct {
	sim *Simulator
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(sim *Simulator) *WatchlistHandler {
	return &WatchlistHandler{sim: sim}
}

// WatchlistAddRequest represents the add request body.
type WatchlistAddRequest struct {
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
}

// List serves a profile's watchlist in insertion order.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID := mux.Vars(r)["profileID"]
	ids := h.sim.Watchlist(profileID)
	items := make([]WatchlistItemResponse, 0, len(ids))
	for _, id := range ids {
		items = append(items, WatchlistItemResponse{ContentID: id})
	}
	writeJSON(w, http.StatusOK, items)
}

// Add puts a content item on a profile's watchlist. Duplicates are a 400.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	profileID := mux.Vars(r)["profileID"]

	var req WatchlistAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "content_id is required")
		return
	}

	if err := h.sim.AddToWatchlist(profileID, req.ContentID); err != nil {
		if errors.Is(err, ErrDuplicateItem) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update watchlist")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// Remove takes a content item off a profile's watchlist. Absent items are
// a 404.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	profileID, contentID := vars["profileID"], vars["contentID"]

	if err := h.sim.RemoveFromWatchlist(profileID, contentID); err != nil {
		if errors.Is(err, ErrItemNotInList) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update watchlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
