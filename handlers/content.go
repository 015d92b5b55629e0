package handlers

import (
	"net/http"
	"strings"
)

// ContentHandler serves the profile-scoped content lists and search.
type ContentHandler struct {
	sim *Simulator
}

// NewContentHandler creates a new content handler.
func NewContentHandler(sim *Simulator) *ContentHandler {
	return &ContentHandler{sim: sim}
}

// Trending serves the trending list.
func (h *ContentHandler) Trending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contentListToWire(h.sim.Trending()))
}

// MoviesPopular serves the popular movie list.
func (h *ContentHandler) MoviesPopular(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contentListToWire(h.sim.MoviesPopular()))
}

// TVPopular serves the popular TV list.
func (h *ContentHandler) TVPopular(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contentListToWire(h.sim.TVPopular()))
}

// Search serves title search results for the q query parameter.
func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []ContentResponse{})
		return
	}
	writeJSON(w, http.StatusOK, contentListToWire(h.sim.Search(query)))
}
