package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// corsMiddleware allows cross-origin requests from development frontends.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter constructs the simulator's router: public auth endpoints with a
// per-IP login throttle, and token-protected content endpoints.
func NewRouter(sim *Simulator) *mux.Router {
	auth := NewAuthHandler(sim)
	content := NewContentHandler(sim)
	watchlist := NewWatchlistHandler(sim)
	loginLimiter := NewIPRateLimiter(rate.Every(12*time.Second), 5)

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", auth.Register).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/auth/login", loginLimiter.Middleware(auth.Login)).Methods(http.MethodPost, http.MethodOptions)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(AuthMiddleware(sim))
	protected.HandleFunc("/auth/me", auth.Me).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/profiles", auth.CreateProfile).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/content/trending", content.Trending).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/content/search", content.Search).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/movies/popular", content.MoviesPopular).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/tv/popular", content.TVPopular).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/watchlist/{profileID}", watchlist.List).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/watchlist/{profileID}", watchlist.Add).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/watchlist/{profileID}/{contentID}", watchlist.Remove).Methods(http.MethodDelete, http.MethodOptions)

	return r
}
