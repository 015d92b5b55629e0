// Package catalog maintains the per-profile cache of content lists and
// watchlist membership. Entries for inactive profiles are retained on
// profile switch (soft cache); a fetch for a profile only ever happens
// through an explicit EnsureLoaded.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"streamvault/gateway"
	"streamvault/models"
	"streamvault/services/session"
)

// Gateway is the slice of the gateway contract the cache uses.
type Gateway interface {
	FetchTrending(ctx context.Context, token, profileID string) ([]models.ContentItem, error)
	FetchMoviesPopular(ctx context.Context, token, profileID string) ([]models.ContentItem, error)
	FetchTVPopular(ctx context.Context, token, profileID string) ([]models.ContentItem, error)
	FetchWatchlist(ctx context.Context, token, profileID string) ([]string, error)
}

// TokenSource provides the current auth token, typically *session.Service.
type TokenSource interface {
	Token() (string, bool)
}

type entry struct {
	trending  []models.ContentItem
	movies    []models.ContentItem
	tvShows   []models.ContentItem
	watchlist map[string]struct{}
	fetchedAt time.Time
}

// Service is the profile-scoped content cache.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry

	// pending records optimistic membership changes whose gateway call has
	// not settled yet, keyed by profile then content ID. EnsureLoaded folds
	// it over a freshly fetched membership set so a refetch completing while
	// a mutation is in flight cannot erase the optimistic value.
	pending map[string]map[string]bool

	gw     Gateway
	tokens TokenSource
	log    *slog.Logger

	kidsMaxMovieRating string
	kidsMaxTVRating    string

	onSessionExpired func()
}

// NewService creates an empty cache.
func NewService(gw Gateway, tokens TokenSource, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		entries:            make(map[string]*entry),
		pending:            make(map[string]map[string]bool),
		gw:                 gw,
		tokens:             tokens,
		log:                log,
		kidsMaxMovieRating: DefaultKidsMaxMovieRating,
		kidsMaxTVRating:    DefaultKidsMaxTVRating,
	}
}

// SetOnSessionExpired registers the implicit-logout hook invoked when a
// fetch reports an expired session.
func (s *Service) SetOnSessionExpired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSessionExpired = fn
}

// SetKidsRatings overrides the maximum ratings applied to kids profiles.
func (s *Service) SetKidsRatings(maxMovie, maxTV string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kidsMaxMovieRating = maxMovie
	s.kidsMaxTVRating = maxTV
}

// EnsureLoaded populates the cache entry for the profile if it has not been
// fetched since creation or the last invalidation. The four list fetches run
// concurrently and fail independently: a failed list resolves to empty
// rather than aborting the others. FetchedAt is recorded even on partial
// failure so a broken profile does not trigger a retry storm.
func (s *Service) EnsureLoaded(ctx context.Context, profile models.Profile) error {
	s.mu.RLock()
	e, exists := s.entries[profile.ID]
	loaded := exists && !e.fetchedAt.IsZero()
	maxMovie, maxTV := s.kidsMaxMovieRating, s.kidsMaxTVRating
	expired := s.onSessionExpired
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	token, ok := s.tokens.Token()
	if !ok {
		return session.ErrNotAuthenticated
	}

	var (
		trending, movies, tvShows           []models.ContentItem
		watchlist                           []string
		trendErr, movieErr, tvErr, watchErr error
	)

	p := pool.New().WithMaxGoroutines(4)
	p.Go(func() { trending, trendErr = s.gw.FetchTrending(ctx, token, profile.ID) })
	p.Go(func() { movies, movieErr = s.gw.FetchMoviesPopular(ctx, token, profile.ID) })
	p.Go(func() { tvShows, tvErr = s.gw.FetchTVPopular(ctx, token, profile.ID) })
	p.Go(func() { watchlist, watchErr = s.gw.FetchWatchlist(ctx, token, profile.ID) })
	p.Wait()

	for name, err := range map[string]error{
		"trending": trendErr, "movies": movieErr, "tv": tvErr, "watchlist": watchErr,
	} {
		if err == nil {
			continue
		}
		if errors.Is(err, gateway.ErrSessionExpired) {
			if expired != nil {
				expired()
			}
			return err
		}
		s.log.Warn("content fetch failed, list left empty", "profile", profile.ID, "list", name, "error", err)
	}

	if profile.IsKid {
		trending = filterByRatings(trending, maxMovie, maxTV)
		movies = filterByRatings(movies, maxMovie, maxTV)
		tvShows = filterByRatings(tvShows, maxMovie, maxTV)
	}

	members := make(map[string]struct{}, len(watchlist))
	for _, id := range watchlist {
		members[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := &entry{
		trending:  trending,
		movies:    movies,
		tvShows:   tvShows,
		watchlist: members,
		fetchedAt: time.Now(),
	}
	if prev, ok := s.entries[profile.ID]; ok && watchErr != nil {
		// The membership fetch failed; keep what we had (which may include
		// optimistic mutations) instead of clobbering it to empty.
		fresh.watchlist = prev.watchlist
	}
	for contentID, member := range s.pending[profile.ID] {
		if member {
			fresh.watchlist[contentID] = struct{}{}
		} else {
			delete(fresh.watchlist, contentID)
		}
	}
	s.entries[profile.ID] = fresh
	return nil
}

// Invalidate discards the cache entry; the next EnsureLoaded refetches.
func (s *Service) Invalidate(profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, profileID)
}

// InvalidateAll discards every entry along with any pending optimistic
// state. Called when the session ends; mutations still in flight settle
// against the empty cache and leave nothing behind.
func (s *Service) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	s.pending = make(map[string]map[string]bool)
}

// Get returns a snapshot of the profile's entry without fetching.
func (s *Service) Get(profileID string) (models.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[profileID]
	if !ok {
		return models.CacheEntry{}, false
	}

	snap := models.CacheEntry{
		Trending:  append([]models.ContentItem(nil), e.trending...),
		Movies:    append([]models.ContentItem(nil), e.movies...),
		TVShows:   append([]models.ContentItem(nil), e.tvShows...),
		Watchlist: make(map[string]bool, len(e.watchlist)),
		FetchedAt: e.fetchedAt,
	}
	for id := range e.watchlist {
		snap.Watchlist[id] = true
	}
	return snap, true
}

// IsWatchlisted reports membership in the profile's watchlist, including
// pending optimistic mutations.
func (s *Service) IsWatchlisted(profileID, contentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[profileID]
	if !ok {
		return false
	}
	_, member := e.watchlist[contentID]
	return member
}

// BeginMutation applies an optimistic membership change and marks it
// pending so a refetch completing before the mutation settles keeps it.
// It returns the previous membership so the caller can roll back. An entry
// is created on demand so mutations work before the first load.
func (s *Service) BeginMutation(profileID, contentID string, member bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.setWatchlistedLocked(profileID, contentID, member)
	if s.pending[profileID] == nil {
		s.pending[profileID] = make(map[string]bool)
	}
	s.pending[profileID][contentID] = member
	return prev
}

// CommitMutation clears the pending mark, leaving the optimistic value as
// the committed one.
func (s *Service) CommitMutation(profileID, contentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPendingLocked(profileID, contentID)
}

// RollbackMutation clears the pending mark and restores the membership
// captured by BeginMutation. The restore is skipped when the profile's
// entry no longer exists, so a mutation failing after the cache was torn
// down does not resurrect an entry for a dead session.
func (s *Service) RollbackMutation(profileID, contentID string, previous bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearPendingLocked(profileID, contentID)
	if _, ok := s.entries[profileID]; !ok {
		return
	}
	s.setWatchlistedLocked(profileID, contentID, previous)
}

func (s *Service) setWatchlistedLocked(profileID, contentID string, member bool) bool {
	e, ok := s.entries[profileID]
	if !ok {
		e = &entry{watchlist: make(map[string]struct{})}
		s.entries[profileID] = e
	}

	_, prev := e.watchlist[contentID]
	if member {
		e.watchlist[contentID] = struct{}{}
	} else {
		delete(e.watchlist, contentID)
	}
	return prev
}

func (s *Service) clearPendingLocked(profileID, contentID string) {
	delete(s.pending[profileID], contentID)
	if len(s.pending[profileID]) == 0 {
		delete(s.pending, profileID)
	}
}
