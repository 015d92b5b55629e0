// Package watchlist applies watchlist mutations optimistically: the cached
// membership flips before the gateway call, and flips back if the call
// fails. At most one mutation per (profile, content) pair may be in flight.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"streamvault/gateway"
	"streamvault/models"
	"streamvault/services/session"
)

// ErrMutationInFlight is returned when a mutation for the same
// (profile, content) pair has not settled yet.
var ErrMutationInFlight = errors.New("watchlist: mutation already in flight for this item")

// Gateway is the slice of the gateway contract the mutator uses.
type Gateway interface {
	AddWatchlist(ctx context.Context, token, profileID, contentID string) error
	RemoveWatchlist(ctx context.Context, token, profileID, contentID string) error
}

// TokenSource provides the current auth token, typically *session.Service.
type TokenSource interface {
	Token() (string, bool)
}

// Cache is the membership store the mutator flips optimistically,
// satisfied by *catalog.Service. BeginMutation applies the optimistic
// value and keeps it alive across concurrent refetches until Commit or
// Rollback settles it.
type Cache interface {
	IsWatchlisted(profileID, contentID string) bool
	BeginMutation(profileID, contentID string, watchlisted bool) bool
	CommitMutation(profileID, contentID string)
	RollbackMutation(profileID, contentID string, previous bool)
}

// Mutator serializes watchlist changes per item and keeps the cache's
// membership view consistent with the gateway's eventual answer.
type Mutator struct {
	mu sync.Mutex

	gw     Gateway
	tokens TokenSource
	cache  Cache
	log    *slog.Logger

	inflight map[string]*models.WatchlistMutation

	onSessionExpired func()
}

// NewMutator creates a mutator backed by the given cache.
func NewMutator(gw Gateway, tokens TokenSource, cache Cache, log *slog.Logger) *Mutator {
	if log == nil {
		log = slog.Default()
	}
	return &Mutator{
		gw:       gw,
		tokens:   tokens,
		cache:    cache,
		log:      log,
		inflight: make(map[string]*models.WatchlistMutation),
	}
}

// SetOnSessionExpired registers the implicit-logout hook.
func (m *Mutator) SetOnSessionExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSessionExpired = fn
}

// Add puts contentID on profileID's watchlist. Adding an item that is
// already a member succeeds without a gateway call.
func (m *Mutator) Add(ctx context.Context, profileID, contentID string) error {
	return m.mutate(ctx, profileID, contentID, models.MutationAdd)
}

// Remove takes contentID off profileID's watchlist. Removing an item that
// is not a member succeeds without a gateway call.
func (m *Mutator) Remove(ctx context.Context, profileID, contentID string) error {
	return m.mutate(ctx, profileID, contentID, models.MutationRemove)
}

// Pending reports whether a mutation for the pair has not settled yet.
func (m *Mutator) Pending(profileID, contentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[mutationKey(profileID, contentID)]
	return ok
}

func (m *Mutator) mutate(ctx context.Context, profileID, contentID string, action models.MutationAction) error {
	token, ok := m.tokens.Token()
	if !ok {
		return session.ErrNotAuthenticated
	}

	wantMember := action == models.MutationAdd
	key := mutationKey(profileID, contentID)

	m.mu.Lock()
	// Already in the desired state: report success, issue nothing.
	if m.cache.IsWatchlisted(profileID, contentID) == wantMember {
		m.mu.Unlock()
		return nil
	}
	if _, busy := m.inflight[key]; busy {
		m.mu.Unlock()
		return ErrMutationInFlight
	}
	mutation := &models.WatchlistMutation{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		ContentID: contentID,
		Action:    action,
		Status:    models.MutationPending,
	}
	m.inflight[key] = mutation
	previous := m.cache.BeginMutation(profileID, contentID, wantMember)
	m.mu.Unlock()

	var err error
	if action == models.MutationAdd {
		err = m.gw.AddWatchlist(ctx, token, profileID, contentID)
		if errors.Is(err, gateway.ErrAlreadyInWatchlist) {
			// The gateway already agrees with the optimistic state.
			err = nil
		}
	} else {
		err = m.gw.RemoveWatchlist(ctx, token, profileID, contentID)
		if errors.Is(err, gateway.ErrNotInWatchlist) {
			err = nil
		}
	}

	m.mu.Lock()
	delete(m.inflight, key)
	if err != nil {
		mutation.Status = models.MutationRolledBack
		m.cache.RollbackMutation(profileID, contentID, previous)
	} else {
		mutation.Status = models.MutationCommitted
		m.cache.CommitMutation(profileID, contentID)
	}
	expired := err != nil && errors.Is(err, gateway.ErrSessionExpired)
	hook := m.onSessionExpired
	m.mu.Unlock()

	if err != nil {
		if expired {
			if hook != nil {
				hook()
			}
			return err
		}
		m.log.Warn("watchlist mutation rolled back",
			"action", action, "profile", profileID, "content", contentID, "error", err)
		return fmt.Errorf("watchlist %s: %w", action, err)
	}
	return nil
}

func mutationKey(profileID, contentID string) string {
	return profileID + "\x00" + contentID
}
