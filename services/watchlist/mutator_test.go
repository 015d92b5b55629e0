package watchlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"streamvault/gateway"
	"streamvault/models"
	"streamvault/services/catalog"
	"streamvault/services/session"
)

// fakeListGateway backs a real catalog service for tests that interleave
// mutations with cache population.
type fakeListGateway struct {
	watchlist []string
}

func (f *fakeListGateway) FetchTrending(context.Context, string, string) ([]models.ContentItem, error) {
	return nil, nil
}

func (f *fakeListGateway) FetchMoviesPopular(context.Context, string, string) ([]models.ContentItem, error) {
	return nil, nil
}

func (f *fakeListGateway) FetchTVPopular(context.Context, string, string) ([]models.ContentItem, error) {
	return nil, nil
}

func (f *fakeListGateway) FetchWatchlist(context.Context, string, string) ([]string, error) {
	return append([]string(nil), f.watchlist...), nil
}

type fakeGateway struct {
	mu          sync.Mutex
	addErr      error
	removeErr   error
	addCalls    int
	removeCalls int
	// block, when non-nil, holds gateway calls open until closed.
	block chan struct{}
}

func (f *fakeGateway) AddWatchlist(_ context.Context, _, _, _ string) error {
	f.mu.Lock()
	f.addCalls++
	block := f.block
	err := f.addErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeGateway) RemoveWatchlist(_ context.Context, _, _, _ string) error {
	f.mu.Lock()
	f.removeCalls++
	block := f.block
	err := f.removeErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeGateway) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addCalls, f.removeCalls
}

type fakeCache struct {
	mu      sync.Mutex
	members map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{members: make(map[string]bool)}
}

func (f *fakeCache) IsWatchlisted(profileID, contentID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[profileID+"/"+contentID]
}

func (f *fakeCache) set(profileID, contentID string, watchlisted bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := profileID + "/" + contentID
	prev := f.members[key]
	f.members[key] = watchlisted
	return prev
}

func (f *fakeCache) BeginMutation(profileID, contentID string, watchlisted bool) bool {
	return f.set(profileID, contentID, watchlisted)
}

func (f *fakeCache) CommitMutation(_, _ string) {}

func (f *fakeCache) RollbackMutation(profileID, contentID string, previous bool) {
	f.set(profileID, contentID, previous)
}

type staticToken struct{ token string }

func (s staticToken) Token() (string, bool) { return s.token, s.token != "" }

func newTestMutator(gw Gateway, cache Cache) *Mutator {
	return NewMutator(gw, staticToken{"tok"}, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAddCommitsAndFlipsMembership(t *testing.T) {
	gw := &fakeGateway{}
	cache := newFakeCache()
	m := newTestMutator(gw, cache)

	if err := m.Add(context.Background(), "p1", "c1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !cache.IsWatchlisted("p1", "c1") {
		t.Fatal("item not marked watchlisted")
	}
	if adds, _ := gw.counts(); adds != 1 {
		t.Fatalf("add calls = %d, want 1", adds)
	}
	if m.Pending("p1", "c1") {
		t.Fatal("mutation still pending after commit")
	}
}

func TestAddRollsBackOnGatewayFailure(t *testing.T) {
	gw := &fakeGateway{addErr: errors.New("gateway unavailable")}
	cache := newFakeCache()
	m := newTestMutator(gw, cache)

	err := m.Add(context.Background(), "p1", "c1")
	if err == nil {
		t.Fatal("expected error")
	}
	if cache.IsWatchlisted("p1", "c1") {
		t.Fatal("optimistic add not rolled back")
	}
	if m.Pending("p1", "c1") {
		t.Fatal("mutation still pending after rollback")
	}
}

func TestRemoveRollsBackToMember(t *testing.T) {
	gw := &fakeGateway{removeErr: errors.New("gateway unavailable")}
	cache := newFakeCache()
	cache.set("p1", "c1", true)
	m := newTestMutator(gw, cache)

	if err := m.Remove(context.Background(), "p1", "c1"); err == nil {
		t.Fatal("expected error")
	}
	if !cache.IsWatchlisted("p1", "c1") {
		t.Fatal("rollback did not restore membership")
	}
}

func TestAddExistingMemberIsNoOp(t *testing.T) {
	gw := &fakeGateway{}
	cache := newFakeCache()
	cache.set("p1", "c1", true)
	m := newTestMutator(gw, cache)

	if err := m.Add(context.Background(), "p1", "c1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if adds, _ := gw.counts(); adds != 0 {
		t.Fatalf("add calls = %d, want 0", adds)
	}
}

func TestRemoveNonMemberIsNoOp(t *testing.T) {
	gw := &fakeGateway{}
	cache := newFakeCache()
	m := newTestMutator(gw, cache)

	if err := m.Remove(context.Background(), "p1", "c1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, removes := gw.counts(); removes != 0 {
		t.Fatalf("remove calls = %d, want 0", removes)
	}
}

func TestDuplicateGatewayStateTreatedAsSuccess(t *testing.T) {
	gw := &fakeGateway{addErr: gateway.ErrAlreadyInWatchlist}
	cache := newFakeCache()
	m := newTestMutator(gw, cache)

	if err := m.Add(context.Background(), "p1", "c1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !cache.IsWatchlisted("p1", "c1") {
		t.Fatal("membership rolled back on already-present response")
	}

	gw2 := &fakeGateway{removeErr: gateway.ErrNotInWatchlist}
	cache2 := newFakeCache()
	cache2.set("p1", "c1", true)
	m2 := newTestMutator(gw2, cache2)

	if err := m2.Remove(context.Background(), "p1", "c1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cache2.IsWatchlisted("p1", "c1") {
		t.Fatal("membership restored on already-absent response")
	}
}

func TestSecondMutationWhileInFlightRejected(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	cache := newFakeCache()
	m := newTestMutator(gw, cache)

	done := make(chan error, 1)
	go func() { done <- m.Add(context.Background(), "p1", "c1") }()

	deadline := time.Now().Add(2 * time.Second)
	for !m.Pending("p1", "c1") {
		if time.Now().After(deadline) {
			t.Fatal("first mutation never became pending")
		}
		time.Sleep(2 * time.Millisecond)
	}

	// Membership already flipped optimistically, so a second Add is a
	// no-op success rather than a conflict.
	if err := m.Add(context.Background(), "p1", "c1"); err != nil {
		t.Fatalf("duplicate Add while pending: %v", err)
	}
	// A Remove targets the opposite state and must be rejected.
	if err := m.Remove(context.Background(), "p1", "c1"); !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("Remove while pending = %v, want ErrMutationInFlight", err)
	}

	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("first Add: %v", err)
	}
	// Settled now, the opposite mutation may proceed.
	if err := m.Remove(context.Background(), "p1", "c1"); err != nil {
		t.Fatalf("Remove after settle: %v", err)
	}
}

func TestMutationsOnDifferentItemsDoNotConflict(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	cache := newFakeCache()
	m := newTestMutator(gw, cache)

	done := make(chan error, 1)
	go func() { done <- m.Add(context.Background(), "p1", "c1") }()

	deadline := time.Now().Add(2 * time.Second)
	for !m.Pending("p1", "c1") {
		if time.Now().After(deadline) {
			t.Fatal("first mutation never became pending")
		}
		time.Sleep(2 * time.Millisecond)
	}

	go func() {
		// Unblock both calls once the second one is registered too.
		deadline := time.Now().Add(2 * time.Second)
		for !m.Pending("p2", "c9") {
			if time.Now().After(deadline) {
				break
			}
			time.Sleep(2 * time.Millisecond)
		}
		close(gw.block)
	}()

	if err := m.Add(context.Background(), "p2", "c9"); err != nil {
		t.Fatalf("Add on different item: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first Add: %v", err)
	}
}

func TestRequiresAuthentication(t *testing.T) {
	gw := &fakeGateway{}
	m := NewMutator(gw, staticToken{""}, newFakeCache(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := m.Add(context.Background(), "p1", "c1"); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func waitPending(t *testing.T, m *Mutator, profileID, contentID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !m.Pending(profileID, contentID) {
		if time.Now().After(deadline) {
			t.Fatal("mutation never became pending")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestAddSurvivesRefetchWhileInFlight(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	cache := catalog.NewService(&fakeListGateway{watchlist: []string{"c9"}}, staticToken{"tok"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := NewMutator(gw, staticToken{"tok"}, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() { done <- m.Add(context.Background(), "p1", "c1") }()
	waitPending(t, m, "p1", "c1")

	// The content lists land while the add is still talking to the gateway.
	// The fetched membership set does not include c1 and must not erase the
	// optimistic insert.
	if err := cache.EnsureLoaded(context.Background(), models.Profile{ID: "p1"}); err != nil {
		t.Fatalf("ensure loaded returned error: %v", err)
	}
	if !cache.IsWatchlisted("p1", "c1") {
		t.Fatal("optimistic add erased by refetch")
	}

	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !cache.IsWatchlisted("p1", "c1") {
		t.Fatal("committed add not reflected after refetch")
	}
	if !cache.IsWatchlisted("p1", "c9") {
		t.Fatal("fetched membership lost")
	}
}

func TestFailedAddDuringRefetchRollsBack(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{}), addErr: errors.New("gateway unavailable")}
	cache := catalog.NewService(&fakeListGateway{}, staticToken{"tok"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := NewMutator(gw, staticToken{"tok"}, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() { done <- m.Add(context.Background(), "p1", "c1") }()
	waitPending(t, m, "p1", "c1")

	if err := cache.EnsureLoaded(context.Background(), models.Profile{ID: "p1"}); err != nil {
		t.Fatalf("ensure loaded returned error: %v", err)
	}

	close(gw.block)
	if err := <-done; err == nil {
		t.Fatal("expected error")
	}
	if cache.IsWatchlisted("p1", "c1") {
		t.Fatal("failed add not rolled back after refetch")
	}
}

func TestSessionExpiryRollsBackAndFiresHook(t *testing.T) {
	gw := &fakeGateway{addErr: gateway.ErrSessionExpired}
	cache := newFakeCache()
	m := newTestMutator(gw, cache)

	fired := false
	m.SetOnSessionExpired(func() { fired = true })

	err := m.Add(context.Background(), "p1", "c1")
	if !errors.Is(err, gateway.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !fired {
		t.Fatal("expiry hook not invoked")
	}
	if cache.IsWatchlisted("p1", "c1") {
		t.Fatal("optimistic add not rolled back on expiry")
	}
}
