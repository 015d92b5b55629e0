package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"streamvault/config"
	"streamvault/gateway"
	"streamvault/models"
)

// fakeGateway is a scriptable in-memory gateway covering the full contract.
type fakeGateway struct {
	mu sync.Mutex

	loginErr  error
	tvErr     error
	addErr    error
	removeErr error

	user      models.User
	trending  []models.ContentItem
	movies    []models.ContentItem
	tvShows   []models.ContentItem
	watchlist []string
	results   []models.ContentItem

	searchQueries []string
}

func (f *fakeGateway) Login(_ context.Context, _, _ string) (gateway.Credentials, error) {
	if f.loginErr != nil {
		return gateway.Credentials{}, f.loginErr
	}
	return gateway.Credentials{Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeGateway) Register(_ context.Context, _ models.Registration) error { return nil }

func (f *fakeGateway) FetchUser(_ context.Context, _ string) (models.User, error) {
	return f.user, nil
}

func (f *fakeGateway) CreateProfile(_ context.Context, _ string, params models.ProfileParams) (models.Profile, error) {
	p := models.Profile{ID: "new", Name: params.Name, IsKid: params.IsKid}
	f.user.Profiles = append(f.user.Profiles, p)
	return p, nil
}

func (f *fakeGateway) FetchTrending(_ context.Context, _, _ string) ([]models.ContentItem, error) {
	return f.trending, nil
}

func (f *fakeGateway) FetchMoviesPopular(_ context.Context, _, _ string) ([]models.ContentItem, error) {
	return f.movies, nil
}

func (f *fakeGateway) FetchTVPopular(_ context.Context, _, _ string) ([]models.ContentItem, error) {
	if f.tvErr != nil {
		return nil, f.tvErr
	}
	return f.tvShows, nil
}

func (f *fakeGateway) SearchContent(_ context.Context, _, query string) ([]models.ContentItem, error) {
	f.mu.Lock()
	f.searchQueries = append(f.searchQueries, query)
	f.mu.Unlock()
	return f.results, nil
}

func (f *fakeGateway) FetchWatchlist(_ context.Context, _, _ string) ([]string, error) {
	return f.watchlist, nil
}

func (f *fakeGateway) AddWatchlist(_ context.Context, _, _, _ string) error { return f.addErr }

func (f *fakeGateway) RemoveWatchlist(_ context.Context, _, _, _ string) error { return f.removeErr }

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (m *memStore) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newTestClient(gw gateway.Client) *Client {
	cfg := config.DefaultConfig()
	cfg.Search.DebounceMS = 10
	return NewWithGateway(cfg, gw, newMemStore(), nil)
}

func demoUser() models.User {
	return models.User{
		ID:               "u1",
		Email:            "family@example.com",
		SubscriptionPlan: models.PlanStandard,
		Profiles: []models.Profile{
			{ID: "adult", Name: "Sam"},
			{ID: "kid", Name: "Junior", IsKid: true},
		},
	}
}

func TestLoginBrowseMutateRollback(t *testing.T) {
	gw := &fakeGateway{
		user: demoUser(),
		trending: []models.ContentItem{
			{ID: "m1", Type: models.ContentMovie, Title: "Space Pups", MaturityRating: "G"},
			{ID: "m2", Type: models.ContentMovie, Title: "Blood Canyon", MaturityRating: "R"},
		},
		movies: []models.ContentItem{
			{ID: "m3", Type: models.ContentMovie, Title: "Tide", MaturityRating: "PG"},
		},
		tvErr:  errors.New("upstream timeout"),
		addErr: errors.New("gateway unavailable"),
	}
	c := newTestClient(gw)

	if err := c.Session.Login(context.Background(), "family@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.Profiles.Select("kid"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	active, _ := c.Profiles.Active()

	if err := c.Catalog.EnsureLoaded(context.Background(), active); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	entry, ok := c.Catalog.Get("kid")
	if !ok || !entry.Loaded() {
		t.Fatal("cache entry not loaded")
	}
	// The R-rated title is filtered for the kids profile; the failed TV
	// fetch resolves to an empty list without failing the load.
	if len(entry.Trending) != 1 || entry.Trending[0].ID != "m1" {
		t.Fatalf("trending = %+v, want only m1", entry.Trending)
	}
	if len(entry.TVShows) != 0 {
		t.Fatalf("tv shows = %+v, want empty after failed fetch", entry.TVShows)
	}

	// Optimistic add fails at the gateway and rolls back.
	if err := c.Watchlist.Add(context.Background(), "kid", "m1"); err == nil {
		t.Fatal("expected Add to fail")
	}
	if c.Catalog.IsWatchlisted("kid", "m1") {
		t.Fatal("failed add left item watchlisted")
	}

	// With the gateway healthy again the add sticks.
	gw.addErr = nil
	if err := c.Watchlist.Add(context.Background(), "kid", "m1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !c.Catalog.IsWatchlisted("kid", "m1") {
		t.Fatal("add did not mark item watchlisted")
	}
}

func TestLogoutTearsDownAllServices(t *testing.T) {
	gw := &fakeGateway{
		user:    demoUser(),
		movies:  []models.ContentItem{{ID: "m3", Type: models.ContentMovie, Title: "Tide", MaturityRating: "PG"}},
		results: []models.ContentItem{{ID: "m3", Title: "Tide"}},
	}
	c := newTestClient(gw)

	if err := c.Session.Login(context.Background(), "family@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.Profiles.Select("adult"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	active, _ := c.Profiles.Active()
	if err := c.Catalog.EnsureLoaded(context.Background(), active); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}

	c.Search.SubmitQuery("tide")
	deadline := time.Now().Add(2 * time.Second)
	for len(c.Search.State().Results) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("search results never arrived")
		}
		time.Sleep(2 * time.Millisecond)
	}

	c.Session.Logout()

	if state := c.Session.State(); state != models.AuthAnonymous {
		t.Fatalf("state = %v, want anonymous", state)
	}
	if _, ok := c.Profiles.Active(); ok {
		t.Fatal("active profile survived logout")
	}
	if _, ok := c.Catalog.Get("adult"); ok {
		t.Fatal("cache entry survived logout")
	}
	if s := c.Search.State(); s.Query != "" || len(s.Results) != 0 {
		t.Fatalf("search state survived logout: %+v", s)
	}
}

func TestProfileSwitchResetsSearch(t *testing.T) {
	gw := &fakeGateway{
		user:    demoUser(),
		results: []models.ContentItem{{ID: "m3", Title: "Tide"}},
	}
	c := newTestClient(gw)

	if err := c.Session.Login(context.Background(), "family@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.Profiles.Select("adult"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	c.Search.SubmitQuery("tide")
	deadline := time.Now().Add(2 * time.Second)
	for len(c.Search.State().Results) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("search results never arrived")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if err := c.Profiles.Select("kid"); err != nil {
		t.Fatalf("Select kid: %v", err)
	}
	if s := c.Search.State(); s.Query != "" || len(s.Results) != 0 {
		t.Fatalf("search state survived profile switch: %+v", s)
	}
}

func TestSessionExpiryDuringBrowseForcesLogout(t *testing.T) {
	gw := &fakeGateway{user: demoUser(), tvErr: gateway.ErrSessionExpired}
	c := newTestClient(gw)

	if err := c.Session.Login(context.Background(), "family@example.com", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.Profiles.Select("adult"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	active, _ := c.Profiles.Active()

	err := c.Catalog.EnsureLoaded(context.Background(), active)
	if !errors.Is(err, gateway.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if state := c.Session.State(); state != models.AuthAnonymous {
		t.Fatalf("state = %v, want anonymous after expiry", state)
	}
	if _, ok := c.Profiles.Active(); ok {
		t.Fatal("active profile survived expiry")
	}
}
