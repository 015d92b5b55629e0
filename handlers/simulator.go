// Package handlers implements an in-memory content gateway: the same wire
// contract the client core talks to in production, backed by seeded demo
// data. Used for local development and integration tests.
package handlers

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"streamvault/models"
)

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrTokenInvalid   = errors.New("invalid or expired token")
	ErrProfileLimit   = errors.New("profile limit reached")
	ErrDuplicateItem  = errors.New("content already in watchlist")
	ErrItemNotInList  = errors.New("content not in watchlist")
)

const tokenTTL = 24 * time.Hour

type account struct {
	id           string
	email        string
	passwordHash []byte
	plan         models.SubscriptionPlan
	profiles     []models.Profile
}

type tokenInfo struct {
	accountID string
	expiresAt time.Time
}

// Simulator holds all gateway state behind one mutex. Handlers are thin
// wrappers over its methods.
type Simulator struct {
	mu sync.Mutex

	accounts   map[string]*account   // keyed by email
	accountsID map[string]*account   // keyed by id
	tokens     map[string]tokenInfo  // keyed by token
	watchlists map[string][]string   // keyed by profile id, insertion order kept

	trending []contentRecord
	movies   []contentRecord
	tvShows  []contentRecord
}

// NewSimulator creates a simulator with the demo catalog and no accounts.
func NewSimulator() *Simulator {
	return &Simulator{
		accounts:   make(map[string]*account),
		accountsID: make(map[string]*account),
		tokens:     make(map[string]tokenInfo),
		watchlists: make(map[string][]string),
		trending:   seedTrending(),
		movies:     seedMovies(),
		tvShows:    seedTVShows(),
	}
}

// Register creates an account with one default profile.
func (s *Simulator) Register(email, password, firstName string, plan models.SubscriptionPlan) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return ErrEmailTaken
	}

	name := firstName
	if name == "" {
		name = "Profile 1"
	}
	acct := &account{
		id:           uuid.NewString(),
		email:        email,
		passwordHash: hash,
		plan:         plan,
		profiles: []models.Profile{
			{ID: uuid.NewString(), Name: name},
		},
	}
	s.accounts[email] = acct
	s.accountsID[acct.id] = acct
	return nil
}

// Authenticate checks the credentials and issues a bearer token.
func (s *Simulator) Authenticate(email, password string) (string, time.Duration, error) {
	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		return "", 0, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		return "", 0, ErrBadCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = tokenInfo{accountID: acct.id, expiresAt: time.Now().Add(tokenTTL)}
	s.mu.Unlock()
	return token, tokenTTL, nil
}

// Resolve maps a bearer token to its account.
func (s *Simulator) Resolve(token string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.tokens[token]
	if !ok || time.Now().After(info.expiresAt) {
		delete(s.tokens, token)
		return models.User{}, ErrTokenInvalid
	}
	acct := s.accountsID[info.accountID]
	if acct == nil {
		return models.User{}, ErrTokenInvalid
	}
	return acct.user(), nil
}

// RevokeToken invalidates a token immediately. Test hook for simulating
// server-side session expiry.
func (s *Simulator) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// CreateProfile adds a profile to the token's account, enforcing the plan
// ceiling.
func (s *Simulator) CreateProfile(accountID string, params models.ProfileParams) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accountsID[accountID]
	if acct == nil {
		return models.Profile{}, ErrTokenInvalid
	}
	if len(acct.profiles) >= acct.plan.MaxProfiles() {
		return models.Profile{}, ErrProfileLimit
	}
	p := models.Profile{
		ID:     uuid.NewString(),
		Name:   params.Name,
		Avatar: params.Avatar,
		IsKid:  params.IsKid,
	}
	acct.profiles = append(acct.profiles, p)
	return p, nil
}

// Watchlist returns the profile's watchlist in insertion order.
func (s *Simulator) Watchlist(profileID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.watchlists[profileID]...)
}

// AddToWatchlist appends contentID, rejecting duplicates.
func (s *Simulator) AddToWatchlist(profileID, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.watchlists[profileID] {
		if id == contentID {
			return ErrDuplicateItem
		}
	}
	s.watchlists[profileID] = append(s.watchlists[profileID], contentID)
	return nil
}

// RemoveFromWatchlist deletes contentID, rejecting absent items.
func (s *Simulator) RemoveFromWatchlist(profileID, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.watchlists[profileID]
	for i, id := range list {
		if id == contentID {
			s.watchlists[profileID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrItemNotInList
}

// Trending returns the seeded trending list.
func (s *Simulator) Trending() []contentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contentRecord(nil), s.trending...)
}

// MoviesPopular returns the seeded movie list.
func (s *Simulator) MoviesPopular() []contentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contentRecord(nil), s.movies...)
}

// TVPopular returns the seeded TV list.
func (s *Simulator) TVPopular() []contentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contentRecord(nil), s.tvShows...)
}

// Search does a case-insensitive substring match over titles across all
// seeded lists.
func (s *Simulator) Search(query string) []contentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []contentRecord
	seen := make(map[string]struct{})
	for _, list := range [][]contentRecord{s.trending, s.movies, s.tvShows} {
		for _, rec := range list {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			if containsFold(rec.Title, query) {
				out = append(out, rec)
				seen[rec.ID] = struct{}{}
			}
		}
	}
	return out
}

func (a *account) user() models.User {
	return models.User{
		ID:               a.id,
		Email:            a.email,
		SubscriptionPlan: a.plan,
		Profiles:         append([]models.Profile(nil), a.profiles...),
	}
}
