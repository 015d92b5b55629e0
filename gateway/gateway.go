// Package gateway defines the remote content/auth API contract the client
// core consumes, and provides the HTTP implementation of it. Every
// authenticated call takes the credential explicitly; there is no ambient
// token attachment.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streamvault/models"
)

var (
	// ErrInvalidCredentials is returned by Login for a bad email/password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionExpired is returned by any authenticated call when the
	// gateway rejects the token. The caller must treat the session as gone.
	ErrSessionExpired = errors.New("session expired or invalid")

	// ErrAlreadyInWatchlist is returned by AddWatchlist when the item is
	// already a member server-side.
	ErrAlreadyInWatchlist = errors.New("already in watchlist")

	// ErrNotInWatchlist is returned by RemoveWatchlist when the item is not
	// a member server-side.
	ErrNotInWatchlist = errors.New("not in watchlist")
)

// StatusError is a non-2xx gateway response that does not map to one of the
// sentinel errors above. It carries the server-provided message.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Message)
}

// Credentials is the result of a successful login.
type Credentials struct {
	Token     string
	ExpiresAt time.Time
}

// Client is the abstract gateway contract. GET-shaped operations are
// idempotent-safe; all operations are fallible.
type Client interface {
	Login(ctx context.Context, email, password string) (Credentials, error)
	Register(ctx context.Context, reg models.Registration) error
	FetchUser(ctx context.Context, token string) (models.User, error)
	CreateProfile(ctx context.Context, token string, params models.ProfileParams) (models.Profile, error)

	FetchTrending(ctx context.Context, token, profileID string) ([]models.ContentItem, error)
	FetchMoviesPopular(ctx context.Context, token, profileID string) ([]models.ContentItem, error)
	FetchTVPopular(ctx context.Context, token, profileID string) ([]models.ContentItem, error)
	SearchContent(ctx context.Context, token, query string) ([]models.ContentItem, error)

	FetchWatchlist(ctx context.Context, token, profileID string) ([]string, error)
	AddWatchlist(ctx context.Context, token, profileID, contentID string) error
	RemoveWatchlist(ctx context.Context, token, profileID, contentID string) error
}
