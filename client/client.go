// Package client wires the gateway, token store, and services into one
// application object. Logout and session-expiry propagation between the
// services is configured here and nowhere else.
package client

import (
	"fmt"
	"log/slog"

	"streamvault/config"
	"streamvault/gateway"
	"streamvault/internal/logging"
	"streamvault/internal/tokenstore"
	"streamvault/services/catalog"
	"streamvault/services/profiles"
	"streamvault/services/search"
	"streamvault/services/session"
	"streamvault/services/watchlist"
)

// Client is the composition root. The exported fields are the application's
// service surface.
type Client struct {
	Session   *session.Service
	Profiles  *profiles.Context
	Catalog   *catalog.Service
	Search    *search.Coordinator
	Watchlist *watchlist.Mutator

	log   *slog.Logger
	store *tokenstore.Store
}

// New builds a client from configuration: rotating file logger, bbolt
// credential store, and an HTTP gateway client.
func New(cfg *config.Config) (*Client, error) {
	log, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	store, err := tokenstore.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	gw := gateway.NewHTTPClient(cfg.Gateway.BaseURL,
		gateway.WithLogger(log),
		gateway.WithRateLimit(cfg.Gateway.RequestsPerSecond, cfg.Gateway.Burst),
		gateway.WithRetryAttempts(cfg.Gateway.RetryAttempts),
	)

	c := NewWithGateway(cfg, gw, store, log)
	c.store = store
	return c, nil
}

// NewWithGateway wires the services against an arbitrary gateway
// implementation. The caller keeps ownership of the store.
func NewWithGateway(cfg *config.Config, gw gateway.Client, store session.TokenStore, log *slog.Logger) *Client {
	if log == nil {
		log = logging.NullLogger()
	}

	sess := session.NewService(gw, store, log)
	cat := catalog.NewService(gw, sess, log)
	cat.SetKidsRatings(cfg.Kids.MaxMovieRating, cfg.Kids.MaxTVRating)
	srch := search.NewCoordinator(gw, sess, cfg.Search.Debounce(), log)
	wl := watchlist.NewMutator(gw, sess, cat, log)
	prof := profiles.NewContext(sess, srch.Reset)

	// Logout, explicit or implicit, tears down all per-session state.
	sess.OnLogout(cat.InvalidateAll)
	sess.OnLogout(srch.Reset)
	sess.OnLogout(prof.Clear)

	// Any service seeing an expired token forces a logout.
	cat.SetOnSessionExpired(sess.HandleExpiry)
	srch.SetOnSessionExpired(sess.HandleExpiry)
	wl.SetOnSessionExpired(sess.HandleExpiry)

	return &Client{
		Session:   sess,
		Profiles:  prof,
		Catalog:   cat,
		Search:    srch,
		Watchlist: wl,
		log:       log,
	}
}

// Close releases the credential store. Safe to call on a client built with
// NewWithGateway.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
