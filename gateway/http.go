package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"streamvault/models"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 200 * time.Millisecond
)

// HTTPClient talks JSON over HTTP to the content gateway. All requests pass
// through a client-side rate limiter; idempotent GETs are retried on
// transient failures.
type HTTPClient struct {
	baseURL  string
	httpc    *http.Client
	limiter  *rate.Limiter
	attempts uint
	log      *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *HTTPClient) { c.httpc = httpc }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *HTTPClient) { c.log = log }
}

// WithRateLimit caps outgoing requests to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *HTTPClient) { c.limiter = rate.NewLimiter(rate.Limit(r), burst) }
}

// WithRetryAttempts sets the total attempt count for idempotent GETs.
func WithRetryAttempts(n uint) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// NewHTTPClient creates a gateway client for the given base URL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{Timeout: defaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
		attempts: defaultRetryAttempts,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a bearer token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (Credentials, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusUnauthorized {
			return Credentials{}, ErrInvalidCredentials
		}
		return Credentials{}, err
	}

	creds := Credentials{Token: resp.AccessToken}
	if resp.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return creds, nil
}

// Register creates a new account. It does not authenticate.
func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	req := registerRequest{
		Email:            reg.Email,
		Password:         reg.Password,
		FirstName:        reg.FirstName,
		LastName:         reg.LastName,
		SubscriptionPlan: string(reg.SubscriptionPlan),
	}
	return c.do(ctx, http.MethodPost, "/api/auth/register", "", nil, req, nil)
}

// FetchUser returns the account that owns the token, with its canonical
// profile list.
func (c *HTTPClient) FetchUser(ctx context.Context, token string) (models.User, error) {
	var dto userDTO
	err := c.get(ctx, "/api/auth/me", token, nil, &dto)
	if err != nil {
		return models.User{}, authErr(err)
	}
	return dto.toModel(), nil
}

// CreateProfile asks the gateway to create a profile for the token's account.
func (c *HTTPClient) CreateProfile(ctx context.Context, token string, params models.ProfileParams) (models.Profile, error) {
	var dto profileDTO
	req := profileCreateRequest{Name: params.Name, Avatar: params.Avatar, IsKid: params.IsKid}
	err := c.do(ctx, http.MethodPost, "/api/profiles", token, nil, req, &dto)
	if err != nil {
		return models.Profile{}, authErr(err)
	}
	return dto.toModel(), nil
}

// FetchTrending returns the trending list scoped to the profile.
func (c *HTTPClient) FetchTrending(ctx context.Context, token, profileID string) ([]models.ContentItem, error) {
	return c.fetchList(ctx, "/api/content/trending", token, profileID)
}

// FetchMoviesPopular returns the popular movie list scoped to the profile.
func (c *HTTPClient) FetchMoviesPopular(ctx context.Context, token, profileID string) ([]models.ContentItem, error) {
	return c.fetchList(ctx, "/api/movies/popular", token, profileID)
}

// FetchTVPopular returns the popular TV list scoped to the profile.
func (c *HTTPClient) FetchTVPopular(ctx context.Context, token, profileID string) ([]models.ContentItem, error) {
	return c.fetchList(ctx, "/api/tv/popular", token, profileID)
}

// SearchContent runs a catalog search for the query.
func (c *HTTPClient) SearchContent(ctx context.Context, token, query string) ([]models.ContentItem, error) {
	q := url.Values{"q": {query}}
	var dtos []contentDTO
	if err := c.get(ctx, "/api/content/search", token, q, &dtos); err != nil {
		return nil, authErr(err)
	}
	return contentItems(dtos), nil
}

// FetchWatchlist returns the content IDs on the profile's watchlist.
func (c *HTTPClient) FetchWatchlist(ctx context.Context, token, profileID string) ([]string, error) {
	var dtos []watchlistItemDTO
	if err := c.get(ctx, "/api/watchlist/"+url.PathEscape(profileID), token, nil, &dtos); err != nil {
		return nil, authErr(err)
	}
	ids := make([]string, 0, len(dtos))
	for _, d := range dtos {
		ids = append(ids, d.ContentID)
	}
	return ids, nil
}

// AddWatchlist adds a content item to the profile's watchlist.
func (c *HTTPClient) AddWatchlist(ctx context.Context, token, profileID, contentID string) error {
	req := watchlistAddRequest{ContentID: contentID}
	err := c.do(ctx, http.MethodPost, "/api/watchlist/"+url.PathEscape(profileID), token, nil, req, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusBadRequest {
			return ErrAlreadyInWatchlist
		}
		return authErr(err)
	}
	return nil
}

// RemoveWatchlist removes a content item from the profile's watchlist.
func (c *HTTPClient) RemoveWatchlist(ctx context.Context, token, profileID, contentID string) error {
	path := "/api/watchlist/" + url.PathEscape(profileID) + "/" + url.PathEscape(contentID)
	err := c.do(ctx, http.MethodDelete, path, token, nil, nil, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return ErrNotInWatchlist
		}
		return authErr(err)
	}
	return nil
}

// fetchList GETs a profile-scoped content list.
func (c *HTTPClient) fetchList(ctx context.Context, path, token, profileID string) ([]models.ContentItem, error) {
	q := url.Values{"profile_id": {profileID}}
	var dtos []contentDTO
	if err := c.get(ctx, path, token, q, &dtos); err != nil {
		return nil, authErr(err)
	}
	return contentItems(dtos), nil
}

// get performs an idempotent GET with retries on transient failures.
func (c *HTTPClient) get(ctx context.Context, path, token string, query url.Values, out any) error {
	return retry.Do(
		func() error {
			return c.do(ctx, http.MethodGet, path, token, query, nil, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(defaultRetryDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
}

// do executes a single request and decodes the JSON response into out.
// Non-2xx responses become *StatusError with the server message.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		c.log.Debug("gateway error response", "method", method, "path", path, "status", resp.StatusCode, "message", se.Message)
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// readErrorMessage pulls the message out of an {"error": ...} body, falling
// back to the raw body for non-JSON errors.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error != "" {
		return er.Error
	}
	return strings.TrimSpace(string(raw))
}

// authErr maps a 401 from an authenticated call to ErrSessionExpired.
func authErr(err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	return err
}

// isTransient reports whether an error is worth retrying: transport failures
// and 5xx responses. Client errors are terminal.
func isTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
