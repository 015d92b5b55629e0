// Package search debounces a query stream against the gateway and
// guarantees that only the latest query's results are ever applied. An
// in-flight request is never aborted at the transport level; its result
// simply becomes unreachable once the generation advances.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"streamvault/gateway"
	"streamvault/models"
)

// DefaultDebounce is the quiescence window applied when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Gateway is the slice of the gateway contract the coordinator uses.
type Gateway interface {
	SearchContent(ctx context.Context, token, query string) ([]models.ContentItem, error)
}

// TokenSource provides the current auth token, typically *session.Service.
type TokenSource interface {
	Token() (string, bool)
}

// Coordinator owns the search state. Queries are debounced; once the window
// elapses without a newer submission the generation is incremented and the
// gateway is called with that generation. A response is applied only if its
// generation still matches.
type Coordinator struct {
	mu sync.Mutex

	gw     Gateway
	tokens TokenSource
	log    *slog.Logger
	ctx    context.Context
	window time.Duration

	// pendingSeq identifies the latest scheduled debounce task; a timer
	// whose sequence no longer matches was superseded and must not fire.
	pendingSeq   uint64
	pendingQuery string
	timer        *time.Timer

	generation uint64
	query      string
	results    []models.ContentItem

	onUpdate         func(models.SearchState)
	onSessionExpired func()
}

// NewCoordinator creates a coordinator with the given debounce window.
// A non-positive window falls back to DefaultDebounce.
func NewCoordinator(gw Gateway, tokens TokenSource, window time.Duration, log *slog.Logger) *Coordinator {
	if window <= 0 {
		window = DefaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		gw:     gw,
		tokens: tokens,
		log:    log,
		ctx:    context.Background(),
		window: window,
	}
}

// SetContext sets the parent context used for gateway calls fired by the
// debounce timer.
func (c *Coordinator) SetContext(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
}

// SetOnUpdate registers a callback invoked whenever results change. The
// callback runs without internal locks held.
func (c *Coordinator) SetOnUpdate(fn func(models.SearchState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// SetOnSessionExpired registers the implicit-logout hook.
func (c *Coordinator) SetOnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionExpired = fn
}

// SubmitQuery feeds one keystroke's worth of query text. An empty or
// whitespace query clears results immediately and cancels any pending
// timer; no network call is made for it. Anything else (re)starts the
// debounce timer.
func (c *Coordinator) SubmitQuery(text string) {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pendingSeq++

	if trimmed == "" {
		// Advancing the generation orphans any in-flight response.
		c.generation++
		c.query = ""
		c.results = nil
		state := c.stateLocked()
		notify := c.onUpdate
		c.mu.Unlock()
		if notify != nil {
			notify(state)
		}
		return
	}

	c.pendingQuery = trimmed
	seq := c.pendingSeq
	c.timer = time.AfterFunc(c.window, func() { c.fire(seq) })
	c.mu.Unlock()
}

// Reset clears all search state and orphans any pending or in-flight work.
// Called on profile switch and logout.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pendingSeq++
	c.generation++
	c.query = ""
	c.results = nil
}

// State returns a snapshot of the current search state.
func (c *Coordinator) State() models.SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// fire runs when the debounce window elapses with no newer submission.
func (c *Coordinator) fire(seq uint64) {
	// The token lookup happens before taking c.mu: the session service
	// invokes our hooks while holding its own lock.
	token, ok := c.tokens.Token()

	c.mu.Lock()
	if seq != c.pendingSeq {
		// A newer submission won the race with timer.Stop.
		c.mu.Unlock()
		return
	}
	if !ok {
		// No request is issued, so leave query and results as they were.
		q := c.pendingQuery
		c.mu.Unlock()
		c.log.Debug("search skipped, not authenticated", "query", q)
		return
	}
	c.generation++
	g := c.generation
	q := c.pendingQuery
	c.query = q
	ctx := c.ctx
	c.mu.Unlock()

	results, err := c.gw.SearchContent(ctx, token, q)

	c.mu.Lock()
	if g != c.generation {
		c.mu.Unlock()
		c.log.Debug("stale search response discarded", "query", q, "generation", g)
		return
	}
	if err != nil {
		notifyExpired := errors.Is(err, gateway.ErrSessionExpired)
		expired := c.onSessionExpired
		c.mu.Unlock()
		if notifyExpired {
			if expired != nil {
				expired()
			}
			return
		}
		c.log.Warn("search failed, results unchanged", "query", q, "error", err)
		return
	}

	c.results = results
	state := c.stateLocked()
	notify := c.onUpdate
	c.mu.Unlock()
	if notify != nil {
		notify(state)
	}
}

func (c *Coordinator) stateLocked() models.SearchState {
	return models.SearchState{
		Query:      c.query,
		Generation: c.generation,
		Results:    append([]models.ContentItem(nil), c.results...),
	}
}
