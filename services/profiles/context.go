// Package profiles tracks which of the user's profiles is active. Every
// session starts unselected: the caller must pick a profile explicitly
// before profile-scoped operations make sense.
package profiles

import (
	"errors"
	"sync"

	"streamvault/models"
	"streamvault/services/session"
)

// ErrUnknownProfile is returned when the requested profile does not belong
// to the current user.
var ErrUnknownProfile = errors.New("unknown profile")

// UserSource provides the authenticated user, typically *session.Service.
type UserSource interface {
	User() (models.User, bool)
}

// Context is the active-profile selection. Switching profiles resets search
// state but leaves other profiles' cache entries alone.
type Context struct {
	mu          sync.Mutex
	session     UserSource
	resetSearch func()
	active      models.Profile
	selected    bool
}

// NewContext creates an unselected profile context. resetSearch is invoked
// on every successful selection change; nil is allowed.
func NewContext(source UserSource, resetSearch func()) *Context {
	return &Context{session: source, resetSearch: resetSearch}
}

// Select makes the given profile active. The profile must belong to the
// current user.
func (c *Context) Select(profileID string) error {
	user, ok := c.session.User()
	if !ok {
		return session.ErrNotAuthenticated
	}
	profile, ok := user.ProfileByID(profileID)
	if !ok {
		return ErrUnknownProfile
	}

	c.mu.Lock()
	c.active = profile
	c.selected = true
	c.mu.Unlock()

	if c.resetSearch != nil {
		c.resetSearch()
	}
	return nil
}

// Active returns the current selection, if any.
func (c *Context) Active() (models.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.selected
}

// Clear drops the selection. Called when the session ends.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = models.Profile{}
	c.selected = false
}

// CanCreateProfile reports whether the user's plan allows another profile.
// This is a pure query; the gateway remains the source of truth at creation
// time.
func (c *Context) CanCreateProfile() bool {
	user, ok := c.session.User()
	if !ok {
		return false
	}
	return user.CanCreateProfile()
}
