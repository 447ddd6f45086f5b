// Package auth holds the client's identity cache.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/session"
	"github.com/eldercare/careconnect/internal/core/domain"
)

// ErrAnonymous is returned by operations that need a signed-in user.
var ErrAnonymous = errors.New("not signed in")

// State is the lifecycle of the identity cache.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// SessionStore is the persistence the context delegates to.
type SessionStore interface {
	Load(ctx context.Context) (*session.Session, error)
	Save(ctx context.Context, sess session.Session, remember bool) error
	Clear(ctx context.Context) error
}

// Context caches the current identity. It starts in StateLoading and only
// changes through Init, Login and Logout.
type Context struct {
	store SessionStore
	log   zerolog.Logger

	once sync.Once
	mu   sync.RWMutex
	// guarded by mu
	state   State
	current *session.Session
}

func NewContext(store SessionStore, log zerolog.Logger) *Context {
	return &Context{store: store, log: log, state: StateLoading}
}

// Init restores the persisted session. Only the first call does any work.
func (c *Context) Init(ctx context.Context) {
	c.once.Do(func() {
		sess, err := c.store.Load(ctx)
		if err != nil {
			c.log.Warn().Err(err).Msg("session restore failed")
			sess = nil
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state != StateLoading {
			// Login or Logout already settled the state.
			return
		}
		c.set(sess)
	})
}

func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns a copy of the current user, or nil when anonymous.
func (c *Context) User() *domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	u := c.current.User
	return &u
}

// Token returns the bearer token of the current session, if any.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.Token
}

// RememberMe reports whether the current session lives in the long-lived tier.
func (c *Context) RememberMe() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil && c.current.RememberMe
}

func (c *Context) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil && c.current.User.ID != ""
}

// Login replaces the current identity and persists it. The in-memory state
// is updated even if persistence fails.
func (c *Context) Login(ctx context.Context, sess session.Session, remember bool) error {
	if sess.User.ID == "" {
		return session.ErrNoUser
	}
	sess.RememberMe = remember

	c.mu.Lock()
	c.set(&sess)
	c.mu.Unlock()

	if err := c.store.Save(ctx, sess, remember); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Logout forgets the current identity and wipes both tiers.
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.set(nil)
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (c *Context) set(sess *session.Session) {
	if sess == nil || sess.User.ID == "" {
		c.current = nil
		c.state = StateAnonymous
		return
	}
	c.current = sess
	c.state = StateAuthenticated
}
