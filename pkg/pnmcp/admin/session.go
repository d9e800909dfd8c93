package admin

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Session is an authenticated admin v1 session.
type Session struct {
	Token     string
	UserID    string
	AccountID string
}

const loginTimeout = 30 * time.Second

// LoginFunc authenticates and returns a fresh session.
type LoginFunc func(ctx context.Context) (Session, error)

// SessionCache memoizes the admin v1 session. Concurrent callers that find
// the cache empty share a single login round-trip.
type SessionCache struct {
	login LoginFunc
	group singleflight.Group

	mu      sync.RWMutex
	session *Session
}

// NewSessionCache creates an empty cache backed by login.
func NewSessionCache(login LoginFunc) *SessionCache {
	return &SessionCache{login: login}
}

// EnsureAuthenticated returns the cached session, logging in first when
// there is none. The shared login is detached from ctx so one caller's
// cancellation does not fail the others; each caller still stops waiting
// when its own ctx is done.
func (c *SessionCache) EnsureAuthenticated(ctx context.Context) (Session, error) {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()
	if s != nil {
		return *s, nil
	}

	ch := c.group.DoChan("login", func() (any, error) {
		c.mu.RLock()
		cached := c.session
		c.mu.RUnlock()
		if cached != nil {
			return *cached, nil
		}

		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loginTimeout)
		defer cancel()

		fresh, err := c.login(loginCtx)
		if err != nil {
			return Session{}, err
		}

		c.mu.Lock()
		c.session = &fresh
		c.mu.Unlock()

		return fresh, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Session{}, res.Err
		}

		return res.Val.(Session), nil
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}
}

// Invalidate drops the cached session so the next call logs in again.
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}
