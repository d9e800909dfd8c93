package admin_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/admin"
)

func TestSessionCacheSharesConcurrentLogin(t *testing.T) {
	var logins atomic.Int32
	release := make(chan struct{})
	cache := admin.NewSessionCache(func(context.Context) (admin.Session, error) {
		logins.Add(1)
		<-release

		return admin.Session{Token: "t"}, nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := cache.EnsureAuthenticated(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "t", s.Token)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, logins.Load())
}

func TestSessionCacheInvalidate(t *testing.T) {
	var logins atomic.Int32
	cache := admin.NewSessionCache(func(context.Context) (admin.Session, error) {
		logins.Add(1)

		return admin.Session{Token: "t"}, nil
	})
	ctx := context.Background()

	_, err := cache.EnsureAuthenticated(ctx)
	require.NoError(t, err)
	_, err = cache.EnsureAuthenticated(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, logins.Load())

	cache.Invalidate()
	_, err = cache.EnsureAuthenticated(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, logins.Load())
}

func TestSessionCacheLoginSurvivesFirstCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	cache := admin.NewSessionCache(func(ctx context.Context) (admin.Session, error) {
		close(started)
		select {
		case <-release:
			return admin.Session{Token: "t"}, nil
		case <-ctx.Done():
			return admin.Session{}, ctx.Err()
		}
	})

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.EnsureAuthenticated(first)
		firstErr <- err
	}()
	<-started

	second := make(chan admin.Session, 1)
	go func() {
		s, err := cache.EnsureAuthenticated(context.Background())
		assert.NoError(t, err)
		second <- s
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	select {
	case s := <-second:
		assert.Equal(t, "t", s.Token)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not receive the shared session")
	}
}
