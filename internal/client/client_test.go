package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SingleFlightRefresh(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.refreshDelay = 50 * time.Millisecond
	store := NewMemoryStore()
	seedSession(t, store)
	c := New(srv.URL, store, Options{})

	const n = 10
	var wg sync.WaitGroup
	statuses := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)
			errs[i] = err
			if resp != nil {
				statuses[i] = resp.StatusCode
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, http.StatusOK, statuses[i])
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	_, _, authorized := api.recorded()
	assert.Len(t, authorized, n)
	assert.Equal(t, "new-access", c.Session().AccessToken())
	assert.Equal(t, "refresh-2", c.Session().RefreshToken())
}

func TestDo_SecondUnauthorizedIsTerminal(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.rejectAll = true
	store := NewMemoryStore()
	seedSession(t, store)
	c := New(srv.URL, store, Options{})

	_, err := c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 2, api.protectedHits.Load())
	assert.EqualValues(t, 1, api.refreshCalls.Load())
}

func TestDo_RefreshRejectedEndsSession(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.refreshFail = true
	store := NewMemoryStore()
	seedSession(t, store)
	require.NoError(t, store.Set(KeyOfflineQueue, "[]"))

	ended := 0
	c := New(srv.URL, store, Options{OnSessionEnded: func() { ended++ }})

	_, err := c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)

	assert.ErrorIs(t, err, ErrSessionEnded)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, 1, ended)
	assert.Empty(t, c.Session().AccessToken())
	assert.Empty(t, c.Session().RefreshToken())
	_, ok := c.Session().Identity()
	assert.False(t, ok)
	_, queueKept, _ := store.Get(KeyOfflineQueue)
	assert.True(t, queueKept)
}

func TestDo_ConcurrentRefreshRejectedEndsSessionOnce(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.refreshFail = true
	api.refreshDelay = 50 * time.Millisecond
	store := NewMemoryStore()
	seedSession(t, store)

	var ended atomic.Int32
	c := New(srv.URL, store, Options{OnSessionEnded: func() { ended.Add(1) }})

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.ErrorIs(t, errs[i], ErrSessionEnded)
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 1, ended.Load())
	assert.False(t, c.Session().Present())

	// A request issued after the session ended does not signal again.
	_, err := c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.EqualValues(t, 1, ended.Load())
	assert.EqualValues(t, 1, api.refreshCalls.Load())
}

func TestDo_NoCredentialsDoesNotSignal(t *testing.T) {
	api, srv := newFakeAPI(t)
	ended := false
	c := New(srv.URL, NewMemoryStore(), Options{OnSessionEnded: func() { ended = true }})

	_, err := c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)

	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.False(t, ended)
	assert.Zero(t, api.refreshCalls.Load())
}

func TestDo_NoRefreshTokenEndsSession(t *testing.T) {
	api, srv := newFakeAPI(t)
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyToken, "old-access"))

	ended := false
	c := New(srv.URL, store, Options{OnSessionEnded: func() { ended = true }})

	_, err := c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)

	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.True(t, ended)
	assert.Zero(t, api.refreshCalls.Load())
}

func TestDo_ReplaysBody(t *testing.T) {
	api, srv := newFakeAPI(t)
	store := NewMemoryStore()
	seedSession(t, store)
	c := New(srv.URL, store, Options{})

	body := []byte(`{"itemId":"i-1","quantity":2}`)
	header := http.Header{}
	header.Set("Idempotency-Key", "k-1")
	resp, err := c.Do(context.Background(), http.MethodPost, "/api/movements/checkout", body, header)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	bodies, keys, _ := api.recorded()
	require.Len(t, bodies, 2)
	assert.Equal(t, string(body), bodies[0])
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, []string{"k-1", "k-1"}, keys)
}

func TestDo_Offline(t *testing.T) {
	transport := &switchTransport{}
	transport.offline.Store(true)
	c := New("http://inventory.invalid", NewMemoryStore(), Options{HTTPClient: &http.Client{Transport: transport}})

	_, err := c.Do(context.Background(), http.MethodGet, "/api/users/me", nil, nil)

	assert.ErrorIs(t, err, ErrOffline)
	assert.False(t, c.Reachable(context.Background()))
}

func TestFlush_ResolvesInArrivalOrder(t *testing.T) {
	c := New("http://unused", NewMemoryStore(), Options{})
	c.refreshing = true

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		c.pending = append(c.pending, func(out refreshOutcome) {
			assert.Equal(t, "tok", out.token)
			order = append(order, i)
		})
	}
	c.flush(refreshOutcome{token: "tok"})

	assert.Equal(t, []int{0, 1, 2}, order)
	assert.False(t, c.refreshing)
	assert.Empty(t, c.pending)
}

func TestRenew_WaiterHonorsCancellation(t *testing.T) {
	store := NewMemoryStore()
	seedSession(t, store)
	c := New("http://unused", store, Options{})
	c.refreshing = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.renew(ctx, "old-access")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, c.pending, 1)
}

func TestLoginLogout(t *testing.T) {
	_, srv := newFakeAPI(t)
	store := NewMemoryStore()
	c := New(srv.URL, store, Options{})

	identity, err := c.Login(context.Background(), "wm@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
	assert.Equal(t, "new-access", c.Session().AccessToken())

	cached, ok := c.Session().Identity()
	require.True(t, ok)
	assert.Equal(t, identity, cached)

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Session().AccessToken())
}
