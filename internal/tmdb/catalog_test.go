package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-grid/internal/game"
)

// memCache implements the two commands the catalog uses.
type memCache struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (m *memCache) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.([]byte)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type fakeTMDB struct {
	*httptest.Server
	hits   atomic.Int32
	status atomic.Int32
	gate   chan struct{}

	// searchStatus, when set, overrides status for /3/search/movie.
	searchStatus atomic.Int32
}

func newFakeTMDB(t *testing.T) *fakeTMDB {
	f := &fakeTMDB{}
	f.status.Store(http.StatusOK)
	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/550/credits", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		if f.gate != nil {
			<-f.gate
		}
		if code := int(f.status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 550,
			"cast": []map[string]any{
				{"id": 819, "name": "Edward Norton"},
				{"id": 287, "name": "Brad Pitt"},
				{"id": 1283, "name": "Helena Bonham Carter"},
			},
		})
	})
	mux.HandleFunc("/3/search/movie", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "false", q.Get("include_adult"))
		assert.Equal(t, "en-US", q.Get("language"))
		assert.Equal(t, "1", q.Get("page"))
		code := int(f.status.Load())
		if s := int(f.searchStatus.Load()); s != 0 {
			code = s
		}
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": 550, "title": "Fight Club", "release_date": "1999-10-15", "popularity": 61.4, "poster_path": "/fc.jpg", "vote_count": 30000},
				{"id": 1, "title": "Old Fight", "release_date": "1985-01-01", "popularity": 20.0},
				{"id": 2, "title": "Obscure Fight", "release_date": "2005-01-01", "popularity": 1.2},
			},
		})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestCatalog(t *testing.T, srv *fakeTMDB, cache redis.Cmdable, opts Options) *Catalog {
	logger, _ := test.NewNullLogger()
	return NewCatalog(NewClient(srv.URL, "test-key", time.Second), cache, opts, logger)
}

func TestActorAppearsInMovie(t *testing.T) {
	srv := newFakeTMDB(t)
	c := newTestCatalog(t, srv, nil, Options{})

	ok, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ActorAppearsInMovie(context.Background(), 550, 31)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpstreamFailureIsNeverIncorrect(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusNotFound, http.StatusUnauthorized} {
		srv := newFakeTMDB(t)
		srv.status.Store(int32(code))
		c := newTestCatalog(t, srv, nil, Options{})

		ok, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
		assert.False(t, ok)
		assert.ErrorIs(t, err, game.ErrUpstreamUnavailable, "status %d", code)
		var se *StatusError
		assert.ErrorAs(t, err, &se)
	}
}

func TestUnreachableUpstream(t *testing.T) {
	srv := newFakeTMDB(t)
	srv.Close()
	c := newTestCatalog(t, srv, nil, Options{})
	_, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
	assert.ErrorIs(t, err, game.ErrUpstreamUnavailable)
}

func TestMissingAPIKey(t *testing.T) {
	srv := newFakeTMDB(t)
	logger, _ := test.NewNullLogger()
	c := NewCatalog(NewClient(srv.URL, "", time.Second), nil, Options{}, logger)
	_, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.ErrorIs(t, err, game.ErrUpstreamUnavailable)
	assert.Zero(t, srv.hits.Load())
}

func TestBreakerShortCircuits(t *testing.T) {
	srv := newFakeTMDB(t)
	srv.status.Store(http.StatusBadGateway)
	c := newTestCatalog(t, srv, nil, Options{BreakerFailures: 2, BreakerReset: time.Hour})

	for i := 0; i < 2; i++ {
		_, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
		require.Error(t, err)
	}
	require.EqualValues(t, 2, srv.hits.Load())

	_, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
	assert.ErrorIs(t, err, game.ErrUpstreamUnavailable)
	assert.EqualValues(t, 2, srv.hits.Load())
}

func TestCreditsAreCached(t *testing.T) {
	srv := newFakeTMDB(t)
	cache := newMemCache()
	c := newTestCatalog(t, srv, cache, Options{CreditsTTL: time.Hour})

	for i := 0; i < 3; i++ {
		ok, err := c.ActorAppearsInMovie(context.Background(), 550, 819)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.EqualValues(t, 1, srv.hits.Load())
	assert.JSONEq(t, `[819,287,1283]`, string(cache.data["credits:550"]))
	assert.Equal(t, time.Hour, cache.ttls["credits:550"])
}

func TestConcurrentLookupsShareOneFetch(t *testing.T) {
	srv := newFakeTMDB(t)
	srv.gate = make(chan struct{})
	c := newTestCatalog(t, srv, newMemCache(), Options{})

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(srv.gate)
	wg.Wait()
	assert.EqualValues(t, 1, srv.hits.Load())
}

func TestSearchMovies(t *testing.T) {
	srv := newFakeTMDB(t)
	c := newTestCatalog(t, srv, nil, Options{})

	got, err := c.SearchMovies(context.Background(), "  fight ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 550, got[0].TMDBID)
	assert.Equal(t, "Fight Club", got[0].Title)
	require.NotNil(t, got[0].Year)
	assert.Equal(t, "1999", *got[0].Year)
	assert.Equal(t, "/fc.jpg", got[0].PosterPath)
	assert.Equal(t, 30000, got[0].VoteCount)

	empty, err := c.SearchMovies(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.EqualValues(t, 1, srv.hits.Load())

	srv.status.Store(http.StatusServiceUnavailable)
	_, err = c.SearchMovies(context.Background(), "fight")
	assert.ErrorIs(t, err, game.ErrUpstreamUnavailable)
}

func TestSearchFailuresDoNotBlockCredits(t *testing.T) {
	srv := newFakeTMDB(t)
	srv.searchStatus.Store(http.StatusBadGateway)
	c := newTestCatalog(t, srv, nil, Options{BreakerFailures: 2, BreakerReset: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := c.SearchMovies(context.Background(), "fight")
		require.ErrorIs(t, err, game.ErrUpstreamUnavailable)
	}
	// The third search was short-circuited.
	require.EqualValues(t, 2, srv.hits.Load())

	ok, err := c.ActorAppearsInMovie(context.Background(), 550, 287)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 3, srv.hits.Load())
}
