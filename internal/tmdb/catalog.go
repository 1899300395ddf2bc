package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/movie-grid/internal/circuitbreaker"
	"github.com/iliyamo/movie-grid/internal/game"
	"github.com/iliyamo/movie-grid/internal/metrics"
	"github.com/iliyamo/movie-grid/internal/model"
)

// Options configures a Catalog.
type Options struct {
	CreditsTTL      time.Duration
	BreakerFailures int
	BreakerReset    time.Duration
	CachePrefix     string
}

// Catalog answers cast membership and title search on top of the TMDB
// client.  Cast lists are cached in Redis when a client is supplied;
// concurrent lookups for one movie share a single upstream call.  Credits
// and search calls go through separate circuit breakers, so a failing
// typeahead cannot block guess verification.
type Catalog struct {
	client  *Client
	cache   redis.Cmdable
	ttl     time.Duration
	prefix  string
	group   singleflight.Group
	breaker *circuitbreaker.Breaker
	search  *circuitbreaker.Breaker
	log     logrus.FieldLogger
}

// NewCatalog wires a Catalog.  cache may be nil.
func NewCatalog(client *Client, cache redis.Cmdable, opts Options, log logrus.FieldLogger) *Catalog {
	if opts.CreditsTTL <= 0 {
		opts.CreditsTTL = 24 * time.Hour
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerReset <= 0 {
		opts.BreakerReset = 30 * time.Second
	}
	if opts.CachePrefix == "" {
		opts.CachePrefix = "credits"
	}
	newBreaker := func() *circuitbreaker.Breaker {
		return circuitbreaker.New(opts.BreakerFailures, opts.BreakerReset,
			circuitbreaker.WithFailurePredicate(countsAgainstUpstream))
	}
	return &Catalog{
		client:  client,
		cache:   cache,
		ttl:     opts.CreditsTTL,
		prefix:  opts.CachePrefix,
		breaker: newBreaker(),
		search:  newBreaker(),
		log:     log,
	}
}

// ActorAppearsInMovie reports whether actorID is in the movie's cast.
// Failing to obtain the cast is game.ErrUpstreamUnavailable, never false.
func (c *Catalog) ActorAppearsInMovie(ctx context.Context, movieID, actorID int64) (bool, error) {
	cast, err := c.cast(ctx, movieID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", game.ErrUpstreamUnavailable, err)
	}
	for _, id := range cast {
		if id == actorID {
			return true, nil
		}
	}
	return false, nil
}

// SearchMovies returns at most eight popular post-1990 matches for query.
// A blank query returns an empty list without calling upstream.
func (c *Catalog) SearchMovies(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchResult{}, nil
	}
	var raw []Movie
	err := c.search.Execute(func() error {
		var err error
		raw, err = c.client.SearchMovies(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrUpstreamUnavailable, err)
	}
	return filterResults(raw), nil
}

func (c *Catalog) cacheKey(movieID int64) string {
	return c.prefix + ":" + strconv.FormatInt(movieID, 10)
}

func (c *Catalog) cast(ctx context.Context, movieID int64) ([]int64, error) {
	if ids, ok := c.cached(ctx, movieID); ok {
		metrics.ObserveOracle(metrics.OracleHit)
		return ids, nil
	}

	key := c.cacheKey(movieID)
	ch := c.group.DoChan(key, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		fetchCtx := context.WithoutCancel(ctx)
		return c.fetch(fetchCtx, movieID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]int64), nil
	}
}

func (c *Catalog) fetch(ctx context.Context, movieID int64) ([]int64, error) {
	var ids []int64
	start := time.Now()
	err := c.breaker.Execute(func() error {
		var err error
		ids, err = c.client.Credits(ctx, movieID)
		return err
	})
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		metrics.ObserveOracle(metrics.OracleCircuitOpen)
		return nil, err
	case err != nil:
		metrics.ObserveOracleLatency(time.Since(start))
		metrics.ObserveOracle(metrics.OracleFailed)
		c.log.WithError(err).WithField("movie_id", movieID).Warn("tmdb credits lookup failed")
		return nil, err
	}
	metrics.ObserveOracleLatency(time.Since(start))
	metrics.ObserveOracle(metrics.OracleFetched)
	c.store(ctx, movieID, ids)
	return ids, nil
}

func (c *Catalog) cached(ctx context.Context, movieID int64) ([]int64, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, c.cacheKey(movieID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Debug("credits cache read failed")
		}
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *Catalog) store(ctx context.Context, movieID int64, ids []int64) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey(movieID), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("credits cache write failed")
	}
}

// countsAgainstUpstream keeps caller cancellation and client-side
// misconfiguration from tripping the breaker.
func countsAgainstUpstream(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNoAPIKey) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code == 404 {
		return false
	}
	return true
}

var _ game.Oracle = (*Catalog)(nil)
