package query

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/wonny/covidtrend/internal/metrics"
)

// ForecastCache is satisfied by pkg/redis.Cache
type ForecastCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// cacheOpTimeout bounds a single cache round trip
const cacheOpTimeout = 250 * time.Millisecond

// breakerCache guards the cache with a circuit breaker. A failing or open
// cache is treated as a miss.
type breakerCache struct {
	cache   ForecastCache
	breaker *gobreaker.CircuitBreaker[bool]
	log     zerolog.Logger
}

func newBreakerCache(cache ForecastCache, log zerolog.Logger) *breakerCache {
	settings := gobreaker.Settings{
		Name:        "forecast-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state changed")
		},
	}

	return &breakerCache{
		cache:   cache,
		breaker: gobreaker.NewCircuitBreaker[bool](settings),
		log:     log,
	}
}

// get returns true on a hit; every failure is logged and counted as a miss
func (c *breakerCache) get(ctx context.Context, key string, dest interface{}) bool {
	found, err := c.breaker.Execute(func() (bool, error) {
		opCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
		defer cancel()
		return c.cache.Get(opCtx, key, dest)
	})
	if err != nil {
		c.recordError("get", key, err)
		metrics.RecordCacheLookup(false)
		return false
	}

	metrics.RecordCacheLookup(found)
	return found
}

func (c *breakerCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	_, err := c.breaker.Execute(func() (bool, error) {
		opCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
		defer cancel()
		return true, c.cache.Set(opCtx, key, value, ttl)
	})
	if err != nil {
		c.recordError("set", key, err)
	}
}

func (c *breakerCache) recordError(op, key string, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordCacheError("breaker_open")
		return
	}
	metrics.RecordCacheError(op)
	c.log.Warn().Err(err).Str("op", op).Str("key", key).Msg("forecast cache unavailable")
}

func (c *breakerCache) state() gobreaker.State {
	return c.breaker.State()
}
