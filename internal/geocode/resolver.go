package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/metrics"
	"github.com/mariasandoval/storelocator-backend/pkg/redis"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

const (
	cacheName           = "geocoding"
	defaultMaxAttempts  = 3
	retryInitialBackoff = 100 * time.Millisecond
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GeocodeKey(normalized string) string
}

type provider interface {
	Geocode(ctx context.Context, input string) (types.Coordinates, error)
}

// Resolver turns free-form addresses and postal codes into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, input string) (types.Coordinates, error)
}

type resolver struct {
	cache        cacheStore
	provider     provider
	logg         *logger.Logger
	cacheTTL     time.Duration
	maxAttempts  int
	cacheMetrics *metrics.CacheMetrics
	group        singleflight.Group
}

// ResolverParams collects the resolver dependencies.
type ResolverParams struct {
	Cache        cacheStore
	Provider     provider
	Logger       *logger.Logger
	CacheTTL     time.Duration
	MaxAttempts  int
	CacheMetrics *metrics.CacheMetrics
}

// NewResolver builds a caching geocode resolver.
func NewResolver(params ResolverParams) (Resolver, error) {
	if params.Cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if params.Provider == nil {
		return nil, fmt.Errorf("geocoding provider required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	attempts := params.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	return &resolver{
		cache:        params.Cache,
		provider:     params.Provider,
		logg:         params.Logger,
		cacheTTL:     params.CacheTTL,
		maxAttempts:  attempts,
		cacheMetrics: params.CacheMetrics,
	}, nil
}

// Normalize canonicalizes an address for cache keying: trimmed, lowered,
// internal whitespace collapsed. Inputs differing only in case or spacing
// share a cache entry.
func Normalize(input string) string {
	return strings.Join(strings.Fields(strings.ToLower(input)), " ")
}

func (r *resolver) Resolve(ctx context.Context, input string) (types.Coordinates, error) {
	normalized := Normalize(input)
	if normalized == "" {
		return types.Coordinates{}, pkgerrors.New(pkgerrors.CodeValidation, "address or postal code is required")
	}

	if coords, ok := r.fromCache(ctx, normalized); ok {
		r.cacheMetrics.IncHit(cacheName)
		return coords, nil
	}
	r.cacheMetrics.IncMiss(cacheName)

	// Concurrent misses for the same normalized input share one provider
	// round-trip.
	result, err, _ := r.group.Do(normalized, func() (any, error) {
		if coords, ok := r.fromCache(ctx, normalized); ok {
			return coords, nil
		}
		coords, err := r.lookup(ctx, normalized)
		if err != nil {
			return types.Coordinates{}, err
		}
		r.store(ctx, normalized, coords)
		return coords, nil
	})
	if err != nil {
		return types.Coordinates{}, err
	}
	return result.(types.Coordinates), nil
}

func (r *resolver) fromCache(ctx context.Context, normalized string) (types.Coordinates, bool) {
	raw, err := r.cache.Get(ctx, r.cache.GeocodeKey(normalized))
	if err != nil {
		if !redis.IsMiss(err) {
			r.logg.Warn(ctx, fmt.Sprintf("geocode cache read failed: %v", err))
		}
		return types.Coordinates{}, false
	}
	var coords types.Coordinates
	if err := json.Unmarshal([]byte(raw), &coords); err != nil {
		r.logg.Warn(ctx, fmt.Sprintf("geocode cache entry corrupt: %v", err))
		return types.Coordinates{}, false
	}
	return coords, true
}

func (r *resolver) store(ctx context.Context, normalized string, coords types.Coordinates) {
	payload, err := json.Marshal(coords)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.cache.GeocodeKey(normalized), string(payload), r.cacheTTL); err != nil {
		// A write failure costs a future provider call, nothing more.
		r.logg.Warn(ctx, fmt.Sprintf("geocode cache write failed: %v", err))
	}
}

// lookup calls the provider with a bounded retry budget. Unresolvable
// addresses fail immediately and are never cached; only provider-side
// failures retry.
func (r *resolver) lookup(ctx context.Context, normalized string) (types.Coordinates, error) {
	var coords types.Coordinates
	backoff := retry.WithMaxRetries(uint64(r.maxAttempts-1), retry.NewFibonacci(retryInitialBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result, err := r.provider.Geocode(ctx, normalized)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
				return retry.RetryableError(err)
			}
			return err
		}
		coords = result
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return types.Coordinates{}, typed
		}
		return types.Coordinates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "geocoding provider unavailable")
	}
	return coords, nil
}
