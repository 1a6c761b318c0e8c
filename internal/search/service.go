package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mariasandoval/storelocator-backend/internal/stores"
	"github.com/mariasandoval/storelocator-backend/pkg/config"
	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/geo"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/metrics"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/redis"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

const cacheName = "search"

type storeFinder interface {
	FindWithinBox(ctx context.Context, box geo.BoundingBox, storeType *enums.StoreType, status *enums.StoreStatus) ([]models.Store, error)
}

type geocodeResolver interface {
	Resolve(ctx context.Context, input string) (types.Coordinates, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SearchKey(fingerprint string) string
}

// Service ranks stores by proximity to a query point.
type Service interface {
	Search(ctx context.Context, input Input) (*ResultPageDTO, error)
}

type service struct {
	repo         storeFinder
	geocoder     geocodeResolver
	cache        cacheStore
	logg         *logger.Logger
	cfg          config.SearchConfig
	cacheMetrics *metrics.CacheMetrics
	now          func() time.Time
}

// ServiceParams collects the search service dependencies.
type ServiceParams struct {
	Repo         storeFinder
	Geocoder     geocodeResolver
	Cache        cacheStore
	Logger       *logger.Logger
	Config       config.SearchConfig
	CacheMetrics *metrics.CacheMetrics
	Now          func() time.Time
}

// NewService builds the search service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Geocoder == nil {
		return nil, fmt.Errorf("geocode resolver required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:         params.Repo,
		geocoder:     params.Geocoder,
		cache:        params.Cache,
		logg:         params.Logger,
		cfg:          params.Config,
		cacheMetrics: params.CacheMetrics,
		now:          now,
	}, nil
}

func (s *service) Search(ctx context.Context, input Input) (*ResultPageDTO, error) {
	normalized, err := s.normalize(input)
	if err != nil {
		return nil, err
	}
	page := pagination.Normalize(normalized.Page)

	key := s.cache.SearchKey(fingerprint(normalized, page))
	if cached, ok := s.fromCache(ctx, key); ok {
		s.cacheMetrics.IncHit(cacheName)
		return cached, nil
	}
	s.cacheMetrics.IncMiss(cacheName)

	origin, err := s.resolveOrigin(ctx, normalized)
	if err != nil {
		return nil, err
	}

	box := geo.BoxAround(origin, normalized.Filters.RadiusMiles)
	candidates, err := s.repo.FindWithinBox(ctx, box, normalized.Filters.StoreType, normalized.Filters.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search stores")
	}

	ranked := s.rank(origin, candidates, normalized.Filters)
	result := s.paginate(ranked, origin, page)
	s.store(ctx, key, result)
	return result, nil
}

// normalize applies defaults and rejects malformed requests before any
// cache or provider work.
func (s *service) normalize(input Input) (Input, error) {
	hasLocation := input.Location != nil
	hasAddress := strings.TrimSpace(input.Address) != ""
	if hasLocation == hasAddress {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of location or address is required")
	}
	if hasLocation {
		if err := input.Location.Validate(); err != nil {
			return Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
		}
	}

	if input.Filters.RadiusMiles == 0 {
		input.Filters.RadiusMiles = s.cfg.DefaultRadiusMiles
	}
	if input.Filters.RadiusMiles <= 0 {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation, "radius_miles must be positive")
	}
	if input.Filters.RadiusMiles > s.cfg.MaxRadiusMiles {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("radius_miles cannot exceed %g", s.cfg.MaxRadiusMiles))
	}

	if input.Filters.StoreType != nil && !input.Filters.StoreType.IsValid() {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid store type")
	}
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid store status")
	}
	if input.Filters.Status == nil {
		active := enums.StoreStatusActive
		input.Filters.Status = &active
	}
	return input, nil
}

func (s *service) resolveOrigin(ctx context.Context, input Input) (types.Coordinates, error) {
	if input.Location != nil {
		return *input.Location, nil
	}
	return s.geocoder.Resolve(ctx, input.Address)
}

// rank applies the exact radius cut and the services filter, then orders
// ascending by distance with store_id as the deterministic tie-break.
func (s *service) rank(origin types.Coordinates, candidates []models.Store, filters Filters) []ResultDTO {
	wanted := make([]string, 0, len(filters.Services))
	for _, svc := range filters.Services {
		svc = strings.ToLower(strings.TrimSpace(svc))
		if svc != "" {
			wanted = append(wanted, svc)
		}
	}

	at := s.now()
	ranked := make([]ResultDTO, 0, len(candidates))
	for i := range candidates {
		store := &candidates[i]
		distance := geo.DistanceMiles(origin, types.Coordinates{
			Latitude:  store.Latitude,
			Longitude: store.Longitude,
		})
		if distance > filters.RadiusMiles {
			continue
		}
		if !offersAll(store.Services, wanted) {
			continue
		}
		dto := stores.FromModel(store)
		if filters.OpenNow && !stores.OpenAt(dto.Hours.For(at.Weekday()), at) {
			continue
		}
		ranked = append(ranked, ResultDTO{
			StoreDTO:      *dto,
			DistanceMiles: distance,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceMiles != ranked[j].DistanceMiles {
			return ranked[i].DistanceMiles < ranked[j].DistanceMiles
		}
		return ranked[i].StoreID < ranked[j].StoreID
	})
	return ranked
}

func (s *service) paginate(ranked []ResultDTO, origin types.Coordinates, page pagination.Params) *ResultPageDTO {
	start, end := pagination.Slice(page, len(ranked))
	data := make([]ResultDTO, end-start)
	copy(data, ranked[start:end])

	at := s.now()
	for i := range data {
		data[i].IsOpenNow = stores.OpenAt(data[i].Hours.For(at.Weekday()), at)
	}

	return &ResultPageDTO{
		Data:       data,
		Total:      len(ranked),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: pagination.TotalPages(len(ranked), page.PageSize),
		Origin:     origin,
	}
}

func (s *service) fromCache(ctx context.Context, key string) (*ResultPageDTO, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(ctx, fmt.Sprintf("search cache read failed: %v", err))
		}
		return nil, false
	}
	var page ResultPageDTO
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("search cache entry corrupt: %v", err))
		return nil, false
	}
	return &page, true
}

func (s *service) store(ctx context.Context, key string, page *ResultPageDTO) {
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.cfg.ResultsCacheTTL()); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("search cache write failed: %v", err))
	}
}

func offersAll(offered []string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(offered))
	for _, svc := range offered {
		have[strings.ToLower(strings.TrimSpace(svc))] = struct{}{}
	}
	for _, svc := range wanted {
		if _, ok := have[svc]; !ok {
			return false
		}
	}
	return true
}
