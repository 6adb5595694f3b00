package region

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

type Lister interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
}

// Resolver maps storefront country codes onto backend regions.
type Resolver struct {
	backend Lister
	cache   cache.Store
	log     *slog.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewResolver(backend Lister, store cache.Store, log *slog.Logger) *Resolver {
	return &Resolver{
		backend: backend,
		cache:   store,
		log:     log,
	}
}

// List returns all regions, cached under the browser's "regions" tag.
func (r *Resolver) List(ctx context.Context, cacheID string) ([]domain.Region, error) {
	key := "regions"
	if cacheID != "" {
		key += ":" + cacheID
	}

	v, err, _ := r.sfg.Do(key, func() (interface{}, error) {
		var regions []domain.Region
		err := r.cache.Get(ctx, key, &regions)
		if err == nil {
			return regions, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.log.WarnContext(ctx, "cache get error", "key", key, "error", err)
		}

		regions, err = r.backend.ListRegions(ctx)
		if err != nil {
			return nil, err
		}

		if errSet := r.cache.Set(ctx, key, regions, cache.Tag("regions", cacheID)); errSet != nil {
			r.log.WarnContext(ctx, "cache set error", "key", key, "error", errSet)
		}
		return regions, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Region), nil
}

// Region returns the region serving countryCode, or nil when none does.
func (r *Resolver) Region(ctx context.Context, cacheID, countryCode string) (*domain.Region, error) {
	regions, err := r.List(ctx, cacheID)
	if err != nil {
		return nil, err
	}

	code := strings.ToLower(countryCode)
	for i := range regions {
		if regions[i].HasCountry(code) {
			return &regions[i], nil
		}
	}
	return nil, nil
}
