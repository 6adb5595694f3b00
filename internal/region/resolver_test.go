package region

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockLister struct {
	Regions []domain.Region
	Err     error
	calls   int32
}

func (m *MockLister) ListRegions(context.Context) ([]domain.Region, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.Regions, m.Err
}

func (m *MockLister) Calls() int { return int(atomic.LoadInt32(&m.calls)) }

var testRegions = []domain.Region{
	{ID: "reg_eu", Name: "Europe", CurrencyCode: "eur", Countries: []domain.Country{{ISO2: "dk"}, {ISO2: "de"}}},
	{ID: "reg_us", Name: "North America", CurrencyCode: "usd", Countries: []domain.Country{{ISO2: "us"}}},
}

func setup(t *testing.T, lister *MockLister) (*Resolver, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResolver(lister, cache.NewRedisStore(client), logger.Nop()), mr
}

func TestRegion_MatchesCountry(t *testing.T) {
	r, _ := setup(t, &MockLister{Regions: testRegions})

	got, err := r.Region(context.Background(), "abc", "DK")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "reg_eu", got.ID)
}

func TestRegion_NoMatch(t *testing.T) {
	r, _ := setup(t, &MockLister{Regions: testRegions})

	got, err := r.Region(context.Background(), "abc", "jp")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegion_BackendError(t *testing.T) {
	r, _ := setup(t, &MockLister{Err: errors.New("boom")})

	_, err := r.Region(context.Background(), "abc", "dk")
	assert.EqualError(t, err, "boom")
}

func TestList_ServedFromCache(t *testing.T) {
	lister := &MockLister{Regions: testRegions}
	r, _ := setup(t, lister)
	ctx := context.Background()

	_, err := r.List(ctx, "abc")
	require.NoError(t, err)
	_, err = r.List(ctx, "abc")
	require.NoError(t, err)

	assert.Equal(t, 1, lister.Calls())
}

func TestList_RevalidatedByTag(t *testing.T) {
	lister := &MockLister{Regions: testRegions}
	r, _ := setup(t, lister)
	ctx := context.Background()

	_, err := r.List(ctx, "abc")
	require.NoError(t, err)
	require.NoError(t, r.cache.Revalidate(ctx, cache.Tag("regions", "abc")))
	_, err = r.List(ctx, "abc")
	require.NoError(t, err)

	assert.Equal(t, 2, lister.Calls())
}

func TestList_CacheDownFallsBackToBackend(t *testing.T) {
	lister := &MockLister{Regions: testRegions}
	r, mr := setup(t, lister)
	mr.Close()

	regions, err := r.List(context.Background(), "abc")
	require.NoError(t, err)
	assert.Len(t, regions, 2)
}

func TestList_ConcurrentCallersShareResult(t *testing.T) {
	lister := &MockLister{Regions: testRegions}
	r, _ := setup(t, lister)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			regions, err := r.List(context.Background(), "abc")
			assert.NoError(t, err)
			assert.Len(t, regions, 2)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, lister.Calls(), 10)
	assert.GreaterOrEqual(t, lister.Calls(), 1)
}
