package catalog_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomerium/storefront/internal/apiclient"
	"github.com/pomerium/storefront/internal/catalog"
	"github.com/pomerium/storefront/internal/credstore"
	"github.com/pomerium/storefront/pkg/apierror"
)

func id(v int64) *int64 { return &v }

// fakeAPI answers each path with a fixed JSON document.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	calls     map[string]int
	err       error
}

func (f *fakeAPI) Do(_ context.Context, ep apiclient.Endpoint, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[ep.Path]++
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.responses[ep.Path]), out)
}

func (f *fakeAPI) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]string{
		"/products": `[
			{"id":1,"name":"Running Shoe","price":100,"discount":20,"store":"Sporty","image_urls":["https://img/1.png"]},
			{"id":2,"name":"Desk Lamp","price":40,"discount":0,"store":"Homey","image_urls":[]}
		]`,
		"/categories/3/products": `[{"id":2,"name":"Desk Lamp","price":40,"discount":0,"store":"Homey","image_urls":[]}]`,
		"/categories":            `[{"id":3,"name":"Home"},{"id":4,"name":"Sports"}]`,
	}}
}

func TestRepository(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	repo := catalog.NewRepository(api)
	ctx := context.Background()

	products, err := repo.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, catalog.Product{
		ID:        id(1),
		Name:      "Running Shoe",
		Price:     100,
		Discount:  20,
		Store:     "Sporty",
		ImageURLs: []string{"https://img/1.png"},
	}, products[0])

	byCategory, err := repo.ProductsByCategory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Desk Lamp", byCategory[0].Name)

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Category{{ID: 3, Name: "Home"}, {ID: 4, Name: "Sports"}}, categories)

	t.Run("cached", func(t *testing.T) {
		_, err := repo.Products(ctx)
		require.NoError(t, err)
		_, err = repo.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, api.callCount("/products"))
		assert.Equal(t, 1, api.callCount("/categories"))
	})

	t.Run("copies", func(t *testing.T) {
		products, err := repo.Products(ctx)
		require.NoError(t, err)
		products[0].Name = "changed"

		again, err := repo.Products(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Running Shoe", again[0].Name)
	})

	t.Run("invalidate", func(t *testing.T) {
		repo.Invalidate(ctx)
		_, err := repo.Products(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, api.callCount("/products"))
	})
}

func TestRepositoryExpiry(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	repo := catalog.NewRepository(api, catalog.WithCacheTTL(20*time.Millisecond))

	_, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		_, err := repo.Categories(context.Background())
		return err == nil && api.callCount("/categories") == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRepositoryError(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.err = apierror.ErrNoInternet
	repo := catalog.NewRepository(api)

	_, err := repo.Products(context.Background())
	assert.ErrorIs(t, err, apierror.ErrNoInternet)

	api.mu.Lock()
	api.err = nil
	api.mu.Unlock()

	products, err := repo.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 2, api.callCount("/products"), "failures are not cached")
}

func TestDiscountedPrice(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		price, discount, expect float64
	}{
		{100, 0, 100},
		{100, 20, 80},
		{100, -5, 100},
		{100, 150, 0},
	} {
		p := catalog.Product{Price: tc.price, Discount: tc.discount}
		assert.InDelta(t, tc.expect, p.DiscountedPrice(), 1e-9, "price %v discount %v", tc.price, tc.discount)
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	products := []catalog.Product{
		{ID: id(1), Name: "Running Shoe", Store: "Sporty"},
		{ID: id(2), Name: "Desk Lamp", Store: "Homey"},
		{ID: id(3), Name: "Trail Shoe", Store: "Outdoor Co"},
	}

	names := func(ps []catalog.Product) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Running Shoe", "Trail Shoe"}, names(catalog.Search(products, "SHOE")))
	assert.Equal(t, []string{"Desk Lamp"}, names(catalog.Search(products, " homey ")))
	assert.Len(t, catalog.Search(products, ""), 3)
	assert.Empty(t, catalog.Search(products, "bicycle"))
}

func TestRepositoryPersistence(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	disk := credstore.NewMemoryPreferences()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	newRepo := func(options ...catalog.Option) *catalog.Repository {
		return catalog.NewRepository(api, append([]catalog.Option{
			catalog.WithPersistence(disk),
			catalog.WithCacheTTL(time.Minute),
			catalog.WithClock(func() time.Time { return now }),
		}, options...)...)
	}
	ctx := context.Background()

	_, err := newRepo().Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.callCount("/products"))

	products, err := newRepo().Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 1, api.callCount("/products"), "a new repository serves the persisted listing")

	now = now.Add(time.Minute)
	_, err = newRepo().Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.callCount("/products"), "an expired listing is fetched again")

	repo := newRepo()
	repo.Invalidate(ctx)
	_, err = disk.GetPreference("catalog_listings")
	assert.ErrorIs(t, err, credstore.ErrNotFound)
	_, err = repo.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, api.callCount("/products"))
}

func TestRepositoryPersistenceEviction(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	disk := credstore.NewMemoryPreferences()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	newRepo := func() *catalog.Repository {
		return catalog.NewRepository(api,
			catalog.WithPersistence(disk),
			catalog.WithCacheSize(1),
			catalog.WithClock(func() time.Time { return now }))
	}
	ctx := context.Background()

	_, err := newRepo().Products(ctx)
	require.NoError(t, err)
	now = now.Add(time.Second)
	_, err = newRepo().Categories(ctx)
	require.NoError(t, err)

	raw, err := disk.GetPreference("catalog_listings")
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc, 1)
	assert.Contains(t, doc, "categories")

	_, err = newRepo().Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.callCount("/products"), "the oldest listing was evicted")
}

func TestRepositoryMalformedPersistence(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	disk := credstore.NewMemoryPreferences()
	require.NoError(t, disk.SetPreference("catalog_listings", []byte(`{"products":{"stored_at":"x"}}`)))

	products, err := catalog.NewRepository(api, catalog.WithPersistence(disk)).Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, 1, api.callCount("/products"))
}
