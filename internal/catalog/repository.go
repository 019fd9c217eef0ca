package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pomerium/storefront/internal/apiclient"
	"github.com/pomerium/storefront/internal/credstore"
	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/internal/telemetry/metrics"
)

const (
	// DefaultCacheTTL is how long a listing is served from the cache.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultCacheSize is the number of listings kept in the cache.
	DefaultCacheSize = 64
)

// A Doer sends an API request and decodes the response into out.
type Doer interface {
	Do(ctx context.Context, ep apiclient.Endpoint, out any) error
}

// A Repository reads the catalog through a Doer and caches every listing.
// Listings are kept in memory and, when a persistent store is configured,
// across processes.
type Repository struct {
	api        Doer
	ttl        time.Duration
	size       int
	now        func() time.Time
	products   *expirable.LRU[string, []Product]
	categories *expirable.LRU[string, []Category]

	mu   sync.Mutex
	disk credstore.PreferenceStore
}

type config struct {
	ttl  time.Duration
	size int
	now  func() time.Time
	disk credstore.PreferenceStore
}

// An Option customizes a Repository.
type Option func(*config)

// WithCacheTTL sets how long listings are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cfg *config) {
		cfg.ttl = ttl
	}
}

// WithCacheSize sets how many listings are cached.
func WithCacheSize(size int) Option {
	return func(cfg *config) {
		cfg.size = size
	}
}

// WithPersistence keeps listings in store so that later processes can serve
// them until they expire.
func WithPersistence(store credstore.PreferenceStore) Option {
	return func(cfg *config) {
		cfg.disk = store
	}
}

// WithClock sets the clock used to age persisted listings.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		cfg.now = now
	}
}

// NewRepository creates a new Repository.
func NewRepository(api Doer, options ...Option) *Repository {
	cfg := &config{ttl: DefaultCacheTTL, size: DefaultCacheSize, now: time.Now}
	for _, option := range options {
		option(cfg)
	}
	return &Repository{
		api:        api,
		ttl:        cfg.ttl,
		size:       cfg.size,
		now:        cfg.now,
		products:   expirable.NewLRU[string, []Product](cfg.size, nil, cfg.ttl),
		categories: expirable.NewLRU[string, []Category](cfg.size, nil, cfg.ttl),
		disk:       cfg.disk,
	}
}

// Products lists all products.
func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	return fetch(ctx, r, r.products, "products", apiclient.Products())
}

// ProductsByCategory lists the products of the category with the given id.
func (r *Repository) ProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	key := "categories/" + strconv.FormatInt(categoryID, 10) + "/products"
	return fetch(ctx, r, r.products, key, apiclient.ProductsByCategory(categoryID))
}

// Categories lists all categories.
func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	return fetch(ctx, r, r.categories, "categories", apiclient.Categories())
}

// Invalidate drops every cached listing, persisted ones included.
func (r *Repository) Invalidate(ctx context.Context) {
	r.products.Purge()
	r.categories.Purge()
	if r.disk == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.disk.DeletePreference(keyListings); err != nil {
		log.Warn(ctx).Err(err).Msg("catalog: failed to drop persisted listings")
	}
}

func fetch[T any](ctx context.Context, r *Repository, cache *expirable.LRU[string, []T], key string, ep apiclient.Endpoint) ([]T, error) {
	if cached, ok := cache.Get(key); ok {
		metrics.RecordCatalogCache(true)
		return slices.Clone(cached), nil
	}
	if stored, ok := load[T](ctx, r, key); ok {
		metrics.RecordCatalogCache(true)
		cache.Add(key, stored)
		return slices.Clone(stored), nil
	}
	metrics.RecordCatalogCache(false)

	var out []T
	if err := r.api.Do(ctx, ep, &out); err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", key, err)
	}
	cache.Add(key, out)
	r.persist(ctx, key, out)
	log.Debug(ctx).Str("listing", key).Int("count", len(out)).Msg("catalog: cached listing")
	return slices.Clone(out), nil
}
