package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pomerium/storefront/internal/credstore"
	"github.com/pomerium/storefront/internal/log"
)

// keyListings is the preference holding every persisted listing.
const keyListings = "catalog_listings"

type storedListing struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

func (l storedListing) fresh(now time.Time, ttl time.Duration) bool {
	age := now.Sub(l.StoredAt)
	return age >= 0 && age < ttl
}

// load returns the persisted listing for key if it has not expired.
func load[T any](ctx context.Context, r *Repository, key string) ([]T, bool) {
	if r.disk == nil {
		return nil, false
	}
	r.mu.Lock()
	doc := r.readLocked(ctx)
	r.mu.Unlock()

	entry, ok := doc[key]
	if !ok || !entry.fresh(r.now(), r.ttl) {
		return nil, false
	}
	var out []T
	if err := json.Unmarshal(entry.Data, &out); err != nil {
		log.Warn(ctx).Err(err).Str("listing", key).Msg("catalog: ignoring malformed persisted listing")
		return nil, false
	}
	return out, true
}

// persist stores the listing for key. Expired listings are dropped and the
// oldest ones are evicted once there are more than the cache size.
func (r *Repository) persist(ctx context.Context, key string, listing any) {
	if r.disk == nil {
		return
	}
	data, err := json.Marshal(listing)
	if err != nil {
		log.Warn(ctx).Err(err).Str("listing", key).Msg("catalog: failed to encode listing")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	doc := r.readLocked(ctx)
	doc[key] = storedListing{StoredAt: now, Data: data}
	for k, entry := range doc {
		if !entry.fresh(now, r.ttl) {
			delete(doc, k)
		}
	}
	for len(doc) > max(r.size, 1) {
		oldest := ""
		for k, entry := range doc {
			if oldest == "" || entry.StoredAt.Before(doc[oldest].StoredAt) {
				oldest = k
			}
		}
		delete(doc, oldest)
	}

	raw, err := json.Marshal(doc)
	if err == nil {
		err = r.disk.SetPreference(keyListings, raw)
	}
	if err != nil {
		log.Warn(ctx).Err(err).Str("listing", key).Msg("catalog: failed to persist listing")
	}
}

func (r *Repository) readLocked(ctx context.Context) map[string]storedListing {
	doc := make(map[string]storedListing)
	raw, err := r.disk.GetPreference(keyListings)
	if errors.Is(err, credstore.ErrNotFound) {
		return doc
	} else if err != nil {
		log.Warn(ctx).Err(err).Msg("catalog: failed to read persisted listings")
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn(ctx).Err(err).Msg("catalog: ignoring malformed persisted listings")
		return make(map[string]storedListing)
	}
	return doc
}
