// Package favorites keeps the user's favorite products in the preference
// store.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pomerium/storefront/internal/catalog"
	"github.com/pomerium/storefront/internal/credstore"
	"github.com/pomerium/storefront/internal/log"
)

// A Service reads and changes the favorites list.
type Service struct {
	mu    sync.Mutex
	prefs credstore.PreferenceStore
}

// New creates a new Service backed by prefs.
func New(prefs credstore.PreferenceStore) *Service {
	return &Service{prefs: prefs}
}

// IsFavorite reports whether the product with the given id is a favorite.
func (s *Service) IsFavorite(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return false
	}
	return indexOf(items, productID) >= 0
}

// Toggle adds product to the favorites, or removes it if it already is one,
// and reports whether it is a favorite afterwards. A product without an id
// cannot be matched and is always added.
func (s *Service) Toggle(product catalog.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return false, err
	}

	favorite := true
	if product.ID != nil {
		if i := indexOf(items, *product.ID); i >= 0 {
			items = append(items[:i], items[i+1:]...)
			favorite = false
		}
	}
	if favorite {
		items = append(items, product)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("favorites: encode: %w", err)
	}
	if err := s.prefs.SetPreference(credstore.KeyFavoriteProducts, raw); err != nil {
		return false, fmt.Errorf("favorites: save: %w", err)
	}
	return favorite, nil
}

// All returns the favorites in the order they were added.
func (s *Service) All() ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads the stored list. A list that cannot be decoded is treated as
// empty and is replaced by the next Toggle.
func (s *Service) load() ([]catalog.Product, error) {
	raw, err := s.prefs.GetPreference(credstore.KeyFavoriteProducts)
	if errors.Is(err, credstore.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("favorites: load: %w", err)
	}

	var items []catalog.Product
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn(context.Background()).Err(err).Msg("favorites: ignoring malformed favorites list")
		return nil, nil
	}
	return items, nil
}

func indexOf(items []catalog.Product, productID int64) int {
	for i := range items {
		if items[i].ID != nil && *items[i].ID == productID {
			return i
		}
	}
	return -1
}
