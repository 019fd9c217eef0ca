// Package catalog reads products and categories from the storefront API.
package catalog

import (
	"strings"
)

// A Product is an item for sale. Products read from the API always have an
// id; the id is optional so locally stored products round trip unchanged.
type Product struct {
	ID        *int64   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Discount  float64  `json:"discount"`
	Store     string   `json:"store"`
	ImageURLs []string `json:"image_urls"`
}

// DiscountedPrice returns the price with the discount percentage applied.
func (p *Product) DiscountedPrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price * (100 - min(p.Discount, 100)) / 100
}

// A Category groups products.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Search returns the products whose name or store contains query, ignoring
// case. An empty query matches every product.
func Search(products []Product, query string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}

	var matches []Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Store), query) {
			matches = append(matches, p)
		}
	}
	return matches
}
