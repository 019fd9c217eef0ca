package apiclient

import (
	"net/http"
	"net/url"

	"github.com/pomerium/storefront/pkg/endpoints"
)

// An Endpoint describes one API call.
type Endpoint struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is encoded as JSON. A nil body sends no content.
	Body any
}

// Products lists all products.
func Products() Endpoint {
	return Endpoint{Method: http.MethodGet, Path: endpoints.PathProducts}
}

// ProductsByCategory lists the products of a category.
func ProductsByCategory(categoryID int64) Endpoint {
	return Endpoint{Method: http.MethodGet, Path: endpoints.PathCategoryProducts(categoryID)}
}

// Categories lists all categories.
func Categories() Endpoint {
	return Endpoint{Method: http.MethodGet, Path: endpoints.PathCategories}
}

// Login exchanges credentials for a token.
func Login(body any) Endpoint {
	return Endpoint{Method: http.MethodPost, Path: endpoints.PathAuthLogin, Body: body}
}

// Register creates an account.
func Register(body any) Endpoint {
	return Endpoint{Method: http.MethodPost, Path: endpoints.PathAuthRegister, Body: body}
}

// Logout revokes the bearer token on the server.
func Logout() Endpoint {
	return Endpoint{Method: http.MethodPost, Path: endpoints.PathAuthLogout, Body: struct{}{}}
}

// Refresh exchanges the bearer token for a new one.
func Refresh() Endpoint {
	return Endpoint{Method: http.MethodPost, Path: endpoints.PathAuthRefresh, Body: struct{}{}}
}
