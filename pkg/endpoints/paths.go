// Package endpoints lists the paths of the storefront REST API, relative to
// the API base URL.
package endpoints

import "strconv"

// well known paths
const (
	PathAuth         = "/" + SubPathAuth
	PathAuthLogin    = PathAuth + "/" + SubPathLogin
	PathAuthLogout   = PathAuth + "/" + SubPathLogout
	PathAuthRefresh  = PathAuth + "/" + SubPathRefresh
	PathAuthRegister = PathAuth + "/" + SubPathRegister
	PathCategories   = "/" + SubPathCategories
	PathProducts     = "/" + SubPathProducts
)

// well known subpaths
const (
	SubPathAuth       = "auth"
	SubPathCategories = "categories"
	SubPathLogin      = "login"
	SubPathLogout     = "logout"
	SubPathProducts   = "products"
	SubPathRefresh    = "refresh"
	SubPathRegister   = "register"
)

// PathCategoryProducts returns the path listing the products of a category.
func PathCategoryProducts(categoryID int64) string {
	return PathCategories + "/" + strconv.FormatInt(categoryID, 10) + PathProducts
}
