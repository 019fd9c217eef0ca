package metrics

// Refresh results.
const (
	RefreshSuccess  = "success"
	RefreshFailure  = "failure"
	RefreshDisabled = "disabled"
)

// Logout reasons.
const (
	LogoutUser    = "user"
	LogoutExpired = "expired"
	LogoutRefresh = "refresh_failed"
)

// RecordSessionRefresh counts a token refresh attempt.
func RecordSessionRefresh(result string) {
	registry.sessionRefreshTotal.WithLabelValues(result).Inc()
}

// RecordSessionLogout counts a session that ended for reason.
func RecordSessionLogout(reason string) {
	registry.sessionLogoutTotal.WithLabelValues(reason).Inc()
}

// RecordCatalogCache counts a catalog cache lookup.
func RecordCatalogCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	registry.catalogCacheRequests.WithLabelValues(result).Inc()
}
