package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetricsRoundTripper creates a metrics tracking tripper for requests sent
// to the storefront API.
func HTTPMetricsRoundTripper() func(next http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return promhttp.InstrumentRoundTripperCounter(registry.httpClientRequests,
			promhttp.InstrumentRoundTripperDuration(registry.httpClientDuration, next))
	}
}
