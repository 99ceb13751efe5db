package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomwugdgz/qqtime/internal/metrics"
)

// Instrument counts requests by status class and observes latency.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		metrics.HTTPRequests.WithLabelValues(r.Method, fmt.Sprintf("%dxx", rec.status/100)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
