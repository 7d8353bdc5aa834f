package middleware

import (
	"net/http"
	"strconv"

	"customkeeps/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics labels requests by chi route pattern so ids do not explode the
// label space.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.StartTimer()
		rec := record(w)

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}

		metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		timer.ObserveMs(metrics.HTTPDuration.WithLabelValues(r.Method, path))
	})
}
