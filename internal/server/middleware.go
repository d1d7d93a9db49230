package server

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/pokrok/internal/cache"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/metrics"
)

// requestLogger logs each request and records it in the request metrics under
// its route pattern.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		metrics.ObserveRequest(r.Method, route, status, elapsed)
		logger.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// cacheResponses serves GET requests from c and stores successful responses.
// Other methods pass through and flush the cache once they succeed.
func cacheResponses(c cache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
				next.ServeHTTP(ww, r)
				if ww.Status() < http.StatusBadRequest {
					if err := c.Flush(r.Context()); err != nil {
						logger.Warn("Failed to invalidate response cache", "error", err)
					}
				}
				return
			}

			key := cache.Key(r.URL.Path, r.URL.RawQuery)
			cached, err := c.Get(r.Context(), key)
			if err == nil {
				metrics.CacheResults.WithLabelValues("hit").Inc()
				for name, values := range cached.Headers {
					for _, v := range values {
						w.Header().Add(name, v)
					}
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}
			if !errors.Is(err, cache.ErrMiss) {
				logger.Warn("Response cache lookup failed", "key", key, "error", err)
			}
			metrics.CacheResults.WithLabelValues("miss").Inc()

			w.Header().Set("X-Cache", "MISS")
			var body bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			if ww.Status() != http.StatusOK {
				return
			}
			headers := w.Header().Clone()
			headers.Del("X-Cache")
			resp := cache.CachedResponse{
				Status:      http.StatusOK,
				ContentType: headers.Get("Content-Type"),
				Body:        body.Bytes(),
				Headers:     headers,
			}
			if err := c.Set(r.Context(), key, resp, ttl); err != nil {
				logger.Warn("Failed to store cached response", "key", key, "error", err)
			}
		})
	}
}
