// Package cache stores rendered GET responses for the REST server.
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// KeyPrefix namespaces every response key.
const KeyPrefix = "pokrok:cache:"

type CachedResponse struct {
	Status      int         `json:"status"`
	ContentType string      `json:"content_type"`
	Body        []byte      `json:"body"`
	Headers     http.Header `json:"headers"`
}

type Cache interface {
	Get(ctx context.Context, key string) (CachedResponse, error)
	Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) error
	// Flush drops every cached response.
	Flush(ctx context.Context) error
	Close() error
}

// Key builds the cache key for a request path and raw query.
func Key(path, rawQuery string) string {
	return fmt.Sprintf("%s%s?%s", KeyPrefix, path, rawQuery)
}
