package models

import (
	"net/http"
	"time"
)

// CachedResponse is an HTTP response kept in a named response cache.
type CachedResponse struct {
	Key      string
	URL      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}
