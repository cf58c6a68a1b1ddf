package intercept

import (
	"encoding/hex"
	"net/http"
	"net/url"

	"golang.org/x/crypto/blake2b"
)

// CacheNames are the three caches of one cache version.
type CacheNames struct {
	Prefix  string
	Static  string
	Dynamic string
	Items   string
}

func NewCacheNames(prefix, version string) CacheNames {
	return CacheNames{
		Prefix:  prefix,
		Static:  prefix + "-static-" + version,
		Dynamic: prefix + "-dynamic-" + version,
		Items:   prefix + "-items-" + version,
	}
}

// Current reports whether name is one of the three names of this version.
func (n CacheNames) Current(name string) bool {
	return name == n.Static || name == n.Dynamic || name == n.Items
}

// CacheKey is the request identity used inside a cache: a blake2b-256
// digest of the method and the URL without its fragment.
func CacheKey(method string, u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	sum := blake2b.Sum256([]byte(method + " " + c.String()))
	return hex.EncodeToString(sum[:])
}

// RequestKey is CacheKey for req.
func RequestKey(req *http.Request) string {
	return CacheKey(req.Method, req.URL)
}
