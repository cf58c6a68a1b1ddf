package intercept

import (
	"net/http"
	"strings"
)

// Route is the policy class of a request.
type Route int

const (
	RoutePassthrough Route = iota
	RouteStatic
	RouteDynamicItem
	RouteDynamicDirectory
	RouteDynamicOther
)

func (r Route) String() string {
	switch r {
	case RouteStatic:
		return "static"
	case RouteDynamicItem:
		return "item"
	case RouteDynamicDirectory:
		return "directory"
	case RouteDynamicOther:
		return "dynamic"
	default:
		return "passthrough"
	}
}

// Dynamic reports whether the route uses the network-first policy.
func (r Route) Dynamic() bool {
	return r == RouteDynamicItem || r == RouteDynamicDirectory || r == RouteDynamicOther
}

// Target is the result of matching a request.
type Target struct {
	Route   Route
	OwnerID string
	ItemID  string
}

// Match classifies req. apiPrefix is the path prefix of the service's API
// surface, e.g. "/api".
func Match(req *http.Request, apiPrefix string) Target {
	if req.Method != http.MethodGet {
		return Target{Route: RoutePassthrough}
	}

	path := req.URL.Path
	prefix := strings.TrimSuffix(apiPrefix, "/")

	rest, ok := strings.CutPrefix(path, prefix+"/")
	if !ok && path != prefix {
		return Target{Route: RouteStatic}
	}

	segs := splitPath(rest)
	switch {
	case len(segs) == 1 && segs[0] == "directory":
		return Target{Route: RouteDynamicDirectory}
	case len(segs) == 3 && segs[0] == "items":
		return Target{Route: RouteDynamicItem, OwnerID: segs[1], ItemID: segs[2]}
	default:
		return Target{Route: RouteDynamicOther}
	}
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// IsNavigation reports whether req is a top-level document load.
func IsNavigation(req *http.Request) bool {
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}
