// Package intercept is the request-interception boundary of the reader
// client. It implements http.RoundTripper and decides for every safe request
// whether it is answered by the network, by a named response cache, or by a
// response synthesized from the local store.
//
// A request flows through four stages:
//
//	Match      classify the request into a Route
//	Network    forward to the next transport; only transport errors fail
//	Fallback   look the target up in the local store or the caches
//	Synthesize build an http.Response from what was found
//
// Dynamic routes (the service's API surface) are network-first. Static
// routes (the shell and its assets) are cache-first with network backfill.
// Mutating requests pass through untouched.
//
// The Interceptor forwards everything unmodified until the Installer has
// filled the static cache and activated the current cache version.
package intercept
