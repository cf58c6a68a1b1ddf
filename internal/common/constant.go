package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the token value in AuthorizationHeaderName.
	BearerPrefix = "Bearer "

	// OfflineSourceHeader marks responses synthesised from local data.
	OfflineSourceHeader = "X-Offline-Source"
	// RequestIDHeaderName is echoed by the local gateway for every request.
	RequestIDHeaderName = "X-Request-ID"
)
