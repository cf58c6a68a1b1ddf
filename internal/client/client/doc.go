// Package client contains the client-side building blocks that talk to the
// backing reading service.
//
// # Overview
//
// The package provides:
//  1. The Client interface: health, directory, items, read state and the
//     sync endpoints of the service.
//  2. HTTPClient, a JSON-over-HTTP implementation. Its transport is normally
//     the offline interceptor, so read calls keep working from local data
//     while the service is unreachable.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations), opening the
//     SQLite store and applying the embedded goose migrations.
//
// # Error Handling
//
// Failures map to the sentinels of package common so callers can use
// errors.Is: ErrNetworkUnavailable for transport errors, ErrNotFound for 404,
// ErrNotFoundOffline for the synthesized offline response, ErrAuthRequired
// and ErrAuthExpired for 401. Other error statuses are *StatusError.
//
// All operations accept context.Context and honor cancellation.
package client
