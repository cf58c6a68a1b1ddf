// Package state holds the process-wide mutable state of the reader client:
// the mirrored sync progress and the online/offline mode. Both are created
// once in main and injected into the components that read or write them.
package state
