// Package cli provides the interactive readkeeper terminal client.
//
// The REPL browses the owner directory and item lists, reads items in a
// paged text view whose reading position is tracked and restored, keeps and
// forgets items for offline reading, and drives the service-side sync.
// Network reads go through the offline interceptor, so the same commands
// keep working on downloaded content while the service is unreachable.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
