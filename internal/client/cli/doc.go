// Package cli provides the interactive drive command-line client.
//
// It wires configuration, the local store, the chunked download engine, the
// listing enumerator and a connectivity monitor behind a small REPL. Typical
// flow: unlock with the master keys (or a password), start the background
// connectivity watcher and the notification printer, then browse folders and
// queue downloads.
//
// Key features:
//   - ls / cd over the remote tree, with a cached fallback when offline
//   - get, offline, gallery and preview downloads
//   - pause, resume and stop of running transfers
//   - color tags and offline storage management
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and watchEvents for details.
package cli
