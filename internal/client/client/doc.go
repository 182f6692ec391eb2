// Package client bootstraps the local store of the drive client: it opens
// the SQLite database and applies the embedded goose migrations.
package client
