// Package offline records which files are stored locally for offline use and
// where.
package offline
