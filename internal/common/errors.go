// Package common defines the error taxonomy shared by the transfer engine,
// the listing parser and the local store. Callers match with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Transfer admission and guard errors.
	ErrAlreadyInProgress = errors.New("already downloading this file")
	ErrOffline           = errors.New("device is offline")
	ErrPolicyViolation   = errors.New("downloads are restricted to wi-fi")
	ErrOutOfStorage      = errors.New("device is out of storage")

	// Transfer execution errors.
	ErrStopped             = errors.New("stopped")
	ErrFetchFailed         = errors.New("chunk fetch failed")
	ErrDestinationConflict = errors.New("could not prepare destination")

	// Listing errors. ErrDecodeFailed is per record and never aborts a scan.
	ErrDecodeFailed     = errors.New("record is neither a file nor a folder")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Crypto errors.
	ErrUnsupportedVersion = errors.New("unsupported encryption version")
	ErrDecrypt            = errors.New("decryption failed")
)
