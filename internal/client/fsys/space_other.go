//go:build !linux && !darwin && !freebsd && !windows

package fsys

import "errors"

var errUnsupported = errors.New("free space: unsupported platform")

func freeSpace(string) (uint64, error) {
	return 0, errUnsupported
}

func isCrossDevice(error) bool {
	return false
}
