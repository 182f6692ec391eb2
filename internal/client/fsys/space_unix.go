//go:build linux || darwin || freebsd

package fsys

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func freeSpace(dir string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", dir, err)
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
