// Package fsys is the file system capability of the drive client: the
// operations the transfer engine needs on reconstruction files, backed by
// the local OS.
package fsys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/drivesync/internal/filex"
	"github.com/google/uuid"
)

// FileSystem is what the engine needs from local storage.
type FileSystem interface {
	Stat(path string) (os.FileInfo, error)
	Exists(path string) bool
	// Move renames src to dst, replacing dst.
	Move(src, dst string) error
	// Copy writes a copy of src at dst, replacing dst.
	Copy(src, dst string) error
	// Append appends the contents of src to dst.
	Append(dst, src string) error
	// Unlink removes path. Missing files are not an error.
	Unlink(path string) error
	// FreeSpace returns the bytes available to the user on the volume
	// holding dir.
	FreeSpace(dir string) (uint64, error)
	// CacheDirectory is where temporary reconstruction files live.
	CacheDirectory() string
	// TempPath returns a fresh, unused path inside the cache directory.
	TempPath() string
}

// OS implements FileSystem on the host file system.
type OS struct {
	cacheDir string
	tmpDir   string
}

// NewOS creates cacheDir and its tmp subdirectory if needed.
func NewOS(cacheDir string) (*OS, error) {
	abs, err := filex.EnsureDir(cacheDir)
	if err != nil {
		return nil, err
	}
	tmp, err := filex.EnsureDir(filepath.Join(abs, "tmp"))
	if err != nil {
		return nil, err
	}
	return &OS{cacheDir: abs, tmpDir: tmp}, nil
}

func (o *OS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (o *OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (o *OS) Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("move %s: %w", filepath.Base(src), err)
	}

	if err := o.Copy(src, dst); err != nil {
		return err
	}
	return o.Unlink(src)
}

func (o *OS) Copy(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return nil
}

func (o *OS) Append(dst, src string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("append %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("append to %s: %w", filepath.Base(dst), err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("append %s: %w", filepath.Base(src), err)
	}
	return nil
}

func (o *OS) Unlink(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("unlink %s: %w", filepath.Base(path), err)
}

func (o *OS) FreeSpace(dir string) (uint64, error) {
	return freeSpace(dir)
}

func (o *OS) CacheDirectory() string {
	return o.cacheDir
}

func (o *OS) TempPath() string {
	return filepath.Join(o.tmpDir, uuid.NewString())
}

// ClearTemp removes leftovers of interrupted transfers. Call it before any
// transfer starts.
func (o *OS) ClearTemp() error {
	return filex.ClearDir(o.tmpDir)
}

// Evictor frees cache space.
type Evictor interface {
	Evict(ctx context.Context) error
}

// DirEvictor empties a fixed list of derived cache directories (thumbnails,
// previews) that can be rebuilt on demand.
type DirEvictor struct {
	Dirs []string
}

func (e DirEvictor) Evict(ctx context.Context) error {
	var errs []error
	for _, d := range e.Dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := filex.ClearDir(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
