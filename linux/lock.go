//go:build linux
// +build linux

package linux

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultLockDir is where per-VG lock files live unless configured.
const DefaultLockDir = "/run/lock/lvrebal"

// VGLock is an exclusive advisory lock on a volume group, held for the
// duration of a plan. Two concurrent runs against the same group would race
// on the free extent pool.
type VGLock struct {
	file *os.File
	path string
}

// LockVG takes the lock for vgName, creating the lock file under dir if
// needed. A lock already held by another process fails immediately rather
// than blocking.
func LockVG(dir, vgName string) (*VGLock, error) {
	if dir == "" {
		dir = DefaultLockDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating lock dir %s", dir)
	}

	path := filepath.Join(dir, vgName+".lock")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening lock file %s", path)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()

		if err == unix.EWOULDBLOCK {
			return nil, errors.Errorf(
				"volume group %s is locked by another run", vgName)
		}

		return nil, errors.Wrapf(err, "locking %s", path)
	}

	return &VGLock{file: file, path: path}, nil
}

// Unlock releases the lock. The lock file is left in place; only the flock
// matters.
func (l *VGLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}

	l.file = nil

	return err
}
