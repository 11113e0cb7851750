//go:build unix

package hosts

import (
	"os"

	"golang.org/x/sys/unix"
)

// DefaultPath is the system hosts file.
func DefaultPath() string {
	return "/etc/hosts"
}

// ensureWritable is a no-op: unix has no read-only attribute separate from
// the permission bits, which the open reports on its own.
func ensureWritable(path string) error {
	return nil
}

func lockFile(f *os.File, exclusive bool) error {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}

	for {
		err := unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			return err
		}
	}
}

func unlockFile(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
