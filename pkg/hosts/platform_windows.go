//go:build windows

package hosts

import (
	"os"

	"golang.org/x/sys/windows"
)

// DefaultPath is the system hosts file.
func DefaultPath() string {
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return root + `\System32\drivers\etc\hosts`
}

// ensureWritable clears FILE_ATTRIBUTE_READONLY, which Windows sets on the
// hosts file by default.
func ensureWritable(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}

	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}

	if attrs&windows.FILE_ATTRIBUTE_READONLY == 0 {
		return nil
	}

	return windows.SetFileAttributes(p, attrs&^windows.FILE_ATTRIBUTE_READONLY)
}

func lockFile(f *os.File, exclusive bool) error {
	var flags uint32
	if exclusive {
		flags = windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, ^uint32(0), ^uint32(0), ol)
}

func unlockFile(f *os.File) {
	ol := new(windows.Overlapped)
	_ = windows.UnlockFileEx(windows.Handle(f.Fd()), 0, ^uint32(0), ^uint32(0), ol)
}
