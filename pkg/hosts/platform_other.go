//go:build !unix && !windows

package hosts

import "os"

// DefaultPath is the system hosts file.
func DefaultPath() string {
	return "/etc/hosts"
}

func ensureWritable(path string) error { return nil }

func lockFile(f *os.File, exclusive bool) error { return nil }

func unlockFile(f *os.File) {}
