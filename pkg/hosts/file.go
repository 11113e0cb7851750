package hosts

import (
	"io"
	"os"
	"time"
)

// File is the access capability the table needs over the hosts file.
type File interface {
	// Path names the file in errors and logs.
	Path() string

	// EnsureWritable clears any platform attribute that would make a write
	// fail. It is called once per update before the file is opened.
	EnsureWritable() error

	// OpenRead opens the file for a read-only scan.
	OpenRead() (Handle, error)

	// OpenReadWrite opens the file for a scan followed by at most one
	// Replace.
	OpenReadWrite() (Handle, error)

	// Stamp identifies the current version of the file's contents.
	Stamp() (Stamp, error)
}

// Handle is an open hosts file.
type Handle interface {
	io.Reader

	// Replace overwrites the whole file with content in a single write.
	Replace(content []byte) error

	Close() error
}

// Stamp changes whenever the file's contents may have changed.
type Stamp struct {
	ModTime time.Time
	Size    int64
}

// Equal reports whether s and o describe the same version.
func (s Stamp) Equal(o Stamp) bool {
	return s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// OSFile is a hosts file on the local filesystem. Open handles hold an
// advisory lock: shared for reads, exclusive for read-write.
type OSFile struct {
	path string
}

// NewOSFile returns the file at path. An empty path selects DefaultPath.
func NewOSFile(path string) *OSFile {
	if path == "" {
		path = DefaultPath()
	}
	return &OSFile{path: path}
}

func (f *OSFile) Path() string {
	return f.path
}

func (f *OSFile) EnsureWritable() error {
	return ioFailure("make writable", f.path, ensureWritable(f.path))
}

func (f *OSFile) OpenRead() (Handle, error) {
	fd, err := os.Open(f.path)
	if err != nil {
		return nil, ioFailure("open", f.path, err)
	}

	if err := lockFile(fd, false); err != nil {
		fd.Close()
		return nil, ioFailure("lock", f.path, err)
	}

	return &osHandle{File: fd}, nil
}

func (f *OSFile) OpenReadWrite() (Handle, error) {
	fd, err := os.OpenFile(f.path, os.O_RDWR, 0)
	if err != nil {
		return nil, ioFailure("open", f.path, err)
	}

	if err := lockFile(fd, true); err != nil {
		fd.Close()
		return nil, ioFailure("lock", f.path, err)
	}

	return &osHandle{File: fd, writable: true}, nil
}

func (f *OSFile) Stamp() (Stamp, error) {
	fi, err := os.Stat(f.path)
	if err != nil {
		return Stamp{}, ioFailure("stat", f.path, err)
	}
	return Stamp{ModTime: fi.ModTime(), Size: fi.Size()}, nil
}

type osHandle struct {
	*os.File
	writable bool
}

func (h *osHandle) Replace(content []byte) error {
	if !h.writable {
		return ioFailure("write", h.Name(), os.ErrPermission)
	}

	// Write over the old contents first, then cut whatever is left past the
	// new end.
	if _, err := h.WriteAt(content, 0); err != nil {
		return ioFailure("write", h.Name(), err)
	}

	if err := h.Truncate(int64(len(content))); err != nil {
		return ioFailure("truncate", h.Name(), err)
	}

	return nil
}

func (h *osHandle) Close() error {
	unlockFile(h.File)
	return h.File.Close()
}
