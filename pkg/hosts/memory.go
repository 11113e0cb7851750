package hosts

import (
	"bytes"
	"os"
	"sync"
	"time"
)

// MemoryFile is an in-memory hosts file, mainly for tests.
// Added counters so callers can check which accesses happened.
type MemoryFile struct {
	mu      sync.Mutex
	name    string
	data    []byte
	version int64

	// ReadOnly makes OpenReadWrite fail until EnsureWritable clears it,
	// mimicking the Windows read-only attribute.
	ReadOnly bool

	// OpenErr, when set, is returned by every open.
	OpenErr error

	Opens      int
	WriteOpens int
	Writes     int
	Ensures    int
}

// NewMemoryFile creates a MemoryFile holding content.
func NewMemoryFile(content string) *MemoryFile {
	return &MemoryFile{name: "memory://hosts", data: []byte(content)}
}

// Content returns the current contents.
func (m *MemoryFile) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}

// Set replaces the contents as an external editor would.
func (m *MemoryFile) Set(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = []byte(content)
	m.version++
}

func (m *MemoryFile) Path() string {
	return m.name
}

func (m *MemoryFile) EnsureWritable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ensures++
	m.ReadOnly = false
	return nil
}

func (m *MemoryFile) OpenRead() (Handle, error) {
	return m.open(false)
}

func (m *MemoryFile) OpenReadWrite() (Handle, error) {
	return m.open(true)
}

func (m *MemoryFile) Stamp() (Stamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stamp{ModTime: time.Unix(0, m.version), Size: int64(len(m.data))}, nil
}

func (m *MemoryFile) open(writable bool) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Opens++
	if m.OpenErr != nil {
		return nil, ioFailure("open", m.name, m.OpenErr)
	}

	if writable {
		if m.ReadOnly {
			return nil, ioFailure("open", m.name, os.ErrPermission)
		}
		m.WriteOpens++
	}

	snapshot := bytes.Clone(m.data)
	return &memHandle{Reader: bytes.NewReader(snapshot), file: m, writable: writable}, nil
}

type memHandle struct {
	*bytes.Reader
	file     *MemoryFile
	writable bool
}

func (h *memHandle) Replace(content []byte) error {
	if !h.writable {
		return ioFailure("write", h.file.name, os.ErrPermission)
	}

	h.file.mu.Lock()
	defer h.file.mu.Unlock()
	h.file.data = bytes.Clone(content)
	h.file.version++
	h.file.Writes++
	return nil
}

func (h *memHandle) Close() error {
	return nil
}
