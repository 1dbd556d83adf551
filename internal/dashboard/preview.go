package dashboard

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewHandle is a locally-addressable handle over fetched record bytes,
// the portal's equivalent of a browser object URL.
type PreviewHandle struct {
	ID          string
	ContentType string
	data        []byte
}

// PreviewManager owns at most one outstanding handle. Opening a new
// preview releases the previous handle first, so handles cannot pile up
// across open/close cycles.
type PreviewManager struct {
	mu      sync.Mutex
	current *PreviewHandle
}

// NewPreviewManager creates an empty manager.
func NewPreviewManager() *PreviewManager {
	return &PreviewManager{}
}

// Open replaces the outstanding handle with one over the given bytes.
func (m *PreviewManager) Open(data []byte, contentType string) *PreviewHandle {
	handle := &PreviewHandle{
		ID:          uuid.New().String(),
		ContentType: contentType,
		data:        data,
	}

	m.mu.Lock()
	m.current = handle
	m.mu.Unlock()
	return handle
}

// Get returns the bytes behind a handle ID, if it is still outstanding.
func (m *PreviewManager) Get(id string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ID != id {
		return nil, "", false
	}
	return m.current.data, m.current.ContentType, true
}

// Close releases the outstanding handle. Safe to call when empty.
func (m *PreviewManager) Close() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// OutstandingID returns the current handle ID, or empty when none.
func (m *PreviewManager) OutstandingID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.ID
}
