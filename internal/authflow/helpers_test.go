package authflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	s := session.NewStore(filepath.Join(t.TempDir(), "session"), "test_secret", time.Hour)
	s.Initialize()
	return s
}

// countingStore records every notification so tests can assert on the
// exact number of SetIdentity calls a flow made.
func subscribeCounter(s *session.Store) *int {
	count := new(int)
	s.Subscribe(func(*gallery.Identity) { *count++ })
	return count
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": success,
		"data":    data,
		"message": message,
	})
}

func newGalleryServer(t *testing.T, handler http.HandlerFunc) *gallery.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return gallery.NewClient(server.URL, 2*time.Second)
}

func patientIdentity() gallery.Identity {
	return gallery.Identity{
		UserID:     "p-1",
		Name:       "Jane Doe",
		Email:      "user@example.com",
		UserType:   gallery.UserTypePatient,
		AccessCode: "AC-1",
	}
}
