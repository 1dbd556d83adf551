package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medical-gallery-portal/internal/gallery"
)

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

func hospitalIdentity() gallery.Identity {
	return gallery.Identity{
		UserID:     "h-1",
		Name:       "General Hospital",
		Email:      "admin@hospital.example",
		UserType:   gallery.UserTypeHospital,
		AccessCode: "AC-H1",
	}
}
