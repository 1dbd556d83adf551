package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-gallery-portal/internal/config"
	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/routeguard"
	"medical-gallery-portal/internal/session"
	"medical-gallery-portal/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
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

func newAuthRouter(t *testing.T, handler http.HandlerFunc) (*gin.Engine, *AuthHandler) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := gallery.NewClient(server.URL, 2*time.Second)
	store := session.NewStore(filepath.Join(t.TempDir(), "session"), "test-secret", time.Hour)
	store.Initialize()

	cfg := &config.Config{}
	cfg.Google.ClientID = "client-id-1"

	auth := NewAuthHandler(api, store, cfg)
	router := gin.New()
	router.GET("/session", auth.Session)
	router.GET("/resolve", auth.Resolve)
	router.POST("/otp/send", auth.SendOTP)
	router.POST("/otp/verify", auth.VerifyOTP)
	router.POST("/signin", auth.SignIn)
	router.POST("/logout", auth.Logout)
	return router, auth
}

func postJSON(router *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, utils.ResponseData) {
	encoded, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	var parsed utils.ResponseData
	json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func getJSON(router *gin.Engine, path string) (*httptest.ResponseRecorder, utils.ResponseData) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	var parsed utils.ResponseData
	json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func galleryIdentity() gallery.Identity {
	return gallery.Identity{
		UserID:     "p-1",
		Name:       "Jane Doe",
		Email:      "user@example.com",
		UserType:   gallery.UserTypePatient,
		AccessCode: "AC-1",
	}
}

func TestSession_CarriesGoogleClientID(t *testing.T) {
	router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	w, body := getJSON(router, "/session")

	require.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, false, data["restoring"])
	assert.Equal(t, "client-id-1", data["googleClientId"])
	assert.Nil(t, data["identity"])
}

func TestResolve_SignedInUserIsBouncedOffLogin(t *testing.T) {
	router, auth := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, auth.Store.SetIdentity(galleryIdentity()))

	w, body := getJSON(router, "/resolve?path="+routeguard.PathLogin)

	require.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, false, data["deferred"])
	assert.Equal(t, routeguard.PathPatientDashboard, data["path"])
	assert.Equal(t, true, data["redirected"])
}

func TestResolve_UnknownPathLandsOnRoot(t *testing.T) {
	router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	w, body := getJSON(router, "/resolve?path=/no-such-page")

	require.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, routeguard.PathLanding, data["path"])
	assert.Equal(t, true, data["redirected"])
}

func TestSendOTP_RejectsUnknownRole(t *testing.T) {
	router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid payloads must not reach the network")
	})

	w, _ := postJSON(router, "/otp/send", gin.H{"contact": "user@example.com", "userType": "ADMIN"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOTP_SendThenVerifySignsIn(t *testing.T) {
	router, auth := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/send-otp":
			writeEnvelope(w, http.StatusOK, true, nil, "OTP sent")
		case "/auth/verify-otp":
			writeEnvelope(w, http.StatusOK, true, galleryIdentity(), "")
		default:
			http.NotFound(w, r)
		}
	})

	w, _ := postJSON(router, "/otp/send", gin.H{"contact": "user@example.com", "userType": "PATIENT"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := postJSON(router, "/otp/verify", gin.H{"otpCode": "123456"})
	require.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, routeguard.PathPatientDashboard, data["redirect"])
	require.NotNil(t, auth.Store.Current())
	assert.Equal(t, "p-1", auth.Store.Current().UserID)
}

func TestSignIn_UnreachableBackendIs502(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	api := gallery.NewClient(server.URL, time.Second)
	server.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "session"), "test-secret", time.Hour)
	store.Initialize()
	auth := NewAuthHandler(api, store, &config.Config{})
	router := gin.New()
	router.POST("/signin", auth.SignIn)

	w, body := postJSON(router, "/signin", gin.H{"email": "user@example.com", "password": "secret123"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, gallery.MsgServerUnreachable, body.Error)
}

func TestSignIn_RejectionSurfacesServerMessage(t *testing.T) {
	router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "Invalid email or password")
	})

	w, body := postJSON(router, "/signin", gin.H{"email": "user@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", body.Error)
}

func TestLogout_IsIdempotent(t *testing.T) {
	router, auth := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, auth.Store.SetIdentity(galleryIdentity()))

	w, body := postJSON(router, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, routeguard.PathLogin, data["redirect"])
	assert.Nil(t, auth.Store.Current())

	w, _ = postJSON(router, "/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
