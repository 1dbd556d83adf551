package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// envelope is the uniform response shape used by every gallery endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client talks to the remote gallery API. All record, user and stat data
// lives behind it; the portal never stores any of it durably.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gallery API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Health checks the remote API. A reachable server answering 2xx is
// healthy; anything else is reported through the usual taxonomy.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/health", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RejectedError{Status: resp.StatusCode, Message: "Backend server returned an error. Please check the server."}
	}
	return nil
}

// SendOTP requests a one-time code for the given contact and role.
func (c *Client) SendOTP(ctx context.Context, contact string, userType UserType) error {
	body := map[string]interface{}{"contact": contact, "userType": userType}
	return c.postJSON(ctx, "/auth/send-otp", body, nil, "Failed to send OTP")
}

// VerifyOTP exchanges a contact + code for an Identity.
func (c *Client) VerifyOTP(ctx context.Context, contact, otpCode string) (*Identity, error) {
	body := map[string]interface{}{"contact": contact, "otpCode": otpCode}
	var id Identity
	if err := c.postJSON(ctx, "/auth/verify-otp", body, &id, "Invalid OTP"); err != nil {
		return nil, err
	}
	return &id, nil
}

// EmailSignin performs a credential login.
func (c *Client) EmailSignin(ctx context.Context, email, password string) (*Identity, error) {
	body := map[string]interface{}{"email": email, "password": password}
	var id Identity
	if err := c.postJSON(ctx, "/auth/email-signin", body, &id, "Login failed"); err != nil {
		return nil, err
	}
	return &id, nil
}

// EmailSignup registers a new account with credentials.
func (c *Client) EmailSignup(ctx context.Context, name, email, password string, userType UserType) (*Identity, error) {
	body := map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
		"userType": userType,
	}
	var id Identity
	if err := c.postJSON(ctx, "/auth/email-signup", body, &id, "Registration failed"); err != nil {
		return nil, err
	}
	return &id, nil
}

// GoogleSignin exchanges a provider token plus the chosen role for an Identity.
func (c *Client) GoogleSignin(ctx context.Context, idToken string, userType UserType, email, name, googleID string) (*Identity, error) {
	body := map[string]interface{}{
		"idToken":  idToken,
		"userType": userType,
		"email":    email,
		"name":     name,
		"googleId": googleID,
	}
	var id Identity
	if err := c.postJSON(ctx, "/auth/google-signin", body, &id, "Google Sign-In failed"); err != nil {
		return nil, err
	}
	return &id, nil
}

// UserByAccessCode looks a patient up by their sharing access code.
func (c *Client) UserByAccessCode(ctx context.Context, accessCode string) (*Identity, error) {
	var id Identity
	path := "/auth/user/" + url.PathEscape(accessCode)
	if err := c.getJSON(ctx, path, &id, "No patient found for this access code"); err != nil {
		return nil, err
	}
	return &id, nil
}

// PatientRecords lists a patient's records.
func (c *Client) PatientRecords(ctx context.Context, userID string) ([]Record, error) {
	var records []Record
	path := fmt.Sprintf("/patient/user/%s/records", url.PathEscape(userID))
	if err := c.getJSON(ctx, path, &records, "Failed to load records"); err != nil {
		return nil, err
	}
	return records, nil
}

// PatientStats fetches the patient's aggregate counts.
func (c *Client) PatientStats(ctx context.Context, userID string) (*PatientStats, error) {
	var stats PatientStats
	path := fmt.Sprintf("/patient/user/%s/stats", url.PathEscape(userID))
	if err := c.getJSON(ctx, path, &stats, "Failed to load stats"); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PatientProfile fetches the patient's profile fields.
func (c *Client) PatientProfile(ctx context.Context, userID string) (*PatientProfile, error) {
	var profile PatientProfile
	path := fmt.Sprintf("/patient/user/%s/profile", url.PathEscape(userID))
	if err := c.getJSON(ctx, path, &profile, "Failed to load profile"); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdatePatientProfile stores updated profile fields.
func (c *Client) UpdatePatientProfile(ctx context.Context, userID string, profile PatientProfile) error {
	path := fmt.Sprintf("/patient/user/%s/profile", url.PathEscape(userID))
	return c.putJSON(ctx, path, profile, nil, "Failed to update profile")
}

// HospitalStats fetches the hospital's aggregate counts.
func (c *Client) HospitalStats(ctx context.Context, hospitalID string) (*HospitalStats, error) {
	var stats HospitalStats
	path := fmt.Sprintf("/hospital/%s/stats", url.PathEscape(hospitalID))
	if err := c.getJSON(ctx, path, &stats, "Failed to load stats"); err != nil {
		return nil, err
	}
	return &stats, nil
}

// HospitalRecords lists every record the hospital has uploaded.
func (c *Client) HospitalRecords(ctx context.Context, hospitalID string) ([]Record, error) {
	var records []Record
	path := fmt.Sprintf("/hospital/%s/records", url.PathEscape(hospitalID))
	if err := c.getJSON(ctx, path, &records, "Failed to load records"); err != nil {
		return nil, err
	}
	return records, nil
}

// HospitalPatients lists the hospital's patient roster.
func (c *Client) HospitalPatients(ctx context.Context, hospitalID string) ([]Patient, error) {
	var patients []Patient
	path := fmt.Sprintf("/hospital/%s/patients", url.PathEscape(hospitalID))
	if err := c.getJSON(ctx, path, &patients, "Failed to load patients"); err != nil {
		return nil, err
	}
	return patients, nil
}

// HospitalProfile fetches the hospital's profile fields.
func (c *Client) HospitalProfile(ctx context.Context, hospitalID string) (*HospitalProfile, error) {
	var profile HospitalProfile
	path := "/hospital/" + url.PathEscape(hospitalID)
	if err := c.getJSON(ctx, path, &profile, "Failed to load profile"); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateHospitalProfile stores updated hospital profile fields.
func (c *Client) UpdateHospitalProfile(ctx context.Context, hospitalID string, profile HospitalProfile) error {
	path := "/hospital/" + url.PathEscape(hospitalID)
	return c.putJSON(ctx, path, profile, nil, "Failed to update profile")
}

// UploadRecord submits one record as multipart form data.
func (c *Client) UploadRecord(ctx context.Context, upload UploadRequest) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", upload.FileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return err
	}
	fields := map[string]string{
		"patientAccessCode": upload.PatientAccessCode,
		"recordType":        string(upload.RecordType),
		"notes":             upload.Notes,
		"hospitalId":        upload.HospitalID,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/records/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.doEnvelope(req, nil, "Upload failed. Please check the patient access code and try again.")
}

// SearchRecords queries records by free text, optionally scoped to a hospital.
func (c *Client) SearchRecords(ctx context.Context, query, hospitalID string) ([]Record, error) {
	values := url.Values{}
	values.Set("q", query)
	if hospitalID != "" {
		values.Set("hospitalId", hospitalID)
	}
	var records []Record
	if err := c.getJSON(ctx, "/records/search?"+values.Encode(), &records, "Search failed"); err != nil {
		return nil, err
	}
	return records, nil
}

// PreviewRecord fetches a record's binary content for inline preview.
func (c *Client) PreviewRecord(ctx context.Context, recordID string) ([]byte, string, error) {
	path := fmt.Sprintf("/records/%s/preview", url.PathEscape(recordID))
	return c.getBytes(ctx, path, "Failed to load preview")
}

// DownloadRecord fetches a record's binary content for download.
func (c *Client) DownloadRecord(ctx context.Context, recordID string) ([]byte, string, error) {
	path := fmt.Sprintf("/records/%s/download", url.PathEscape(recordID))
	return c.getBytes(ctx, path, "Failed to download file")
}

// GenerateShareCode asks the API for a fresh share URL for the patient.
func (c *Client) GenerateShareCode(ctx context.Context, userID string) (string, error) {
	var shareURL string
	path := "/share/generate/" + url.PathEscape(userID)
	if err := c.postJSON(ctx, path, nil, &shareURL, "Failed to generate share code"); err != nil {
		return "", err
	}
	return shareURL, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doEnvelope(req, out, fallback)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}, fallback string) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out, fallback)
}

func (c *Client) putJSON(ctx context.Context, path string, body, out interface{}, fallback string) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out, fallback)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doEnvelope(req, out, fallback)
}

// doEnvelope performs the request and applies the shared failure rules:
// transport failures are TransportError, failure envelopes and non-2xx
// statuses are RejectedError preferring the server message, and bodies
// that do not parse are RejectedError with the fallback message.
func (c *Client) doEnvelope(req *http.Request, out interface{}, fallback string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RejectedError{Status: resp.StatusCode, Message: fallback}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &RejectedError{Status: resp.StatusCode, Message: fallback}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || !env.Success {
		message := env.Message
		if message == "" {
			message = fallback
		}
		return &RejectedError{Status: resp.StatusCode, Message: message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &RejectedError{Status: resp.StatusCode, Message: fallback}
		}
	}
	return nil
}

// getBytes fetches a binary endpoint. Failure bodies on these endpoints
// are not guaranteed to carry the envelope, so the status alone decides.
func (c *Client) getBytes(ctx context.Context, path, fallback string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fallback
		if body, readErr := io.ReadAll(resp.Body); readErr == nil {
			var env envelope
			if json.Unmarshal(body, &env) == nil && env.Message != "" {
				message = env.Message
			}
		}
		return nil, "", &RejectedError{Status: resp.StatusCode, Message: message}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &RejectedError{Status: resp.StatusCode, Message: fallback}
	}
	return data, resp.Header.Get("Content-Type"), nil
}
