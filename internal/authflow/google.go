package authflow

import (
	"context"
	"sync"

	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/session"
)

// GoogleState names the steps of the federated flow.
type GoogleState string

const (
	GoogleIdle             GoogleState = "idle"
	GoogleAwaitingProvider GoogleState = "awaiting_provider"
	GoogleExchangingToken  GoogleState = "exchanging_token"
	GoogleSucceeded        GoogleState = "succeeded"
	GoogleFailed           GoogleState = "failed"
)

// ProviderResult is what the browser shell reports back after running the
// provider's own popup.
type ProviderResult struct {
	IDToken  string `json:"idToken"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	GoogleID string `json:"googleId"`
}

// GoogleFlow exchanges a provider token for an identity. The provider
// interaction itself happens in the browser; this flow owns everything
// after the popup resolves.
type GoogleFlow struct {
	api   *gallery.Client
	store *session.Store

	mu      sync.Mutex
	state   GoogleState
	message string
}

// NewGoogleFlow creates an idle federated flow.
func NewGoogleFlow(api *gallery.Client, store *session.Store) *GoogleFlow {
	return &GoogleFlow{api: api, store: store, state: GoogleIdle}
}

// State returns the current flow state.
func (f *GoogleFlow) State() GoogleState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message returns the last failure message for display.
func (f *GoogleFlow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Begin marks the flow as waiting on the provider popup.
func (f *GoogleFlow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == GoogleAwaitingProvider || f.state == GoogleExchangingToken {
		return ErrSubmissionInFlight
	}
	f.state = GoogleAwaitingProvider
	f.message = ""
	return nil
}

// ReportCancelled records that the user dismissed the provider popup.
// This is a user-cancelled failure, not a connectivity error.
func (f *GoogleFlow) ReportCancelled() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = GoogleFailed
	f.message = ErrProviderCancelled.Error()
}

// Complete exchanges the provider token together with the chosen role.
func (f *GoogleFlow) Complete(ctx context.Context, result ProviderResult, userType gallery.UserType) (*gallery.Identity, error) {
	if result.IDToken == "" {
		return nil, gallery.NewValidationError("Missing provider token")
	}
	if !userType.Valid() {
		return nil, gallery.NewValidationError("Please choose Patient or Hospital")
	}

	f.mu.Lock()
	if f.state == GoogleExchangingToken {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	f.state = GoogleExchangingToken
	f.message = ""
	f.mu.Unlock()

	identity, err := f.api.GoogleSignin(ctx, result.IDToken, userType, result.Email, result.Name, result.GoogleID)
	if err != nil {
		f.mu.Lock()
		f.state = GoogleFailed
		f.message = gallery.UserMessage(err, "Sign-In failed. Please try again.")
		f.mu.Unlock()
		return nil, err
	}

	if err := f.store.SetIdentity(*identity); err != nil {
		f.mu.Lock()
		f.state = GoogleFailed
		f.message = "Failed to save your session"
		f.mu.Unlock()
		return nil, err
	}

	f.mu.Lock()
	f.state = GoogleSucceeded
	f.mu.Unlock()
	return identity, nil
}
