package authflow

import (
	"context"
	"sync"

	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/session"
)

// CredentialState names the steps of the email/password flow.
type CredentialState string

const (
	CredentialIdle       CredentialState = "idle"
	CredentialSubmitting CredentialState = "submitting"
	CredentialSucceeded  CredentialState = "succeeded"
	CredentialFailed     CredentialState = "failed"
)

// CredentialFlow drives email/password sign-in and sign-up.
type CredentialFlow struct {
	api   *gallery.Client
	store *session.Store

	mu      sync.Mutex
	state   CredentialState
	message string
}

// NewCredentialFlow creates an idle credential flow.
func NewCredentialFlow(api *gallery.Client, store *session.Store) *CredentialFlow {
	return &CredentialFlow{api: api, store: store, state: CredentialIdle}
}

// State returns the current flow state.
func (f *CredentialFlow) State() CredentialState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message returns the last failure message for display.
func (f *CredentialFlow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// SignIn performs an email/password login.
func (f *CredentialFlow) SignIn(ctx context.Context, email, password string) (*gallery.Identity, error) {
	if email == "" || password == "" {
		return nil, gallery.NewValidationError("Email and password are required")
	}

	if err := f.begin(); err != nil {
		return nil, err
	}

	identity, err := f.api.EmailSignin(ctx, email, password)
	if err != nil {
		f.fail(gallery.UserMessage(err, "Login failed. Please check your credentials."))
		return nil, err
	}
	return f.finish(identity)
}

// SignUp registers a new account. The password confirmation is checked
// locally before anything goes over the wire.
func (f *CredentialFlow) SignUp(ctx context.Context, name, email, password, confirmPassword string, userType gallery.UserType) (*gallery.Identity, error) {
	switch {
	case name == "" || email == "" || password == "":
		return nil, gallery.NewValidationError("Name, email and password are required")
	case password != confirmPassword:
		return nil, gallery.NewValidationError("Passwords do not match")
	case !userType.Valid():
		return nil, gallery.NewValidationError("Please choose Patient or Hospital")
	}

	if err := f.begin(); err != nil {
		return nil, err
	}

	identity, err := f.api.EmailSignup(ctx, name, email, password, userType)
	if err != nil {
		f.fail(gallery.UserMessage(err, "Sign-Up failed. Please try again."))
		return nil, err
	}
	return f.finish(identity)
}

func (f *CredentialFlow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == CredentialSubmitting {
		return ErrSubmissionInFlight
	}
	f.state = CredentialSubmitting
	f.message = ""
	return nil
}

func (f *CredentialFlow) finish(identity *gallery.Identity) (*gallery.Identity, error) {
	if err := f.store.SetIdentity(*identity); err != nil {
		f.fail("Failed to save your session")
		return nil, err
	}
	f.mu.Lock()
	f.state = CredentialSucceeded
	f.mu.Unlock()
	return identity, nil
}

func (f *CredentialFlow) fail(message string) {
	f.mu.Lock()
	f.state = CredentialFailed
	f.message = message
	f.mu.Unlock()
}
