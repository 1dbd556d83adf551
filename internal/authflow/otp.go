package authflow

import (
	"context"
	"sync"

	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/session"
)

// OTPCodeLength is the number of digits in a one-time code.
const OTPCodeLength = 6

// OTPState names the steps of the one-time-code login.
type OTPState string

const (
	OTPIdle         OTPState = "idle"
	OTPSending      OTPState = "sending"
	OTPAwaitingCode OTPState = "awaiting_code"
	OTPVerifying    OTPState = "verifying"
	OTPSucceeded    OTPState = "succeeded"
	OTPFailed       OTPState = "failed"
)

// OTPFlow drives contact -> code -> identity.
type OTPFlow struct {
	api   *gallery.Client
	store *session.Store

	mu       sync.Mutex
	state    OTPState
	contact  string
	userType gallery.UserType
	message  string
}

// NewOTPFlow creates an idle OTP flow.
func NewOTPFlow(api *gallery.Client, store *session.Store) *OTPFlow {
	return &OTPFlow{api: api, store: store, state: OTPIdle}
}

// State returns the current flow state.
func (f *OTPFlow) State() OTPState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Contact returns the contact the code was sent to. It survives failed
// verification attempts so the user can retry without retyping it.
func (f *OTPFlow) Contact() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contact
}

// Message returns the last failure message for display.
func (f *OTPFlow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Start submits the contact + role and requests a code. An empty contact
// fails locally without touching the network.
func (f *OTPFlow) Start(ctx context.Context, contact string, userType gallery.UserType) error {
	if contact == "" {
		return gallery.NewValidationError("Please enter your phone number or email")
	}
	if !userType.Valid() {
		return gallery.NewValidationError("Please choose Patient or Hospital")
	}

	f.mu.Lock()
	if f.state == OTPSending || f.state == OTPVerifying {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	f.state = OTPSending
	f.contact = contact
	f.userType = userType
	f.message = ""
	f.mu.Unlock()

	if err := f.api.SendOTP(ctx, contact, userType); err != nil {
		f.fail(gallery.UserMessage(err, "Failed to send OTP"))
		return err
	}

	f.setState(OTPAwaitingCode)
	return nil
}

// SubmitCode verifies a complete code. Incomplete codes are rejected
// locally; a server rejection returns the flow to AwaitingCode so the
// user may retry or request a new code.
func (f *OTPFlow) SubmitCode(ctx context.Context, code string) (*gallery.Identity, error) {
	if !completeCode(code) {
		return nil, gallery.NewValidationError("Please enter the complete %d-digit code", OTPCodeLength)
	}

	f.mu.Lock()
	if f.state == OTPSending || f.state == OTPVerifying {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if f.state != OTPAwaitingCode {
		f.mu.Unlock()
		return nil, gallery.NewValidationError("Request a code before verifying")
	}
	contact := f.contact
	f.state = OTPVerifying
	f.message = ""
	f.mu.Unlock()

	identity, err := f.api.VerifyOTP(ctx, contact, code)
	if err != nil {
		// Wrong or expired code: back to code entry, contact preserved.
		f.mu.Lock()
		f.state = OTPAwaitingCode
		f.message = gallery.UserMessage(err, "Invalid OTP")
		f.mu.Unlock()
		return nil, err
	}

	if err := f.store.SetIdentity(*identity); err != nil {
		f.fail("Failed to save your session")
		return nil, err
	}
	f.setState(OTPSucceeded)
	return identity, nil
}

func (f *OTPFlow) fail(message string) {
	f.mu.Lock()
	f.state = OTPFailed
	f.message = message
	f.mu.Unlock()
}

func (f *OTPFlow) setState(state OTPState) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

// completeCode reports whether every digit of the code is present.
func completeCode(code string) bool {
	if len(code) != OTPCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
