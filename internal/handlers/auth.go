package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medical-gallery-portal/internal/authflow"
	"medical-gallery-portal/internal/config"
	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/routeguard"
	"medical-gallery-portal/internal/session"
	"medical-gallery-portal/internal/utils"
)

// AuthHandler exposes the login flows, the session snapshot and the route
// guard to the browser shell.
type AuthHandler struct {
	API        *gallery.Client
	Store      *session.Store
	Cfg        *config.Config
	OTP        *authflow.OTPFlow
	Credential *authflow.CredentialFlow
	Google     *authflow.GoogleFlow
}

// NewAuthHandler creates an AuthHandler with fresh flows.
func NewAuthHandler(api *gallery.Client, store *session.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		API:        api,
		Store:      store,
		Cfg:        cfg,
		OTP:        authflow.NewOTPFlow(api, store),
		Credential: authflow.NewCredentialFlow(api, store),
		Google:     authflow.NewGoogleFlow(api, store),
	}
}

// sessionPayload is what the shell renders the chrome from.
type sessionPayload struct {
	Restoring      bool              `json:"restoring"`
	Identity       *gallery.Identity `json:"identity,omitempty"`
	GoogleClientID string            `json:"googleClientId,omitempty"`
}

// Session returns the current session snapshot.
func (h *AuthHandler) Session(c *gin.Context) {
	snap := h.Store.Snapshot()
	utils.Success(c, "Session fetched", sessionPayload{
		Restoring:      snap.Restoring,
		Identity:       snap.Identity,
		GoogleClientID: h.Cfg.Google.ClientID,
	})
}

// resolvePayload carries a route guard decision.
type resolvePayload struct {
	Deferred   bool   `json:"deferred"`
	Path       string `json:"path,omitempty"`
	Redirected bool   `json:"redirected"`
}

// Resolve answers where a navigation request should land.
func (h *AuthHandler) Resolve(c *gin.Context) {
	requested := c.Query("path")
	if requested == "" {
		requested = routeguard.PathLanding
	}
	target := routeguard.Resolve(requested, h.Store.Snapshot())
	utils.Success(c, "Route resolved", resolvePayload{
		Deferred:   target.Deferred,
		Path:       target.Path,
		Redirected: target.Redirected,
	})
}

// BackendHealth proxies the remote health check for the login banner.
func (h *AuthHandler) BackendHealth(c *gin.Context) {
	if err := h.API.Health(c.Request.Context()); err != nil {
		if gallery.IsUnreachable(err) {
			utils.BadGateway(c, "Backend server is not running. Please start the backend server at "+h.API.BaseURL()+" and ensure it's accessible.")
			return
		}
		utils.Error(c, http.StatusBadGateway, gallery.UserMessage(err, "Backend server returned an error. Please check the server."))
		return
	}
	utils.Success(c, "Backend is online", gin.H{"online": true})
}

// SendOTPRequest starts the OTP flow.
type SendOTPRequest struct {
	Contact  string `json:"contact" binding:"required"`
	UserType string `json:"userType" binding:"required,oneof=PATIENT HOSPITAL"`
}

// SendOTP submits contact + role and requests a code.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.OTP.Start(c.Request.Context(), req.Contact, gallery.UserType(req.UserType)); err != nil {
		h.respondFlowError(c, err, "Failed to send OTP")
		return
	}
	utils.Success(c, "OTP sent! Check your phone or backend console for the code.", gin.H{
		"state":   h.OTP.State(),
		"contact": h.OTP.Contact(),
	})
}

// VerifyOTPRequest completes the OTP flow. The contact is held by the
// flow from the send step.
type VerifyOTPRequest struct {
	OtpCode string `json:"otpCode" binding:"required"`
}

// VerifyOTP verifies the submitted code.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	identity, err := h.OTP.SubmitCode(c.Request.Context(), req.OtpCode)
	if err != nil {
		h.respondFlowError(c, err, "Invalid OTP")
		return
	}
	h.respondSignedIn(c, identity)
}

// SignInRequest is the credential login body.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn performs a credential login.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	identity, err := h.Credential.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondFlowError(c, err, "Login failed. Please check your credentials.")
		return
	}
	h.respondSignedIn(c, identity)
}

// SignUpRequest is the credential registration body.
type SignUpRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	UserType        string `json:"userType" binding:"required,oneof=PATIENT HOSPITAL"`
}

// SignUp registers a new account with credentials.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	identity, err := h.Credential.SignUp(c.Request.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword, gallery.UserType(req.UserType))
	if err != nil {
		h.respondFlowError(c, err, "Sign-Up failed. Please try again.")
		return
	}
	h.respondSignedIn(c, identity)
}

// GoogleSignInRequest carries the provider popup's result plus the chosen
// role.
type GoogleSignInRequest struct {
	IDToken  string `json:"idToken" binding:"required"`
	UserType string `json:"userType" binding:"required,oneof=PATIENT HOSPITAL"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	GoogleID string `json:"googleId"`
}

// GoogleSignIn exchanges the provider token for an identity.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req GoogleSignInRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result := authflow.ProviderResult{
		IDToken:  req.IDToken,
		Email:    req.Email,
		Name:     req.Name,
		GoogleID: req.GoogleID,
	}
	identity, err := h.Google.Complete(c.Request.Context(), result, gallery.UserType(req.UserType))
	if err != nil {
		h.respondFlowError(c, err, "Sign-In failed. Please try again.")
		return
	}
	h.respondSignedIn(c, identity)
}

// GoogleCancelled records that the user dismissed the provider popup.
func (h *AuthHandler) GoogleCancelled(c *gin.Context) {
	h.Google.ReportCancelled()
	utils.Success(c, "Sign-In cancelled", gin.H{
		"state":   h.Google.State(),
		"message": h.Google.Message(),
	})
}

// Logout clears the session. Idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Store.Clear()
	utils.Success(c, "Logout successful", gin.H{"redirect": routeguard.PathLogin})
}

// respondSignedIn sends the identity together with the dashboard the
// caller should navigate to.
func (h *AuthHandler) respondSignedIn(c *gin.Context, identity *gallery.Identity) {
	utils.Success(c, "Login successful", gin.H{
		"user":     identity,
		"redirect": routeguard.DashboardPath(identity.UserType),
	})
}

// respondFlowError maps the flow error taxonomy onto HTTP responses.
func (h *AuthHandler) respondFlowError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, authflow.ErrSubmissionInFlight):
		utils.Conflict(c, err.Error())
	case gallery.IsValidation(err):
		utils.BadRequest(c, gallery.UserMessage(err, fallback))
	case gallery.IsUnreachable(err):
		utils.BadGateway(c, gallery.MsgServerUnreachable)
	default:
		utils.Unauthorized(c, gallery.UserMessage(err, fallback))
	}
}
