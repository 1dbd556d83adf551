package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"medical-gallery-portal/internal/dashboard"
	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/utils"
)

// PatientHandler serves the patient dashboard view state.
type PatientHandler struct {
	Registry *dashboard.Registry
}

// NewPatientHandler creates a PatientHandler.
func NewPatientHandler(registry *dashboard.Registry) *PatientHandler {
	return &PatientHandler{Registry: registry}
}

func (h *PatientHandler) controller(c *gin.Context) (*dashboard.PatientController, bool) {
	ctrl, ok := h.Registry.Patient()
	if !ok {
		utils.Unauthorized(c, "No patient session is mounted")
		return nil, false
	}
	return ctrl, true
}

// Overview loads stats and records and returns the view state.
func (h *PatientHandler) Overview(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	utils.Success(c, "Overview loaded", ctrl.Load(c.Request.Context()))
}

// SectionRequest switches the active dashboard section.
type SectionRequest struct {
	Section string `json:"section" binding:"required"`
}

// SetSection switches the active section, resetting derived state.
func (h *PatientHandler) SetSection(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req SectionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	ctrl.SetSection(req.Section)
	utils.Success(c, "Section changed", ctrl.Overview())
}

// Search runs a record search scoped to this patient.
func (h *PatientHandler) Search(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	query := c.Query("q")
	if query == "" {
		utils.BadRequest(c, "Search query is required")
		return
	}
	utils.Success(c, "Search complete", ctrl.Search(c.Request.Context(), query))
}

// GenerateShareCode asks the API for a fresh share URL.
func (h *PatientHandler) GenerateShareCode(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	shareURL, err := ctrl.GenerateShareCode(c.Request.Context())
	if err != nil {
		respondAPIError(c, err, "Failed to generate share code. Please try again.")
		return
	}
	utils.Success(c, "Share code generated", gin.H{"shareUrl": shareURL})
}

// ShareQR renders the current share URL as a PNG for the share card.
func (h *PatientHandler) ShareQR(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	shareURL := ctrl.Overview().ShareURL
	if shareURL == "" {
		var err error
		shareURL, err = ctrl.GenerateShareCode(c.Request.Context())
		if err != nil {
			respondAPIError(c, err, "Failed to generate share code. Please try again.")
			return
		}
	}

	png, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		utils.InternalServerError(c, "Failed to render QR code: "+err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// Profile fetches the patient profile fields.
func (h *PatientHandler) Profile(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	profile, err := ctrl.Profile(c.Request.Context())
	if err != nil {
		respondAPIError(c, err, "Failed to load profile")
		return
	}
	utils.Success(c, "Profile fetched", profile)
}

// UpdateProfile stores updated profile fields.
func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var profile gallery.PatientProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := ctrl.UpdateProfile(c.Request.Context(), profile); err != nil {
		respondAPIError(c, err, "Failed to update profile")
		return
	}
	utils.Success(c, "Profile updated successfully", nil)
}

// OpenPreview fetches a record's bytes behind a fresh preview handle.
func (h *PatientHandler) OpenPreview(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	handle, err := ctrl.OpenPreview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAPIError(c, err, "Failed to load preview")
		return
	}
	utils.Success(c, "Preview ready", gin.H{
		"handleId":    handle.ID,
		"contentType": handle.ContentType,
	})
}

// PreviewBlob serves the bytes behind an outstanding preview handle.
func (h *PatientHandler) PreviewBlob(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	data, contentType, found := ctrl.Preview(c.Param("handleId"))
	if !found {
		utils.NotFound(c, "Preview handle is no longer available")
		return
	}
	serveBinary(c, data, contentType)
}

// ClosePreview releases the outstanding preview handle.
func (h *PatientHandler) ClosePreview(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	ctrl.ClosePreview()
	utils.Success(c, "Preview closed", nil)
}

// Download streams a record's bytes for saving.
func (h *PatientHandler) Download(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	data, contentType, err := ctrl.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAPIError(c, err, "Failed to download file")
		return
	}
	serveBinary(c, data, contentType)
}
