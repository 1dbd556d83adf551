package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"medical-gallery-portal/internal/dashboard"
	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/utils"
)

// HospitalHandler serves the hospital dashboard view state.
type HospitalHandler struct {
	Registry *dashboard.Registry
}

// NewHospitalHandler creates a HospitalHandler.
func NewHospitalHandler(registry *dashboard.Registry) *HospitalHandler {
	return &HospitalHandler{Registry: registry}
}

func (h *HospitalHandler) controller(c *gin.Context) (*dashboard.HospitalController, bool) {
	ctrl, ok := h.Registry.Hospital()
	if !ok {
		utils.Unauthorized(c, "No hospital session is mounted")
		return nil, false
	}
	return ctrl, true
}

// Overview loads stats, records and the roster and returns the view state.
func (h *HospitalHandler) Overview(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	utils.Success(c, "Overview loaded", ctrl.Load(c.Request.Context()))
}

// SetSection switches the active section, resetting derived state.
func (h *HospitalHandler) SetSection(c *gin.Context) {
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

// Upload accepts a multipart record submission and forwards it upstream.
// Local validation failures never produce an upstream call.
func (h *HospitalHandler) Upload(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	form := dashboard.UploadForm{
		PatientAccessCode: c.PostForm("patientAccessCode"),
		RecordType:        gallery.RecordType(c.PostForm("recordType")),
		Notes:             c.PostForm("notes"),
	}

	fileHeader, err := c.FormFile("file")
	if err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			utils.BadRequest(c, "Could not read the uploaded file: "+openErr.Error())
			return
		}
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			utils.BadRequest(c, "Could not read the uploaded file: "+readErr.Error())
			return
		}
		form.FileName = fileHeader.Filename
		form.ContentType = fileHeader.Header.Get("Content-Type")
		form.Data = data
	}

	if err := ctrl.Upload(c.Request.Context(), form); err != nil {
		respondAPIError(c, err, "Upload failed. Please check the patient access code and try again.")
		return
	}
	utils.Success(c, "Medical record uploaded successfully!", nil)
}

// AddPatientRequest resolves an access code to a patient.
type AddPatientRequest struct {
	AccessCode string `json:"accessCode" binding:"required"`
}

// AddPatient looks up a patient by access code for the roster.
func (h *HospitalHandler) AddPatient(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var req AddPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	patient, err := ctrl.AddPatient(c.Request.Context(), req.AccessCode)
	if err != nil {
		respondAPIError(c, err, "No patient found for this access code")
		return
	}
	utils.Success(c, "Patient found", patient)
}

// PatientRecords lists one roster patient's records.
func (h *HospitalHandler) PatientRecords(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	records, err := ctrl.PatientRecords(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		respondAPIError(c, err, "Failed to load patient records")
		return
	}
	utils.Success(c, "Patient records fetched", records)
}

// Search runs a record search scoped to this hospital.
func (h *HospitalHandler) Search(c *gin.Context) {
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

// Profile fetches the hospital profile fields.
func (h *HospitalHandler) Profile(c *gin.Context) {
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

// UpdateProfile stores updated hospital profile fields.
func (h *HospitalHandler) UpdateProfile(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	var profile gallery.HospitalProfile
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
func (h *HospitalHandler) OpenPreview(c *gin.Context) {
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
func (h *HospitalHandler) PreviewBlob(c *gin.Context) {
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
func (h *HospitalHandler) ClosePreview(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	ctrl.ClosePreview()
	utils.Success(c, "Preview closed", nil)
}

// Download streams a record's bytes for saving.
func (h *HospitalHandler) Download(c *gin.Context) {
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
