package dashboard

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"medical-gallery-portal/internal/gallery"
)

// UploadForm is the hospital upload submission before validation.
type UploadForm struct {
	FileName          string
	ContentType       string
	Data              []byte
	PatientAccessCode string
	RecordType        gallery.RecordType
	Notes             string
}

// HospitalOverview is the render-ready state of the hospital view.
type HospitalOverview struct {
	Section       string                     `json:"section"`
	Stats         gallery.HospitalStats      `json:"stats"`
	Records       []gallery.Record           `json:"records"`
	Patients      []gallery.Patient          `json:"patients"`
	TypeCounts    map[gallery.RecordType]int `json:"typeCounts"`
	SearchQuery   string                     `json:"searchQuery,omitempty"`
	SearchResults []gallery.Record           `json:"searchResults,omitempty"`
	Notices       []string                   `json:"notices,omitempty"`
}

// HospitalController drives the hospital dashboard for one identity.
type HospitalController struct {
	api      *gallery.Client
	identity gallery.Identity
	preview  *PreviewManager

	mu            sync.Mutex
	closed        bool
	section       string
	stats         gallery.HospitalStats
	records       []gallery.Record
	patients      []gallery.Patient
	searchQuery   string
	searchResults []gallery.Record
	notices       []string
	uploading     bool
}

// NewHospitalController creates a controller for the given identity.
func NewHospitalController(api *gallery.Client, identity gallery.Identity) *HospitalController {
	return &HospitalController{
		api:      api,
		identity: identity,
		preview:  NewPreviewManager(),
		section:  SectionDashboard,
	}
}

// Identity returns the identity this controller serves.
func (c *HospitalController) Identity() gallery.Identity { return c.identity }

// Load fetches stats, records and the patient roster concurrently.
// Failures surface as notices and never block each other.
func (c *HospitalController) Load(ctx context.Context) HospitalOverview {
	var (
		stats    *gallery.HospitalStats
		records  []gallery.Record
		patients []gallery.Patient
		notices  []string
		nmu      sync.Mutex
	)

	addNotice := func(err error, fallback string) {
		nmu.Lock()
		notices = append(notices, gallery.UserMessage(err, fallback))
		nmu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.api.HospitalStats(gctx, c.identity.UserID)
		if err != nil {
			addNotice(err, "Failed to load stats")
			return nil
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		r, err := c.api.HospitalRecords(gctx, c.identity.UserID)
		if err != nil {
			addNotice(err, "Failed to load records")
			return nil
		}
		records = r
		return nil
	})
	g.Go(func() error {
		p, err := c.api.HospitalPatients(gctx, c.identity.UserID)
		if err != nil {
			addNotice(err, "Failed to load patients")
			return nil
		}
		patients = p
		return nil
	})
	g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return HospitalOverview{}
	}
	if stats != nil {
		c.stats = *stats
	}
	if records != nil {
		c.records = records
	}
	if patients != nil {
		c.patients = patients
	}
	c.notices = notices
	return c.overviewLocked()
}

// SetSection switches the active section and resets derived state.
func (c *HospitalController) SetSection(section string) {
	c.mu.Lock()
	if c.closed || c.section == section {
		c.mu.Unlock()
		return
	}
	c.section = section
	c.searchQuery = ""
	c.searchResults = nil
	c.mu.Unlock()

	c.preview.Close()
}

// ValidateUpload applies the local preconditions: a file must be present
// and the patient access code non-empty. Failures short-circuit with no
// network call.
func ValidateUpload(form UploadForm) error {
	if form.FileName == "" || len(form.Data) == 0 {
		return gallery.NewValidationError("Please select a file to upload")
	}
	if strings.TrimSpace(form.PatientAccessCode) == "" {
		return gallery.NewValidationError("Please enter a valid patient access code")
	}
	return nil
}

// Upload validates and submits one record. A second submit while one is
// in flight is rejected.
func (c *HospitalController) Upload(ctx context.Context, form UploadForm) error {
	if err := ValidateUpload(form); err != nil {
		return err
	}
	if form.RecordType == "" {
		form.RecordType = gallery.RecordTypeLabReport
	}

	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return gallery.NewValidationError("An upload is already in progress")
	}
	c.uploading = true
	c.mu.Unlock()

	err := c.api.UploadRecord(ctx, gallery.UploadRequest{
		FileName:          form.FileName,
		ContentType:       form.ContentType,
		Data:              form.Data,
		PatientAccessCode: strings.TrimSpace(form.PatientAccessCode),
		RecordType:        form.RecordType,
		Notes:             form.Notes,
		HospitalID:        c.identity.UserID,
	})

	c.mu.Lock()
	c.uploading = false
	c.mu.Unlock()
	return err
}

// AddPatient resolves an access code to a patient identity.
func (c *HospitalController) AddPatient(ctx context.Context, accessCode string) (*gallery.Identity, error) {
	accessCode = strings.TrimSpace(accessCode)
	if accessCode == "" {
		return nil, gallery.NewValidationError("Please enter a patient access code")
	}
	return c.api.UserByAccessCode(ctx, accessCode)
}

// PatientRecords lists one roster patient's records.
func (c *HospitalController) PatientRecords(ctx context.Context, patientUserID string) ([]gallery.Record, error) {
	return c.api.PatientRecords(ctx, patientUserID)
}

// Search queries records scoped to this hospital, with a local fallback
// when the remote search fails.
func (c *HospitalController) Search(ctx context.Context, query string) []gallery.Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	results, err := c.api.SearchRecords(ctx, query, c.identity.UserID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err != nil {
		results = filterRecords(c.records, query)
	}
	c.searchQuery = query
	c.searchResults = results
	return results
}

// Profile fetches the hospital profile fields.
func (c *HospitalController) Profile(ctx context.Context) (*gallery.HospitalProfile, error) {
	return c.api.HospitalProfile(ctx, c.identity.UserID)
}

// UpdateProfile stores updated hospital profile fields.
func (c *HospitalController) UpdateProfile(ctx context.Context, profile gallery.HospitalProfile) error {
	return c.api.UpdateHospitalProfile(ctx, c.identity.UserID, profile)
}

// OpenPreview fetches record bytes behind a fresh handle, releasing any
// previous one.
func (c *HospitalController) OpenPreview(ctx context.Context, recordID string) (*PreviewHandle, error) {
	data, contentType, err := c.api.PreviewRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, gallery.NewValidationError("The preview file is empty. Please check if the file was uploaded correctly.")
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, gallery.NewValidationError("View is closed")
	}
	return c.preview.Open(data, contentType), nil
}

// Preview returns the bytes behind an outstanding handle.
func (c *HospitalController) Preview(handleID string) ([]byte, string, bool) {
	return c.preview.Get(handleID)
}

// ClosePreview releases the outstanding preview handle.
func (c *HospitalController) ClosePreview() {
	c.preview.Close()
}

// Download fetches the record bytes for saving.
func (c *HospitalController) Download(ctx context.Context, recordID string) ([]byte, string, error) {
	return c.api.DownloadRecord(ctx, recordID)
}

// Overview returns the current render-ready state.
func (c *HospitalController) Overview() HospitalOverview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overviewLocked()
}

func (c *HospitalController) overviewLocked() HospitalOverview {
	counts := make(map[gallery.RecordType]int, len(gallery.RecordTypes))
	for _, r := range c.records {
		counts[r.RecordType]++
	}
	return HospitalOverview{
		Section:       c.section,
		Stats:         c.stats,
		Records:       c.records,
		Patients:      c.patients,
		TypeCounts:    counts,
		SearchQuery:   c.searchQuery,
		SearchResults: c.searchResults,
		Notices:       c.notices,
	}
}

// Close marks the controller unmounted; late results are dropped and the
// preview handle is released.
func (c *HospitalController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.preview.Close()
}
