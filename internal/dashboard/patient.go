// Package dashboard assembles render-ready state for the two portal
// views. Controllers fetch role-scoped resources from the gallery API;
// fetch failures surface as inline notices, never as crashes, and results
// arriving after a controller is closed are dropped.
package dashboard

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"medical-gallery-portal/internal/gallery"
)

// Dashboard sections.
const (
	SectionDashboard = "dashboard"
	SectionRecords   = "records"
	SectionShare     = "share"
	SectionPatients  = "patients"
	SectionUpload    = "upload"
	SectionProfile   = "profile"
)

// PatientOverview is the render-ready state of the patient view.
type PatientOverview struct {
	Section       string           `json:"section"`
	Stats         gallery.PatientStats `json:"stats"`
	Records       []gallery.Record `json:"records"`
	SearchQuery   string           `json:"searchQuery,omitempty"`
	SearchResults []gallery.Record `json:"searchResults,omitempty"`
	ShareURL      string           `json:"shareUrl,omitempty"`
	Notices       []string         `json:"notices,omitempty"`
}

// PatientController drives the patient dashboard for one identity.
type PatientController struct {
	api      *gallery.Client
	identity gallery.Identity
	preview  *PreviewManager

	mu            sync.Mutex
	closed        bool
	section       string
	stats         gallery.PatientStats
	records       []gallery.Record
	searchQuery   string
	searchResults []gallery.Record
	shareURL      string
	notices       []string
}

// NewPatientController creates a controller for the given identity.
func NewPatientController(api *gallery.Client, identity gallery.Identity) *PatientController {
	return &PatientController{
		api:      api,
		identity: identity,
		preview:  NewPreviewManager(),
		section:  SectionDashboard,
	}
}

// Identity returns the identity this controller serves.
func (c *PatientController) Identity() gallery.Identity { return c.identity }

// Load fetches stats and records concurrently. Each failure becomes a
// notice; one fetch failing never blocks the other.
func (c *PatientController) Load(ctx context.Context) PatientOverview {
	var (
		stats   *gallery.PatientStats
		records []gallery.Record
		notices []string
		nmu     sync.Mutex
	)

	addNotice := func(err error, fallback string) {
		nmu.Lock()
		notices = append(notices, gallery.UserMessage(err, fallback))
		nmu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.api.PatientStats(gctx, c.identity.UserID)
		if err != nil {
			addNotice(err, "Failed to load stats")
			return nil
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		r, err := c.api.PatientRecords(gctx, c.identity.UserID)
		if err != nil {
			addNotice(err, "Failed to load records")
			return nil
		}
		records = r
		return nil
	})
	g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return PatientOverview{}
	}
	if stats != nil {
		c.stats = *stats
	}
	if records != nil {
		c.records = records
	}
	c.notices = notices
	return c.overviewLocked()
}

// SetSection switches the active section and resets every piece of
// derived state, including any open preview.
func (c *PatientController) SetSection(section string) {
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

// Search queries the records endpoint and keeps only this patient's
// records. When the remote search fails the local record list is filtered
// instead, so the view still answers.
func (c *PatientController) Search(ctx context.Context, query string) []gallery.Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	results, err := c.api.SearchRecords(ctx, query, "")
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	var matched []gallery.Record
	if err != nil {
		matched = filterRecords(c.records, query)
	} else {
		owned := make(map[string]bool, len(c.records))
		for _, r := range c.records {
			owned[r.RecordID] = true
		}
		for _, r := range results {
			if owned[r.RecordID] || (c.identity.AccessCode != "" && r.PatientAccessCode == c.identity.AccessCode) {
				matched = append(matched, r)
			}
		}
	}

	c.searchQuery = query
	c.searchResults = matched
	return matched
}

// GenerateShareCode asks the API for a fresh share URL.
func (c *PatientController) GenerateShareCode(ctx context.Context) (string, error) {
	shareURL, err := c.api.GenerateShareCode(ctx, c.identity.UserID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if !c.closed {
		c.shareURL = shareURL
	}
	c.mu.Unlock()
	return shareURL, nil
}

// Profile fetches the patient profile fields.
func (c *PatientController) Profile(ctx context.Context) (*gallery.PatientProfile, error) {
	return c.api.PatientProfile(ctx, c.identity.UserID)
}

// UpdateProfile stores updated profile fields.
func (c *PatientController) UpdateProfile(ctx context.Context, profile gallery.PatientProfile) error {
	return c.api.UpdatePatientProfile(ctx, c.identity.UserID, profile)
}

// OpenPreview fetches the record bytes and exposes them behind a fresh
// handle, releasing any previous one.
func (c *PatientController) OpenPreview(ctx context.Context, recordID string) (*PreviewHandle, error) {
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
func (c *PatientController) Preview(handleID string) ([]byte, string, bool) {
	return c.preview.Get(handleID)
}

// ClosePreview releases the outstanding preview handle.
func (c *PatientController) ClosePreview() {
	c.preview.Close()
}

// Download fetches the record bytes for saving.
func (c *PatientController) Download(ctx context.Context, recordID string) ([]byte, string, error) {
	return c.api.DownloadRecord(ctx, recordID)
}

// Overview returns the current render-ready state.
func (c *PatientController) Overview() PatientOverview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overviewLocked()
}

func (c *PatientController) overviewLocked() PatientOverview {
	return PatientOverview{
		Section:       c.section,
		Stats:         c.stats,
		Records:       c.records,
		SearchQuery:   c.searchQuery,
		SearchResults: c.searchResults,
		ShareURL:      c.shareURL,
		Notices:       c.notices,
	}
}

// Close marks the controller unmounted. In-flight results are dropped and
// the preview handle is released.
func (c *PatientController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.preview.Close()
}

// filterRecords is the local search fallback.
func filterRecords(records []gallery.Record, query string) []gallery.Record {
	query = strings.ToLower(query)
	var matched []gallery.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(string(r.RecordType)), query) ||
			strings.Contains(strings.ToLower(r.FileName), query) ||
			strings.Contains(strings.ToLower(r.HospitalName), query) ||
			strings.Contains(strings.ToLower(r.PatientName), query) {
			matched = append(matched, r)
		}
	}
	return matched
}
