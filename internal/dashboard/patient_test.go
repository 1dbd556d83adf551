package dashboard

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-gallery-portal/internal/gallery"
)

func patientAPIServer(t *testing.T, failStats bool) *gallery.Client {
	return newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/stats"):
			if failStats {
				writeEnvelope(w, http.StatusInternalServerError, false, nil, "Stats unavailable")
				return
			}
			writeEnvelope(w, http.StatusOK, true, gallery.PatientStats{TotalRecords: 3, VerifiedRecords: 2, PendingRecords: 1}, "")
		case strings.HasSuffix(r.URL.Path, "/records"):
			writeEnvelope(w, http.StatusOK, true, []gallery.Record{
				{RecordID: "rec-1", RecordType: gallery.RecordTypeLabReport, FileName: "cbc.pdf", HospitalName: "General Hospital"},
				{RecordID: "rec-2", RecordType: gallery.RecordTypeXRay, FileName: "wrist.png", HospitalName: "City Clinic"},
				{RecordID: "rec-3", RecordType: gallery.RecordTypeMRI, FileName: "head.dcm", HospitalName: "General Hospital"},
			}, "")
		default:
			http.NotFound(w, r)
		}
	})
}

func TestPatientController_LoadFetchesStatsAndRecords(t *testing.T) {
	c := NewPatientController(patientAPIServer(t, false), patientIdentity())

	overview := c.Load(context.Background())

	assert.Equal(t, 3, overview.Stats.TotalRecords)
	assert.Len(t, overview.Records, 3)
	assert.Empty(t, overview.Notices)
}

func TestPatientController_OneFailingFetchIsNonFatal(t *testing.T) {
	c := NewPatientController(patientAPIServer(t, true), patientIdentity())

	overview := c.Load(context.Background())

	// Records still arrive; the stats failure is an inline notice.
	assert.Len(t, overview.Records, 3)
	assert.Zero(t, overview.Stats.TotalRecords)
	require.Len(t, overview.Notices, 1)
	assert.Equal(t, "Stats unavailable", overview.Notices[0])
}

func TestPatientController_SectionChangeResetsDerivedState(t *testing.T) {
	c := NewPatientController(patientAPIServer(t, false), patientIdentity())
	c.Load(context.Background())

	c.Search(context.Background(), "wrist")
	require.NotEmpty(t, c.Overview().SearchResults)

	c.SetSection(SectionRecords)

	overview := c.Overview()
	assert.Equal(t, SectionRecords, overview.Section)
	assert.Empty(t, overview.SearchQuery)
	assert.Empty(t, overview.SearchResults)
}

func TestPatientController_SectionChangeReleasesPreview(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/preview") {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
			return
		}
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})
	c := NewPatientController(api, patientIdentity())

	handle, err := c.OpenPreview(context.Background(), "rec-1")
	require.NoError(t, err)

	c.SetSection(SectionShare)

	_, _, found := c.Preview(handle.ID)
	assert.False(t, found)
}

func TestPatientController_SearchFallsBackToLocalFilter(t *testing.T) {
	// Search endpoint is down; record list already loaded.
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/records/search") {
			writeEnvelope(w, http.StatusInternalServerError, false, nil, "Search unavailable")
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/stats"):
			writeEnvelope(w, http.StatusOK, true, gallery.PatientStats{}, "")
		case strings.HasSuffix(r.URL.Path, "/records"):
			writeEnvelope(w, http.StatusOK, true, []gallery.Record{
				{RecordID: "rec-1", RecordType: gallery.RecordTypeLabReport, FileName: "cbc.pdf"},
				{RecordID: "rec-2", RecordType: gallery.RecordTypeXRay, FileName: "wrist.png"},
			}, "")
		}
	})
	c := NewPatientController(api, patientIdentity())
	c.Load(context.Background())

	results := c.Search(context.Background(), "x_ray")
	require.Len(t, results, 1)
	assert.Equal(t, "rec-2", results[0].RecordID)
}

func TestPatientController_SearchKeepsOnlyOwnRecords(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/records/search") {
			writeEnvelope(w, http.StatusOK, true, []gallery.Record{
				{RecordID: "rec-1", RecordType: gallery.RecordTypeLabReport},
				{RecordID: "foreign", RecordType: gallery.RecordTypeLabReport, PatientAccessCode: "AC-other"},
			}, "")
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/stats"):
			writeEnvelope(w, http.StatusOK, true, gallery.PatientStats{}, "")
		case strings.HasSuffix(r.URL.Path, "/records"):
			writeEnvelope(w, http.StatusOK, true, []gallery.Record{{RecordID: "rec-1"}}, "")
		}
	})
	c := NewPatientController(api, patientIdentity())
	c.Load(context.Background())

	results := c.Search(context.Background(), "lab")
	require.Len(t, results, 1)
	assert.Equal(t, "rec-1", results[0].RecordID)
}

func TestPatientController_ClosedControllerDropsLateResults(t *testing.T) {
	c := NewPatientController(patientAPIServer(t, false), patientIdentity())

	c.Close()
	overview := c.Load(context.Background())

	assert.Empty(t, overview.Records, "results arriving after close must not be applied")
	assert.Empty(t, c.Overview().Records)
}

func TestPatientController_EmptyPreviewIsRejected(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	})
	c := NewPatientController(api, patientIdentity())

	_, err := c.OpenPreview(context.Background(), "rec-1")
	require.Error(t, err)
	assert.True(t, gallery.IsValidation(err))
	assert.Empty(t, c.preview.OutstandingID())
}

func TestPatientController_GenerateShareCode(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/share/generate/p-1", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		writeEnvelope(w, http.StatusOK, true, "https://gallery.example/profile/AC-1", "")
	})
	c := NewPatientController(api, patientIdentity())

	shareURL, err := c.GenerateShareCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://gallery.example/profile/AC-1", shareURL)
	assert.Equal(t, shareURL, c.Overview().ShareURL)
}
