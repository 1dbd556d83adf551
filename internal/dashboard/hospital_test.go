package dashboard

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-gallery-portal/internal/gallery"
)

func hospitalAPIServer(t *testing.T) *gallery.Client {
	return newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/stats"):
			writeEnvelope(w, http.StatusOK, true, gallery.HospitalStats{TotalRecords: 5, TotalPatients: 2, UploadsToday: 1}, "")
		case strings.HasSuffix(r.URL.Path, "/records"):
			writeEnvelope(w, http.StatusOK, true, []gallery.Record{
				{RecordID: "rec-1", RecordType: gallery.RecordTypeLabReport, PatientName: "Jane Doe"},
				{RecordID: "rec-2", RecordType: gallery.RecordTypeLabReport, PatientName: "John Roe"},
				{RecordID: "rec-3", RecordType: gallery.RecordTypeXRay, PatientName: "Jane Doe"},
			}, "")
		case strings.HasSuffix(r.URL.Path, "/patients"):
			writeEnvelope(w, http.StatusOK, true, []gallery.Patient{
				{UserID: "p-1", Name: "Jane Doe"},
				{UserID: "p-2", Name: "John Roe"},
			}, "")
		default:
			http.NotFound(w, r)
		}
	})
}

func TestHospitalController_LoadFetchesAllThreeFeeds(t *testing.T) {
	c := NewHospitalController(hospitalAPIServer(t), hospitalIdentity())

	overview := c.Load(context.Background())

	assert.Equal(t, 5, overview.Stats.TotalRecords)
	assert.Len(t, overview.Records, 3)
	assert.Len(t, overview.Patients, 2)
	assert.Empty(t, overview.Notices)
}

func TestHospitalController_TypeCountsFollowRecords(t *testing.T) {
	c := NewHospitalController(hospitalAPIServer(t), hospitalIdentity())

	overview := c.Load(context.Background())

	assert.Equal(t, 2, overview.TypeCounts[gallery.RecordTypeLabReport])
	assert.Equal(t, 1, overview.TypeCounts[gallery.RecordTypeXRay])
	assert.Zero(t, overview.TypeCounts[gallery.RecordTypeMRI])
}

func TestValidateUpload(t *testing.T) {
	err := ValidateUpload(UploadForm{PatientAccessCode: "AC-1"})
	require.Error(t, err)
	assert.Equal(t, "Please select a file to upload", err.Error())

	err = ValidateUpload(UploadForm{FileName: "scan.pdf", Data: []byte("pdf"), PatientAccessCode: "   "})
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid patient access code", err.Error())

	assert.NoError(t, ValidateUpload(UploadForm{FileName: "scan.pdf", Data: []byte("pdf"), PatientAccessCode: "AC-1"}))
}

func TestHospitalController_UploadValidationSkipsNetwork(t *testing.T) {
	var requests int32
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})
	c := NewHospitalController(api, hospitalIdentity())

	err := c.Upload(context.Background(), UploadForm{PatientAccessCode: "AC-1"})
	require.Error(t, err)
	assert.True(t, gallery.IsValidation(err))
	assert.Zero(t, atomic.LoadInt32(&requests))
}

func TestHospitalController_UploadSendsMultipartForm(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/records/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "AC-1", r.FormValue("patientAccessCode"))
		assert.Equal(t, "X_RAY", r.FormValue("recordType"))
		assert.Equal(t, "left wrist", r.FormValue("notes"))
		assert.Equal(t, "h-1", r.FormValue("hospitalId"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "wrist.png", header.Filename)
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), body)

		writeEnvelope(w, http.StatusOK, true, nil, "Record uploaded")
	})
	c := NewHospitalController(api, hospitalIdentity())

	err := c.Upload(context.Background(), UploadForm{
		FileName:          "wrist.png",
		ContentType:       "image/png",
		Data:              []byte("png-bytes"),
		PatientAccessCode: " AC-1 ",
		RecordType:        gallery.RecordTypeXRay,
		Notes:             "left wrist",
	})
	require.NoError(t, err)
}

func TestHospitalController_UploadDefaultsRecordType(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "LAB_REPORT", r.FormValue("recordType"))
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})
	c := NewHospitalController(api, hospitalIdentity())

	err := c.Upload(context.Background(), UploadForm{
		FileName:          "cbc.pdf",
		Data:              []byte("pdf"),
		PatientAccessCode: "AC-1",
	})
	require.NoError(t, err)
}

func TestHospitalController_AddPatientResolvesAccessCode(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/user/AC-1", r.URL.Path)
		writeEnvelope(w, http.StatusOK, true, patientIdentity(), "")
	})
	c := NewHospitalController(api, hospitalIdentity())

	patient, err := c.AddPatient(context.Background(), " AC-1 ")
	require.NoError(t, err)
	assert.Equal(t, "p-1", patient.UserID)
}

func TestHospitalController_AddPatientEmptyCodeFailsLocally(t *testing.T) {
	var requests int32
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})
	c := NewHospitalController(api, hospitalIdentity())

	_, err := c.AddPatient(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, gallery.IsValidation(err))
	assert.Zero(t, atomic.LoadInt32(&requests))
}

func TestHospitalController_SearchScopesToOwnHospital(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/records/search") {
			assert.Equal(t, "h-1", r.URL.Query().Get("hospitalId"))
			writeEnvelope(w, http.StatusOK, true, []gallery.Record{{RecordID: "rec-1"}}, "")
			return
		}
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})
	c := NewHospitalController(api, hospitalIdentity())

	results := c.Search(context.Background(), "jane")
	require.Len(t, results, 1)
	assert.Equal(t, "jane", c.Overview().SearchQuery)
}

func TestHospitalController_SearchFallsBackToLoadedRecords(t *testing.T) {
	api := newGalleryServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/records/search") {
			writeEnvelope(w, http.StatusBadGateway, false, nil, "Search unavailable")
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/records"):
			writeEnvelope(w, http.StatusOK, true, []gallery.Record{
				{RecordID: "rec-1", PatientName: "Jane Doe"},
				{RecordID: "rec-2", PatientName: "John Roe"},
			}, "")
		default:
			writeEnvelope(w, http.StatusOK, true, nil, "")
		}
	})
	c := NewHospitalController(api, hospitalIdentity())
	c.Load(context.Background())

	results := c.Search(context.Background(), "jane")
	require.Len(t, results, 1)
	assert.Equal(t, "rec-1", results[0].RecordID)
}

func TestHospitalController_ClosedControllerDropsLateResults(t *testing.T) {
	c := NewHospitalController(hospitalAPIServer(t), hospitalIdentity())

	c.Close()
	overview := c.Load(context.Background())

	assert.Empty(t, overview.Records)
	assert.Empty(t, c.Overview().Patients)
}
