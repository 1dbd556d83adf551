package gallery

// UserType enum
type UserType string

const (
	UserTypePatient  UserType = "PATIENT"
	UserTypeHospital UserType = "HOSPITAL"
)

// Valid reports whether the value is one of the known user types.
func (t UserType) Valid() bool {
	return t == UserTypePatient || t == UserTypeHospital
}

// Identity is the authenticated principal returned by the auth endpoints.
type Identity struct {
	UserID     string   `json:"userId"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	UserType   UserType `json:"userType"`
	AccessCode string   `json:"accessCode"`
}

// RecordType represents the type of an uploaded medical record
type RecordType string

const (
	RecordTypeLabReport        RecordType = "LAB_REPORT"
	RecordTypeXRay             RecordType = "X_RAY"
	RecordTypeCTScan           RecordType = "CT_SCAN"
	RecordTypeMRI              RecordType = "MRI"
	RecordTypePrescription     RecordType = "PRESCRIPTION"
	RecordTypeDischargeSummary RecordType = "DISCHARGE_SUMMARY"
	RecordTypeOther            RecordType = "OTHER"
)

// RecordTypes lists every record type the upload form offers.
var RecordTypes = []RecordType{
	RecordTypeLabReport,
	RecordTypeXRay,
	RecordTypeCTScan,
	RecordTypeMRI,
	RecordTypePrescription,
	RecordTypeDischargeSummary,
	RecordTypeOther,
}

// Record is a medical record summary as listed by the records endpoints.
type Record struct {
	RecordID          string     `json:"recordId"`
	RecordType        RecordType `json:"recordType"`
	FileName          string     `json:"fileName"`
	UploadDate        string     `json:"uploadDate"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	Description       string     `json:"description,omitempty"`
	HospitalName      string     `json:"hospitalName,omitempty"`
	PatientName       string     `json:"patientName,omitempty"`
	PatientAccessCode string     `json:"patientAccessCode,omitempty"`
}

// PatientStats are the aggregate counts shown on the patient overview.
type PatientStats struct {
	TotalRecords    int `json:"totalRecords"`
	VerifiedRecords int `json:"verifiedRecords"`
	PendingRecords  int `json:"pendingRecords"`
	SharedRecords   int `json:"sharedRecords"`
}

// HospitalStats are the aggregate counts shown on the hospital overview.
type HospitalStats struct {
	TotalRecords  int `json:"totalRecords"`
	TotalPatients int `json:"totalPatients"`
	UploadsToday  int `json:"uploadsToday"`
	PendingReview int `json:"pendingReview"`
}

// Patient is a roster entry on the hospital side.
type Patient struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AccessCode string `json:"accessCode"`
}

// PatientProfile holds the editable patient profile fields.
type PatientProfile struct {
	Gender           string `json:"gender,omitempty"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
	BloodGroup       string `json:"bloodGroup,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
}

// HospitalProfile holds the editable hospital profile fields.
type HospitalProfile struct {
	HospitalName string `json:"hospitalName,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Address      string `json:"address,omitempty"`
}

// UploadRequest carries one record upload to /records/upload.
type UploadRequest struct {
	FileName          string
	ContentType       string
	Data              []byte
	PatientAccessCode string
	RecordType        RecordType
	Notes             string
	HospitalID        string
}
