package dashboard

import (
	"sync"

	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/session"
)

// Registry owns the controller for the current identity. It subscribes to
// the session store, so a login swaps the controller in and a logout (or
// an identity replacement) closes the old one before anything new mounts.
type Registry struct {
	api *gallery.Client

	mu       sync.Mutex
	patient  *PatientController
	hospital *HospitalController
}

// NewRegistry creates a registry bound to the store's identity changes.
func NewRegistry(api *gallery.Client, store *session.Store) *Registry {
	r := &Registry{api: api}
	store.Subscribe(r.onIdentity)
	if identity := store.Current(); identity != nil {
		r.onIdentity(identity)
	}
	return r
}

func (r *Registry) onIdentity(identity *gallery.Identity) {
	r.mu.Lock()
	oldPatient, oldHospital := r.patient, r.hospital
	r.patient, r.hospital = nil, nil
	if identity != nil {
		switch identity.UserType {
		case gallery.UserTypePatient:
			r.patient = NewPatientController(r.api, *identity)
		case gallery.UserTypeHospital:
			r.hospital = NewHospitalController(r.api, *identity)
		}
	}
	r.mu.Unlock()

	if oldPatient != nil {
		oldPatient.Close()
	}
	if oldHospital != nil {
		oldHospital.Close()
	}
}

// Patient returns the mounted patient controller, if any.
func (r *Registry) Patient() (*PatientController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.patient, r.patient != nil
}

// Hospital returns the mounted hospital controller, if any.
func (r *Registry) Hospital() (*HospitalController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hospital, r.hospital != nil
}
