// Package authflow drives the three login flows (OTP, credential, Google)
// against the gallery API. All flows share one contract: a successful
// attempt hands the identity to the session store exactly once, a failed
// attempt leaves the store untouched, and a submission already in flight
// rejects further submits.
package authflow

import "errors"

var (
	// ErrSubmissionInFlight is returned when a flow is asked to submit
	// while a previous submission has not resolved yet.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")

	// ErrProviderCancelled is returned when the user dismissed the
	// identity provider's popup instead of completing it.
	ErrProviderCancelled = errors.New("Google Sign-In was cancelled or failed. Please try again.")
)
