package domain

import "errors"

var (
	// ErrNotFound is returned when the carrier has no tracking records for
	// the given invoice/payer pair. This is a business outcome, not a
	// transport failure.
	ErrNotFound = errors.New("no tracking records found")

	// ErrPageTimeout is returned by the browser strategy when an expected
	// page element never appeared within its wait budget.
	ErrPageTimeout = errors.New("timed out waiting for page element")
)
