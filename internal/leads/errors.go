package leads

import "errors"

var (
	// ErrInvalidSource is returned when the originating call-to-action is unknown
	ErrInvalidSource = errors.New("leads: source is required")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
