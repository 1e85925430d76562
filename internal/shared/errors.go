package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRecordNotFound     = fmt.Errorf("history record not found")
	ErrSeriesNotFound     = fmt.Errorf("series not found")
	ErrPushClosed         = fmt.Errorf("push channel closed")

	// Wizard errors
	ErrUnknownConflict  = fmt.Errorf("unrecognized conflict type")
	ErrAlreadyResolved  = fmt.Errorf("resolution already submitted")
	ErrIncompleteChoice = fmt.Errorf("selection incomplete")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
