package client

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies why a lookup never produced an upstream answer.
type ErrorCategory string

const (
	// ErrorTimeout indicates the upstream took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the upstream returned an unreadable or malformed body
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorUpstreamOutage indicates the upstream could not be reached
	ErrorUpstreamOutage ErrorCategory = "upstream_outage"

	// ErrorContractMismatch indicates the body decoded but not in the documented shape
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	// ErrorInternal indicates a failure before the request left the process
	ErrorInternal ErrorCategory = "internal"
)

// TransportError describes a lookup that failed below the API level.
// Callers display models.TransportFailureMessage; the category and cause are for logs.
type TransportError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *TransportError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("postal api [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("postal api [%s]: %s", e.Category, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Underlying
}

func newTransportError(category ErrorCategory, message string, underlying error) *TransportError {
	return &TransportError{Category: category, Message: message, Underlying: underlying}
}

// GetCategory extracts the category from err, defaulting to ErrorInternal.
func GetCategory(err error) ErrorCategory {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	return ErrorInternal
}
