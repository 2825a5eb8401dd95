// Package errors provides standardized error handling for the assistant API and workflow worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"

	// Provider selection
	ErrCodeUnknownProvider       ErrorCode = "UNKNOWN_PROVIDER"
	ErrCodeProviderNotConfigured ErrorCode = "PROVIDER_NOT_CONFIGURED"

	// Upstream generation service
	ErrCodeUpstreamUnavailable       ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamTimeout           ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamBadStatus         ErrorCode = "UPSTREAM_BAD_STATUS"
	ErrCodeUpstreamMalformedResponse ErrorCode = "UPSTREAM_MALFORMED_RESPONSE"

	ErrCodeInventoryLookupFailed ErrorCode = "INVENTORY_LOOKUP_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable validation error.
func NewInvalidRequestError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownProviderError is returned when a provider name is not registered.
func NewUnknownProviderError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownProvider,
		Message:   "Invalid provider specified",
		Details:   fmt.Sprintf("provider: %s", name),
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": name},
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderNotConfiguredError is returned when a registered provider lacks credentials.
func NewProviderNotConfiguredError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderNotConfigured,
		Message:   "Provider is not configured",
		Details:   fmt.Sprintf("provider: %s", name),
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": name},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError wraps a transport failure talking to a provider.
func NewUpstreamUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "Generation service unavailable",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError creates a retryable timeout error.
func NewUpstreamTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Generation service timeout",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamBadStatusError is returned when a provider answers with a non-success status.
func NewUpstreamBadStatusError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamBadStatus,
		Message:   "Generation service returned an error status",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamMalformedResponseError is returned when a provider reply has an unexpected shape.
func NewUpstreamMalformedResponseError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamMalformedResponse,
		Message:   "Generation service returned an unexpected response",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInventoryLookupFailedError wraps a database failure while assembling context.
func NewInventoryLookupFailedError(inventoryID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInventoryLookupFailed,
		Message:   "Failed to load inventory assets",
		Details:   fmt.Sprintf("inventoryId: %s, error: %s", inventoryID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError normalizes an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Retry and Mapping Helpers
// ==========================

var retryCounts = map[ErrorCode]int{
	ErrCodeUpstreamUnavailable:   2,
	ErrCodeUpstreamTimeout:       1,
	ErrCodeUpstreamBadStatus:     1,
	ErrCodeInventoryLookupFailed: 2,
}

// GetRetryCount returns how many times a workflow job should be retried for the code.
func GetRetryCount(code ErrorCode) int {
	return retryCounts[code]
}

// IsRetryableErrorCode reports whether the code describes a transient failure.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidRequest:
		return "validation"
	case ErrCodeUnknownProvider, ErrCodeProviderNotConfigured:
		return "configuration"
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamTimeout, ErrCodeUpstreamBadStatus, ErrCodeUpstreamMalformedResponse:
		return "upstream"
	case ErrCodeInventoryLookupFailed:
		return "database"
	default:
		return "internal"
	}
}

// HTTPStatus maps an error code to the response status used by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeUnknownProvider:
		return http.StatusBadRequest
	case ErrCodeProviderNotConfigured:
		return http.StatusConflict
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamBadStatus, ErrCodeUpstreamMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ConvertToBPMNError maps a StandardError onto workflow error variables.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   GetRetryCount(stdErr.Code),
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(stdErr.Code),
		},
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}
