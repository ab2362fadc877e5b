// Package errors provides the relay's standardized error taxonomy.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Malformed input: unparseable or incomplete bodies. Aborts that record only.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// Auth unavailable or rejected. Degrades to partial delivery.
	ErrCodeAuthMissing  ErrorCode = "AUTH_MISSING"
	ErrCodeAuthRejected ErrorCode = "AUTH_REJECTED"

	// Secondary lookup failures. Degrade to partial delivery.
	ErrCodeLookupFailed    ErrorCode = "LOOKUP_FAILED"
	ErrCodeLookupDataShape ErrorCode = "LOOKUP_DATA_SHAPE"
	ErrCodeLookupTimeout   ErrorCode = "LOOKUP_TIMEOUT"
	ErrCodeLookupAborted   ErrorCode = "LOOKUP_ABORTED"
	ErrCodeLookupNetwork   ErrorCode = "LOOKUP_NETWORK"

	// Delivery failures. Reported, never retried.
	ErrCodeSinkError   ErrorCode = "SINK_ERROR"
	ErrCodeSinkTimeout ErrorCode = "SINK_TIMEOUT"
	ErrCodeSinkNetwork ErrorCode = "SINK_NETWORK"

	// Configuration failure. Fatal to every delivery attempt.
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured relay error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewMalformedInputError reports an unusable response body.
func NewMalformedInputError(details string, cause error) *StandardError {
	return newError(ErrCodeMalformedInput, "Malformed or incomplete payload", details, cause)
}

// NewAuthMissingError reports that no credential has been captured yet.
func NewAuthMissingError() *StandardError {
	return newError(ErrCodeAuthMissing, "Auth token not captured", "no bearer credential observed on secondary calls", nil)
}

// NewAuthRejectedError reports a 401/403 from the lookup endpoint.
func NewAuthRejectedError(status int) *StandardError {
	return newError(ErrCodeAuthRejected, "Auth token rejected", fmt.Sprintf("status: %d", status), nil)
}

// NewLookupFailedError reports any other non-2xx lookup status.
func NewLookupFailedError(status int) *StandardError {
	return newError(ErrCodeLookupFailed, "Customer lookup failed", fmt.Sprintf("status: %d", status), nil)
}

// NewLookupDataShapeError reports a 2xx lookup without usable attributes.
func NewLookupDataShapeError(details string, cause error) *StandardError {
	return newError(ErrCodeLookupDataShape, "Customer data missing or invalid", details, cause)
}

// NewSinkError reports a sink-side rejection.
func NewSinkError(message string) *StandardError {
	return newError(ErrCodeSinkError, "Sink reported an error", message, nil)
}

// NewConfigMissingError reports a missing required setting.
func NewConfigMissingError(setting string) *StandardError {
	return newError(ErrCodeConfigMissing, "Required configuration is missing", setting, nil)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(details string, cause error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", details, cause)
}

// ==========================
// 3. Transport Classification
// ==========================

// TransportKind distinguishes the transport failure branches.
type TransportKind string

const (
	TransportTimeout TransportKind = "timeout"
	TransportAborted TransportKind = "aborted"
	TransportNetwork TransportKind = "network"
)

// ClassifyTransport maps a client error to timeout, aborted or network.
func ClassifyTransport(ctx context.Context, err error) TransportKind {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, context.DeadlineExceeded) || (ctx != nil && stderrors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return TransportTimeout
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return TransportTimeout
	}
	if strings.Contains(err.Error(), "Client.Timeout") {
		return TransportTimeout
	}
	if stderrors.Is(err, context.Canceled) || (ctx != nil && stderrors.Is(ctx.Err(), context.Canceled)) {
		return TransportAborted
	}
	return TransportNetwork
}

// NewLookupTransportError builds the lookup error for a transport failure.
func NewLookupTransportError(kind TransportKind, cause error) *StandardError {
	switch kind {
	case TransportTimeout:
		return newError(ErrCodeLookupTimeout, "Timeout fetching customer details", errText(cause), cause)
	case TransportAborted:
		return newError(ErrCodeLookupAborted, "Customer lookup aborted", errText(cause), cause)
	default:
		return newError(ErrCodeLookupNetwork, "Network error fetching customer details", errText(cause), cause)
	}
}

// NewSinkTransportError builds the delivery error for a transport failure.
func NewSinkTransportError(kind TransportKind, cause error) *StandardError {
	if kind == TransportTimeout {
		return newError(ErrCodeSinkTimeout, "Timeout sending data", errText(cause), cause)
	}
	return newError(ErrCodeSinkNetwork, "Network error sending data", errText(cause), cause)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "AUTH"):
		return "AUTH"
	case strings.HasPrefix(codeStr, "LOOKUP"):
		return "LOOKUP"
	case strings.HasPrefix(codeStr, "SINK"):
		return "DELIVERY"
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIG"
	case code == ErrCodeMalformedInput:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
