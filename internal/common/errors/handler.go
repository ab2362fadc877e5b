// internal/common/errors/handler.go
package errors

import (
	"fmt"
)

// Logger is the subset of logger.Logger the error handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler is the boundary where failures are logged and swallowed so
// they never reach the proxied caller.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Guard runs fn and converts a panic into a logged StandardError. It
// returns the recovered error, or nil.
func (h *ErrorHandler) Guard(operation string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stdErr := NewInternalError(fmt.Sprintf("panic in %s: %v", operation, r), nil)
			h.Log(operation, stdErr)
			err = stdErr
		}
	}()
	fn()
	return nil
}

// Log writes err in the standard field layout.
func (h *ErrorHandler) Log(operation string, err error) {
	if err == nil || h.logger == nil {
		return
	}
	stdErr := h.normalizeError(err)
	h.logger.Error("operation failed", map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}

func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err.Error(), err)
}
