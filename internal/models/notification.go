// internal/models/notification.go
package models

// SignalKind is a pipeline lifecycle event shown to the user.
type SignalKind string

const (
	SignalProcessingStarted SignalKind = "processing_started"
	SignalProcessingCleared SignalKind = "processing_cleared"
	SignalDelivered         SignalKind = "delivered"
	SignalDuplicate         SignalKind = "duplicate"
	SignalWarning           SignalKind = "warning"
	SignalError             SignalKind = "error"
)

// Signal is handed to a Notifier. Name is set for delivered and duplicate,
// Text for warning and error.
type Signal struct {
	Kind          SignalKind `json:"kind"`
	TransactionID string     `json:"transactionId,omitempty"`
	Name          string     `json:"name,omitempty"`
	Text          string     `json:"text,omitempty"`
	Code          string     `json:"code,omitempty"`
}
