// internal/workers/delivery/deliver-record/models.go
package deliverrecord

// Outcome is the result of one delivery attempt.
type Outcome string

const (
	OutcomeDelivered      Outcome = "delivered"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeSinkError      Outcome = "sink_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeConfigMissing  Outcome = "config_missing"
)

// Accepted reports whether the sink holds the record after this attempt.
func (o Outcome) Accepted() bool {
	return o == OutcomeDelivered || o == OutcomeDuplicate
}

// Result describes a delivery attempt.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Message    string
	Err        error
}

const (
	sinkStatusSuccess   = "success"
	sinkStatusDuplicate = "duplicate"
)

type sinkResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
