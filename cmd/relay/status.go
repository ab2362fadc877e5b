// cmd/relay/status.go
package main

import (
	"encoding/json"
	"net/http"

	"quotation-relay/internal/models"
)

// pipelineState is the coordinator view served on /status.
type pipelineState interface {
	Busy() bool
	Pending() (models.PendingEnrichment, bool)
}

type statusResponse struct {
	LookupInFlight bool   `json:"lookupInFlight"`
	Pending        string `json:"pendingTransactionId,omitempty"`
	SinkConfigured bool   `json:"sinkConfigured"`
}

func statusHandler(p pipelineState, sinkConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			LookupInFlight: p.Busy(),
			SinkConfigured: sinkConfigured,
		}
		if pending, ok := p.Pending(); ok {
			resp.Pending = pending.TransactionID
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
