// internal/models/state.go
package models

// TransactionState tracks one transaction identifier through the pipeline.
type TransactionState string

const (
	StateObserved  TransactionState = "observed"
	StateEnriching TransactionState = "enriching"
	StateDelivered TransactionState = "delivered"
	StateFailed    TransactionState = "failed"
)

// Terminal reports whether no further transition is expected.
func (s TransactionState) Terminal() bool {
	return s == StateDelivered || s == StateFailed
}
