// internal/notify/recorder.go
package notify

import (
	"context"
	"sync"

	"quotation-relay/internal/models"
)

// Recorder keeps every signal in memory. Used by tests across packages.
type Recorder struct {
	mu      sync.Mutex
	signals []models.Signal
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Notify(_ context.Context, s models.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, s)
}

// Signals returns a copy of everything recorded so far.
func (r *Recorder) Signals() []models.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Signal, len(r.signals))
	copy(out, r.signals)
	return out
}

// Kinds returns the recorded kinds in order.
func (r *Recorder) Kinds() []models.SignalKind {
	signals := r.Signals()
	out := make([]models.SignalKind, len(signals))
	for i, s := range signals {
		out[i] = s.Kind
	}
	return out
}

// Has reports whether a signal of kind was recorded.
func (r *Recorder) Has(kind models.SignalKind) bool {
	for _, k := range r.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}
