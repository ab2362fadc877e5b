// internal/workers/customer/enrich-customer/handler.go
package enrichcustomer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "quotation-relay/internal/common/errors"
	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/common/metrics"
	"quotation-relay/internal/models"
	"quotation-relay/internal/notify"
	"quotation-relay/internal/state"
	deliverrecord "quotation-relay/internal/workers/delivery/deliver-record"
)

const TaskType = "enrich-customer"

// CredentialSource returns the latest captured bearer credential, or "".
type CredentialSource interface {
	Current() string
}

type HandlerOptions struct {
	Config      *Config
	Lookup      Lookup
	Credentials CredentialSource
	Sender      deliverrecord.Sender
	Notifier    notify.Notifier
	Tracker     state.Tracker
	Logger      logger.Logger
}

// Coordinator owns the single pending slot and the processing flag. At most
// one lookup is in flight; a newer submission replaces whatever waits in
// the slot.
type Coordinator struct {
	config      *Config
	lookup      Lookup
	credentials CredentialSource
	sender      deliverrecord.Sender
	notifier    notify.Notifier
	tracker     state.Tracker
	logger      logger.Logger

	mu         sync.Mutex
	pending    *models.PendingEnrichment
	processing atomic.Bool
	wg         sync.WaitGroup
}

func NewHandler(opts HandlerOptions) *Coordinator {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(opts.Logger)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &Coordinator{
		config:      cfg,
		lookup:      opts.Lookup,
		credentials: opts.Credentials,
		sender:      opts.Sender,
		notifier:    notifier,
		tracker:     opts.Tracker,
		logger:      logger.ForComponent(opts.Logger, TaskType),
	}
}

// Submit places p in the slot. It reports whether an older pending entry
// was discarded.
func (c *Coordinator) Submit(p models.PendingEnrichment) bool {
	c.mu.Lock()
	replaced := c.pending != nil
	var old string
	if replaced {
		old = c.pending.TransactionID
	}
	c.pending = &p
	c.mu.Unlock()

	fields := map[string]interface{}{
		"transactionId": p.TransactionID,
		"customerId":    p.CustomerIDNormalized,
	}
	if replaced {
		fields["replacedTransactionId"] = old
	}
	c.logger.Info("customer enrichment queued", fields)
	return replaced
}

// Pending returns a copy of the waiting entry, if any.
func (c *Coordinator) Pending() (models.PendingEnrichment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return models.PendingEnrichment{}, false
	}
	return *c.pending, true
}

// Busy reports whether a lookup is in flight.
func (c *Coordinator) Busy() bool {
	return c.processing.Load()
}

// Run polls the slot until ctx is done. Lookups already started are not
// cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	c.logger.Info("enrichment coordinator started", map[string]interface{}{
		"pollIntervalMs": c.config.PollInterval.Milliseconds(),
	})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("enrichment coordinator stopping", nil)
			return
		case <-ticker.C:
			c.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce claims the pending entry when no lookup is in flight and
// starts its lookup on a goroutine. It never blocks on the lookup.
func (c *Coordinator) ProcessOnce(ctx context.Context) bool {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return false
	}
	if !c.processing.CompareAndSwap(false, true) {
		c.mu.Unlock()
		return false
	}
	claimed := c.pending
	c.pending = nil
	c.mu.Unlock()

	metrics.LookupsActive.Inc()
	if c.tracker != nil {
		if err := c.tracker.Transition(ctx, claimed.TransactionID, models.StateEnriching); err != nil {
			c.logger.Warn("state transition rejected", map[string]interface{}{"error": err.Error()})
		}
	}

	c.wg.Add(1)
	go c.enrich(context.WithoutCancel(ctx), claimed)
	return true
}

// Wait blocks until every started lookup and its delivery have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) enrich(ctx context.Context, claimed *models.PendingEnrichment) {
	defer c.wg.Done()

	released := false
	release := func() {
		if !released {
			released = true
			c.release()
		}
	}

	log := c.logger
	handedOff := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		log.Error("unexpected failure during customer lookup", map[string]interface{}{"panic": fmt.Sprint(r)})
		release()
		if handedOff {
			return
		}
		if claimed == nil {
			c.notifier.Notify(ctx, models.Signal{Kind: models.SignalProcessingCleared})
			return
		}
		c.notifier.Notify(ctx, models.Signal{
			Kind:          models.SignalError,
			TransactionID: claimed.TransactionID,
			Text:          "Error during customer fetch. Partial data sent.",
			Code:          string(apperrors.ErrCodeInternal),
		})
		c.sender.Send(ctx, claimed.Record, nil)
	}()

	log = c.logger.With(map[string]interface{}{
		"transactionId": claimed.TransactionID,
		"customerId":    claimed.CustomerIDNormalized,
	})

	credential := ""
	if c.credentials != nil {
		credential = c.credentials.Current()
	}

	attrs, err := c.lookup.Fetch(ctx, claimed.CustomerIDNormalized, credential)
	release()

	if err != nil {
		code := apperrors.CodeOf(err)
		metrics.Lookups.WithLabelValues(string(code)).Inc()
		log.WithError(err).Warn("customer lookup did not return attributes, sending partial data", map[string]interface{}{
			"errorCode": string(code),
		})
		c.notifier.Notify(ctx, lookupSignal(claimed, err))
		attrs = nil
	} else {
		metrics.Lookups.WithLabelValues(outcomeSuccess).Inc()
		log.Info("customer details retrieved", nil)
	}

	handedOff = true
	c.sender.Send(ctx, claimed.Record, attrs)
}

func (c *Coordinator) release() {
	c.processing.Store(false)
	metrics.LookupsActive.Dec()
}

// lookupSignal maps a lookup failure to the warning or error shown to the user.
func lookupSignal(claimed *models.PendingEnrichment, err error) models.Signal {
	s := models.Signal{
		TransactionID: claimed.TransactionID,
		Kind:          models.SignalError,
		Code:          string(apperrors.CodeOf(err)),
	}
	details := ""
	if stdErr, ok := err.(*apperrors.StandardError); ok {
		details = stdErr.Details
	}

	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeAuthMissing:
		s.Kind = models.SignalWarning
		s.Text = "Auth token not captured. Customer details skipped."
	case apperrors.ErrCodeLookupDataShape:
		s.Kind = models.SignalWarning
		s.Text = fmt.Sprintf("Customer data missing/invalid for %s. Partial sent.", claimed.CustomerIDNormalized)
	case apperrors.ErrCodeAuthRejected:
		s.Kind = models.SignalWarning
		s.Text = fmt.Sprintf("Auth Error (%s). Check token. Partial data sent.", details)
	case apperrors.ErrCodeLookupFailed:
		s.Text = fmt.Sprintf("Error fetching customer (%s). Partial data sent.", details)
	case apperrors.ErrCodeLookupTimeout:
		s.Text = "Timeout fetching customer details. Partial data sent."
	case apperrors.ErrCodeLookupAborted:
		s.Text = "Customer fetch aborted. Partial data sent."
	case apperrors.ErrCodeLookupNetwork:
		s.Text = "Network error fetching customer details. Partial data sent."
	default:
		s.Text = "Error during customer fetch. Partial data sent."
	}
	return s
}
