// internal/workers/quotation/process-quotation/handler.go
package processquotation

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	apperrors "quotation-relay/internal/common/errors"
	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/common/metrics"
	"quotation-relay/internal/common/validation"
	"quotation-relay/internal/intercept"
	"quotation-relay/internal/models"
	"quotation-relay/internal/notify"
	"quotation-relay/internal/state"
	deliverrecord "quotation-relay/internal/workers/delivery/deliver-record"
)

const TaskType = "process-quotation"

var payloadSchema = validation.MustCompile(quotationSchema)

// Submitter accepts records that need a customer lookup.
type Submitter interface {
	Submit(p models.PendingEnrichment) bool
}

type HandlerOptions struct {
	Config    *Config
	Submitter Submitter
	Sender    deliverrecord.Sender
	Notifier  notify.Notifier
	Tracker   state.Tracker
	Logger    logger.Logger
}

type Handler struct {
	config    *Config
	submitter Submitter
	sender    deliverrecord.Sender
	notifier  notify.Notifier
	tracker   state.Tracker
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(opts HandlerOptions) *Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{CustomerPrefix: "SQ_"}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(opts.Logger)
	}
	return &Handler{
		config:    cfg,
		submitter: opts.Submitter,
		sender:    opts.Sender,
		notifier:  notifier,
		tracker:   opts.Tracker,
		logger:    logger.ForComponent(opts.Logger, TaskType),
		now:       time.Now,
	}
}

// HandleCapture receives PRIMARY responses from the interceptor.
func (h *Handler) HandleCapture(ctx context.Context, c intercept.Capture) {
	log := h.logger.With(map[string]interface{}{"transactionId": c.TransactionID})
	if !c.OK() {
		metrics.PrimaryRecords.WithLabelValues("ignored").Inc()
		log.Warn("primary request failed, not processing", map[string]interface{}{"status": c.StatusCode})
		return
	}
	if c.Truncated {
		h.notify(ctx, models.Signal{Kind: models.SignalProcessingStarted, TransactionID: c.TransactionID})
		h.reject(ctx, log, c.TransactionID, apperrors.NewMalformedInputError("response body exceeded capture limit", nil))
		return
	}
	h.Process(ctx, c.TransactionID, c.Body)
}

// Process parses a 2xx PRIMARY body and routes the record to the
// coordinator or straight to delivery.
func (h *Handler) Process(ctx context.Context, txID string, body []byte) {
	log := h.logger.With(map[string]interface{}{"transactionId": txID})
	h.notify(ctx, models.Signal{Kind: models.SignalProcessingStarted, TransactionID: txID})

	rec, err := h.parse(log, txID, body)
	if err != nil {
		h.reject(ctx, log, txID, err)
		return
	}

	if !rec.HasCustomer() {
		metrics.PrimaryRecords.WithLabelValues("direct").Inc()
		log.Warn("quotation response has no customer id, sending partial data", nil)
		h.sender.Send(ctx, rec, nil)
		return
	}

	metrics.PrimaryRecords.WithLabelValues("queued").Inc()
	h.submitter.Submit(models.PendingEnrichment{
		CustomerIDNormalized: rec.CustomerIDNormalized,
		Record:               rec,
		TransactionID:        txID,
	})
}

func (h *Handler) parse(log logger.Logger, txID string, body []byte) (models.PrimaryRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return models.PrimaryRecord{}, apperrors.NewMalformedInputError("empty response body", nil)
	}

	result, err := payloadSchema.ValidateBytes(trimmed)
	if err != nil {
		return models.PrimaryRecord{}, apperrors.NewMalformedInputError("invalid JSON", err)
	}
	if !result.Valid {
		return models.PrimaryRecord{}, apperrors.NewMalformedInputError(result.Error(), nil)
	}

	var payload quotationPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return models.PrimaryRecord{}, apperrors.NewMalformedInputError("decode quotation", err)
	}
	if payload.CreationDate.missing() {
		return models.PrimaryRecord{}, apperrors.NewMalformedInputError("creationDate is empty", nil)
	}

	rec := models.PrimaryRecord{
		TransactionID:   txID,
		CustomerIDRaw:   string(payload.CustomerID),
		CreationDateRaw: payload.CreationDate.Value,
		CreatorID:       string(payload.CreationUserID),
		TotalAmount:     payload.TotalPV.Ptr(),
		LineItems:       lineItems(log, payload.Categories),
		CapturedAt:      h.now(),
	}
	rec.CustomerIDNormalized = strings.TrimPrefix(rec.CustomerIDRaw, h.config.CustomerPrefix)
	if t, err := deliverrecord.ParseTimestamp(payload.CreationDate.Value); err == nil {
		rec.CreationDate = t
	}

	if rec.CreatorID == "" {
		log.Warn("quotation response missing creationUserId, Vendeur will be empty", nil)
	}
	return rec, nil
}

func lineItems(log logger.Logger, raw json.RawMessage) []models.LineItem {
	var categories []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &categories) != nil {
		log.Warn("quotation categories missing or invalid", nil)
		return nil
	}

	var items []models.LineItem
	for _, rawCategory := range categories {
		var c category
		if json.Unmarshal(rawCategory, &c) != nil {
			continue
		}
		var products []json.RawMessage
		if json.Unmarshal(c.Products, &products) != nil {
			continue
		}
		for _, rawProduct := range products {
			if bytes.Equal(bytes.TrimSpace(rawProduct), []byte("null")) {
				continue
			}
			var p product
			if err := json.Unmarshal(rawProduct, &p); err != nil {
				log.Warn("quotation product is not an object, kept as unknown", map[string]interface{}{"error": err.Error()})
				p = product{}
			}
			items = append(items, models.LineItem{
				Name:            p.name(),
				IconURL:         string(p.Icon),
				DiscountedPrice: p.TotalDiscountPv.Value,
			})
		}
	}
	return items
}

func (h *Handler) reject(ctx context.Context, log logger.Logger, txID string, err error) {
	metrics.PrimaryRecords.WithLabelValues("malformed").Inc()
	log.Error("invalid or incomplete quotation data, aborting", map[string]interface{}{
		"errorCode": string(apperrors.CodeOf(err)),
		"error":     err.Error(),
	})
	if h.tracker != nil {
		if tErr := h.tracker.Transition(ctx, txID, models.StateFailed); tErr != nil {
			log.Warn("state transition rejected", map[string]interface{}{"error": tErr.Error()})
		}
	}
	h.notify(ctx, models.Signal{Kind: models.SignalProcessingCleared, TransactionID: txID})
}

func (h *Handler) notify(ctx context.Context, s models.Signal) {
	h.notifier.Notify(ctx, s)
}
