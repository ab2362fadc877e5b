// internal/workers/delivery/deliver-record/handler.go
package deliverrecord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "quotation-relay/internal/common/errors"
	commonhttp "quotation-relay/internal/common/http"
	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/common/metrics"
	"quotation-relay/internal/common/observability"
	"quotation-relay/internal/models"
	"quotation-relay/internal/notify"
	"quotation-relay/internal/state"
)

const (
	TaskType = "deliver-record"

	maxSinkResponseBytes = 1 << 20
)

// Sender is what the processor and the coordinator call to finish a record.
type Sender interface {
	Send(ctx context.Context, rec models.PrimaryRecord, attrs *models.CustomerAttributes) Result
}

type HandlerOptions struct {
	Config        *Config
	Client        *commonhttp.Client
	Notifier      notify.Notifier
	Tracker       state.Tracker
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config   *Config
	client   *commonhttp.Client
	notifier notify.Notifier
	tracker  state.Tracker
	obs      *observability.Observability
	logger   logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	client := opts.Client
	if client == nil {
		client = commonhttp.NewClient(opts.Config.Timeout)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(opts.Logger)
	}
	return &Handler{
		config:   opts.Config,
		client:   client,
		notifier: notifier,
		tracker:  opts.Tracker,
		obs:      opts.Observability,
		logger:   logger.ForComponent(opts.Logger, TaskType),
	}
}

// Send builds the row, delivers it once and reports the outcome.
func (h *Handler) Send(ctx context.Context, rec models.PrimaryRecord, attrs *models.CustomerAttributes) Result {
	row := BuildRecord(rec, attrs, BuildOptions{
		Location:     h.config.Location,
		ImageFormula: h.config.ImageFormula,
		Placeholder:  h.config.Placeholder,
	})

	result := h.Deliver(ctx, row)
	metrics.Deliveries.WithLabelValues(string(result.Outcome)).Inc()
	if !rec.CapturedAt.IsZero() {
		h.obs.RecordPipeline(ctx, time.Since(rec.CapturedAt), string(result.Outcome), attrs != nil)
	}

	next := models.StateFailed
	if result.Outcome.Accepted() {
		next = models.StateDelivered
	}
	if h.tracker != nil {
		if err := h.tracker.Transition(ctx, rec.TransactionID, next); err != nil {
			h.logger.Warn("state transition rejected", map[string]interface{}{"error": err.Error()})
		}
	}

	h.signal(ctx, rec.TransactionID, row, result)
	return result
}

// Deliver posts row to the sink. The sink URL is checked before any network
// activity.
func (h *Handler) Deliver(ctx context.Context, row models.CombinedRecord) Result {
	log := h.logger.With(map[string]interface{}{"transactionId": row.NumDevis})

	if !h.config.SinkConfigured() {
		err := apperrors.NewConfigMissingError("delivery.sink_url")
		log.Error("sink URL is not set, cannot send data", nil)
		return Result{Outcome: OutcomeConfigMissing, Message: "Sink URL is missing.", Err: err}
	}

	payload, err := json.Marshal(row)
	if err != nil {
		return Result{Outcome: OutcomeSinkError, Message: "Error structuring data.", Err: apperrors.NewInternalError("marshal record", err)}
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.SinkURL, bytes.NewReader(payload))
	if err != nil {
		return Result{Outcome: OutcomeSinkError, Message: "Invalid sink URL.", Err: apperrors.NewInternalError("build sink request", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	log.Info("sending structured data to sink", map[string]interface{}{"client": row.NomClient})
	resp, err := h.client.Do(req)
	if err != nil {
		kind := apperrors.ClassifyTransport(ctx, err)
		stdErr := apperrors.NewSinkTransportError(kind, err)
		log.Error("transport error sending data to sink", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
		if kind == apperrors.TransportTimeout {
			return Result{Outcome: OutcomeTimeout, Message: "Timeout sending data.", Err: stdErr}
		}
		return Result{Outcome: OutcomeTransportError, Message: "Network error sending data.", Err: stdErr}
	}
	defer resp.Body.Close()

	return h.interpret(log, resp)
}

func (h *Handler) interpret(log logger.Logger, resp *http.Response) Result {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSinkResponseBytes))
	if err != nil {
		kind := apperrors.ClassifyTransport(nil, err)
		return Result{Outcome: OutcomeTransportError, StatusCode: resp.StatusCode, Message: "Network error reading sink response.", Err: apperrors.NewSinkTransportError(kind, err)}
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		log.Error("empty response from sink", map[string]interface{}{"status": resp.StatusCode})
		return sinkFailure(resp.StatusCode, "Sheet Error: Empty response.")
	}

	var body sinkResponse
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		log.Error("error parsing sink response", map[string]interface{}{
			"status":  resp.StatusCode,
			"snippet": snippet(text),
		})
		return sinkFailure(resp.StatusCode, "Sheet response parse error.")
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	switch {
	case ok && body.Status == sinkStatusSuccess:
		log.Info("successfully sent data to sink", nil)
		return Result{Outcome: OutcomeDelivered, StatusCode: resp.StatusCode, Message: body.Message}
	case ok && body.Status == sinkStatusDuplicate:
		log.Info("sink already holds this transaction", nil)
		return Result{Outcome: OutcomeDuplicate, StatusCode: resp.StatusCode, Message: body.Message}
	}

	msg := body.Message
	if msg == "" {
		msg = fmt.Sprintf("status %q (HTTP %d)", body.Status, resp.StatusCode)
	}
	log.Error("sink reported an error", map[string]interface{}{
		"status":  resp.StatusCode,
		"message": msg,
	})
	return sinkFailure(resp.StatusCode, "Sheet Error: "+msg)
}

func sinkFailure(status int, msg string) Result {
	return Result{Outcome: OutcomeSinkError, StatusCode: status, Message: msg, Err: apperrors.NewSinkError(msg)}
}

func (h *Handler) signal(ctx context.Context, txID string, row models.CombinedRecord, result Result) {
	s := models.Signal{TransactionID: txID, Name: row.NomClient}
	switch result.Outcome {
	case OutcomeDelivered:
		s.Kind = models.SignalDelivered
	case OutcomeDuplicate:
		s.Kind = models.SignalDuplicate
	default:
		s.Kind = models.SignalError
		s.Text = result.Message
		s.Code = string(apperrors.CodeOf(result.Err))
	}
	h.notifier.Notify(ctx, s)
}

func snippet(s string) string {
	if len(s) > 500 {
		return s[:500]
	}
	return s
}
