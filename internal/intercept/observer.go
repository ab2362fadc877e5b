// internal/intercept/observer.go
package intercept

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "quotation-relay/internal/common/errors"
	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/common/metrics"
	"quotation-relay/internal/models"
	"quotation-relay/internal/state"
)

const (
	primitiveTransport = "transport"
	primitiveHandler   = "handler"

	defaultStateTimeout = 250 * time.Millisecond
)

// Capture is an observed PRIMARY response. Encoding is the response
// Content-Encoding; gzip bodies are decoded before the sink sees them.
type Capture struct {
	TransactionID string
	URL           string
	StatusCode    int
	Body          []byte
	Truncated     bool
	Encoding      string
}

// OK reports a 2xx status.
func (c Capture) OK() bool {
	return c.StatusCode >= 200 && c.StatusCode < 300
}

// ResponseSink consumes captured PRIMARY responses.
type ResponseSink interface {
	HandleCapture(ctx context.Context, c Capture)
}

// Options configures an Observer.
type Options struct {
	Matcher      *Matcher
	Credentials  *CredentialStore
	Sink         ResponseSink
	Tracker      state.Tracker
	Logger       logger.Logger
	TxParam      string
	MaxBodyBytes int64
	// StateTimeout bounds the Observed transition made on the request path.
	StateTimeout time.Duration
}

// Observer holds what both wrapped primitives share.
type Observer struct {
	matcher     *Matcher
	credentials *CredentialStore
	sink        ResponseSink
	tracker     state.Tracker
	log         logger.Logger
	guard       *apperrors.ErrorHandler
	txParam     string
	maxBody     int64
	stateWait   time.Duration
}

func NewObserver(opts Options) *Observer {
	log := logger.ForComponent(opts.Logger, "interceptor")
	if opts.TxParam == "" {
		opts.TxParam = "id"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	if opts.StateTimeout <= 0 {
		opts.StateTimeout = defaultStateTimeout
	}
	return &Observer{
		matcher:     opts.Matcher,
		credentials: opts.Credentials,
		sink:        opts.Sink,
		tracker:     opts.Tracker,
		log:         log,
		guard:       apperrors.NewErrorHandler(log),
		txParam:     opts.TxParam,
		maxBody:     opts.MaxBodyBytes,
		stateWait:   opts.StateTimeout,
	}
}

// observeRequest classifies r before dispatch. For SECONDARY calls the
// credential is captured here; for PRIMARY calls the transaction id is
// extracted and the transaction marked observed.
func (o *Observer) observeRequest(primitive string, r *http.Request) (target models.TargetPattern, txID string, ok bool) {
	_ = o.guard.Guard("observe request", func() {
		target, ok = o.matcher.MatchRequest(r)
		if !ok {
			return
		}
		metrics.InterceptedCalls.WithLabelValues(string(target.Name), primitive).Inc()

		switch target.Name {
		case models.TargetSecondary:
			o.log.Debug("detected secondary request", map[string]interface{}{"url": r.URL.String(), "primitive": primitive})
			if o.credentials != nil {
				o.credentials.Capture(r.Header)
			}
		case models.TargetPrimary:
			txID = ExtractTransactionID(r.URL.String(), o.txParam)
			o.log.Info("detected primary request", map[string]interface{}{
				"url":           r.URL.String(),
				"transactionId": txID,
				"primitive":     primitive,
			})
			o.markObserved(txID)
		}
	})
	return target, txID, ok
}

// markObserved records the Observed state without holding the caller's
// request longer than stateWait.
func (o *Observer) markObserved(txID string) {
	if o.tracker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.stateWait)
	defer cancel()
	if err := o.tracker.Transition(ctx, txID, models.StateObserved); err != nil {
		o.log.Warn("state transition rejected", map[string]interface{}{"error": err.Error()})
	}
}

// dispatch hands c to the sink on its own goroutine. Nothing the sink does
// can reach the observed caller.
func (o *Observer) dispatch(c Capture) {
	if o.sink == nil {
		return
	}
	go func() {
		c = o.decode(c)
		_ = o.guard.Guard("handle primary response", func() {
			o.sink.HandleCapture(context.Background(), c)
		})
	}()
}

// decode inflates a gzip body. A body that fails to inflate is passed on
// unchanged and will be rejected downstream as malformed.
func (o *Observer) decode(c Capture) Capture {
	if !strings.EqualFold(strings.TrimSpace(c.Encoding), "gzip") || len(c.Body) == 0 || c.Truncated {
		return c
	}
	zr, err := gzip.NewReader(bytes.NewReader(c.Body))
	if err != nil {
		o.log.Warn("primary response is not valid gzip", map[string]interface{}{"error": err.Error()})
		return c
	}
	defer zr.Close()
	plain, err := io.ReadAll(io.LimitReader(zr, o.maxBody+1))
	if err != nil {
		o.log.Warn("primary response gzip stream is corrupt", map[string]interface{}{"error": err.Error()})
		return c
	}
	if int64(len(plain)) > o.maxBody {
		plain = plain[:o.maxBody]
		c.Truncated = true
	}
	c.Body = plain
	c.Encoding = ""
	return c
}
