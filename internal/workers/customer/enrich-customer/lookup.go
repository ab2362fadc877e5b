// internal/workers/customer/enrich-customer/lookup.go
package enrichcustomer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "quotation-relay/internal/common/errors"
	commonhttp "quotation-relay/internal/common/http"
	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/common/metrics"
	"quotation-relay/internal/models"
)

const maxLookupResponseBytes = 1 << 20

// Lookup fetches customer attributes by customer number.
type Lookup interface {
	Fetch(ctx context.Context, customerID, credential string) (*models.CustomerAttributes, error)
}

// HTTPLookup calls the customer search endpoint with the captured credential.
type HTTPLookup struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewHTTPLookup(cfg *Config, client *commonhttp.Client, log logger.Logger) *HTTPLookup {
	if client == nil {
		client = commonhttp.NewClient(cfg.Timeout)
	}
	return &HTTPLookup{
		config: cfg,
		client: client,
		logger: logger.ForComponent(log, "customer-lookup"),
	}
}

// Fetch returns the attributes, or a StandardError whose code names the
// failure branch. A missing credential never reaches the network.
func (l *HTTPLookup) Fetch(ctx context.Context, customerID, credential string) (*models.CustomerAttributes, error) {
	if credential == "" {
		return nil, apperrors.NewAuthMissingError()
	}

	req, err := l.buildRequest(ctx, customerID, credential)
	if err != nil {
		return nil, apperrors.NewInternalError("build lookup request", err)
	}

	if l.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.Timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	log := l.logger.With(map[string]interface{}{"customerId": customerID})
	start := time.Now()
	resp, err := l.client.Do(req)
	duration := time.Since(start)
	metrics.LookupDuration.Observe(duration.Seconds())

	if err != nil {
		kind := apperrors.ClassifyTransport(ctx, err)
		log.Error("customer lookup transport failure", map[string]interface{}{
			"kind":       string(kind),
			"durationMs": duration.Milliseconds(),
			"error":      err.Error(),
		})
		return nil, apperrors.NewLookupTransportError(kind, err)
	}
	defer resp.Body.Close()

	log.Info("customer lookup completed", map[string]interface{}{
		"status":     resp.StatusCode,
		"durationMs": duration.Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxLookupResponseBytes))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, apperrors.NewAuthRejectedError(resp.StatusCode)
		}
		return nil, apperrors.NewLookupFailedError(resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupResponseBytes))
	if err != nil {
		return nil, apperrors.NewLookupTransportError(apperrors.ClassifyTransport(ctx, err), err)
	}

	var body lookupResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperrors.NewLookupDataShapeError("invalid JSON", err)
	}
	if len(body.Data) == 0 || body.Data[0].Attributes == nil {
		return nil, apperrors.NewLookupDataShapeError("data[0].attributes missing", nil)
	}

	return body.Data[0].Attributes.toModel(), nil
}

func (l *HTTPLookup) buildRequest(ctx context.Context, customerID, credential string) (*http.Request, error) {
	base, err := url.Parse(l.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("lookup base url: %w", err)
	}
	params := base.Query()
	params.Set("filter[customerNumber]", customerID)
	params.Set("page[number]", "1")
	params.Set("page[size]", "1")
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Tenant", l.config.Tenant)
	req.Header.Set("Authorization", credential)
	return req, nil
}
