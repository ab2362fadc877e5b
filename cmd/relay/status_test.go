// cmd/relay/status_test.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/models"
	"quotation-relay/internal/notify"

	ec "quotation-relay/internal/workers/customer/enrich-customer"
	dr "quotation-relay/internal/workers/delivery/deliver-record"
)

type nopSender struct{}

func (nopSender) Send(context.Context, models.PrimaryRecord, *models.CustomerAttributes) dr.Result {
	return dr.Result{Outcome: dr.OutcomeDelivered}
}

type blockingLookup chan struct{}

func (b blockingLookup) Fetch(context.Context, string, string) (*models.CustomerAttributes, error) {
	<-b
	return nil, nil
}

func getStatus(t *testing.T, h http.Handler) statusResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func TestStatusHandler_ReportsCoordinator(t *testing.T) {
	lookup := make(blockingLookup)
	coordinator := ec.NewHandler(ec.HandlerOptions{
		Lookup:   lookup,
		Sender:   nopSender{},
		Notifier: notify.NewRecorder(),
		Logger:   logger.NewTestLogger(t),
	})
	h := statusHandler(coordinator, false)

	assert.Equal(t, statusResponse{}, getStatus(t, h))

	coordinator.Submit(models.PendingEnrichment{TransactionID: "Q1", CustomerIDNormalized: "1"})
	assert.Equal(t, statusResponse{Pending: "Q1"}, getStatus(t, h))

	require.True(t, coordinator.ProcessOnce(context.Background()))
	coordinator.Submit(models.PendingEnrichment{TransactionID: "Q2", CustomerIDNormalized: "2"})
	assert.Equal(t, statusResponse{LookupInFlight: true, Pending: "Q2"}, getStatus(t, h))

	close(lookup)
	coordinator.Wait()
	assert.False(t, getStatus(t, h).LookupInFlight)
	assert.True(t, getStatus(t, statusHandler(coordinator, true)).SinkConfigured)
}
