// internal/common/errors/errors_test.go
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyTransport(t *testing.T) {
	expired, cancelExpired := context.WithTimeout(context.Background(), 0)
	defer cancelExpired()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want TransportKind
	}{
		{"nil error", context.Background(), nil, ""},
		{"deadline", context.Background(), fmt.Errorf("do: %w", context.DeadlineExceeded), TransportTimeout},
		{"expired context", expired, stderrors.New("read failed"), TransportTimeout},
		{"net timeout", context.Background(), timeoutErr{}, TransportTimeout},
		{"client timeout text", nil, stderrors.New("Get x: net/http: request canceled (Client.Timeout exceeded)"), TransportTimeout},
		{"canceled", context.Background(), context.Canceled, TransportAborted},
		{"cancelled context", cancelled, stderrors.New("read failed"), TransportAborted},
		{"refused", context.Background(), stderrors.New("connection refused"), TransportNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTransport(tt.ctx, tt.err))
		})
	}
}

func TestTransportErrors(t *testing.T) {
	cause := stderrors.New("boom")

	assert.Equal(t, ErrCodeLookupTimeout, NewLookupTransportError(TransportTimeout, cause).Code)
	assert.Equal(t, ErrCodeLookupAborted, NewLookupTransportError(TransportAborted, cause).Code)
	assert.Equal(t, ErrCodeLookupNetwork, NewLookupTransportError(TransportNetwork, cause).Code)
	assert.Equal(t, ErrCodeSinkTimeout, NewSinkTransportError(TransportTimeout, cause).Code)
	assert.Equal(t, ErrCodeSinkNetwork, NewSinkTransportError(TransportAborted, cause).Code)

	err := NewLookupTransportError(TransportNetwork, cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "boom", err.Details)
	assert.False(t, err.Retryable)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeAuthRejected, CodeOf(NewAuthRejectedError(401)))
	assert.Equal(t, ErrCodeSinkError, CodeOf(fmt.Errorf("wrapped: %w", NewSinkError("x"))))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
	assert.Equal(t, "status: 401", NewAuthRejectedError(401).Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeAuthMissing))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeLookupDataShape))
	assert.Equal(t, "DELIVERY", GetErrorCategory(ErrCodeSinkTimeout))
	assert.Equal(t, "CONFIG", GetErrorCategory(ErrCodeConfigMissing))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMalformedInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

type captureLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (c *captureLogger) Error(msg string, fields map[string]interface{}) {
	c.messages = append(c.messages, msg)
	c.fields = append(c.fields, fields)
}

func TestErrorHandler_Guard(t *testing.T) {
	log := &captureLogger{}
	h := NewErrorHandler(log)

	assert.NoError(t, h.Guard("quiet", func() {}))

	err := h.Guard("explode", func() { panic("kaboom") })
	assert.Error(t, err)
	assert.Equal(t, ErrCodeInternal, CodeOf(err))
	if assert.Len(t, log.fields, 1) {
		assert.Equal(t, "explode", log.fields[0]["operation"])
		assert.Equal(t, "OTHER", log.fields[0]["errorCategory"])
	}

	h.Log("lookup", NewLookupFailedError(500))
	assert.Equal(t, "LOOKUP_FAILED", log.fields[1]["errorCode"])
	assert.Equal(t, "LOOKUP", log.fields[1]["errorCategory"])
}
