// internal/intercept/middleware_test.go
package intercept

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func upstreamHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func TestMiddleware_PrimaryCaptured(t *testing.T) {
	const body = `{"creationDate":"2024-05-01T10:00:00Z"}`
	f := newObserverFixture(t, 0)
	h := NewMiddleware(f.observer).Wrap(upstreamHandler(http.StatusOK, body))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/carpentry/Order/Quotation?id=Q1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Test"))

	c := f.sink.next(t)
	assert.Equal(t, "Q1", c.TransactionID)
	assert.Equal(t, body, string(c.Body))
	f.sink.none(t)
}

func TestMiddleware_ImplicitStatus(t *testing.T) {
	f := newObserverFixture(t, 0)
	h := NewMiddleware(f.observer).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"a":1}`)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/carpentry/Order/Quotation?id=Q2", nil))

	c := f.sink.next(t)
	assert.Equal(t, http.StatusOK, c.StatusCode)
	assert.Equal(t, `{"a":1}`, string(c.Body))
}

func TestMiddleware_NonSuccessHasNoBody(t *testing.T) {
	f := newObserverFixture(t, 0)
	h := NewMiddleware(f.observer).Wrap(upstreamHandler(http.StatusInternalServerError, "oops"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/carpentry/Order/Quotation?id=Q3", nil))

	assert.Equal(t, "oops", rec.Body.String())
	c := f.sink.next(t)
	assert.Equal(t, http.StatusInternalServerError, c.StatusCode)
	assert.Nil(t, c.Body)
}

func TestMiddleware_Truncates(t *testing.T) {
	body := strings.Repeat("y", 40)
	f := newObserverFixture(t, 10)
	h := NewMiddleware(f.observer).Wrap(upstreamHandler(http.StatusOK, body))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/carpentry/Order/Quotation?id=Q4", nil))

	assert.Equal(t, body, rec.Body.String())
	c := f.sink.next(t)
	assert.True(t, c.Truncated)
	assert.Len(t, c.Body, 10)
}

func TestMiddleware_DoubleWrapCapturesOnce(t *testing.T) {
	f := newObserverFixture(t, 0)
	mw := NewMiddleware(f.observer)
	h := mw.Wrap(mw.Wrap(upstreamHandler(http.StatusOK, `{}`)))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/carpentry/Order/Quotation?id=Q5", nil))

	f.sink.next(t)
	f.sink.none(t)
}

func TestMiddleware_SecondaryCredential(t *testing.T) {
	f := newObserverFixture(t, 0)
	h := NewMiddleware(f.observer).Wrap(upstreamHandler(http.StatusOK, `{}`))

	req := httptest.NewRequest(http.MethodGet, testSecondary+"?filter[customerNumber]=9", nil)
	req.Header.Set("Authorization", "Bearer mw")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "Bearer mw", f.credentials.Current())
	f.sink.none(t)
}
