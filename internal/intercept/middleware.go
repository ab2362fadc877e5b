// internal/intercept/middleware.go
package intercept

import (
	"bytes"
	"net/http"
	"sync"

	"quotation-relay/internal/models"
)

// Middleware is the event-style primitive: an http.Handler decorator that
// observes the request at dispatch and the response at its terminal state,
// which is when the wrapped handler returns.
type Middleware struct {
	Observer *Observer
}

func NewMiddleware(observer *Observer) *Middleware {
	return &Middleware{Observer: observer}
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, txID, matched := m.Observer.observeRequest(primitiveHandler, r)
		if !matched || target.Name != models.TargetPrimary {
			next.ServeHTTP(w, r)
			return
		}

		// Already wrapped further out: the outer recorder captures it.
		if _, ok := w.(*responseRecorder); ok {
			next.ServeHTTP(w, r)
			return
		}

		rec := &responseRecorder{ResponseWriter: w, limit: m.Observer.maxBody}
		defer rec.complete(func(status int, body []byte, truncated bool) {
			m.Observer.dispatch(Capture{
				TransactionID: txID,
				URL:           r.URL.String(),
				StatusCode:    status,
				Body:          body,
				Truncated:     truncated,
				Encoding:      rec.Header().Get("Content-Encoding"),
			})
		})
		next.ServeHTTP(rec, r)
	})
}

// responseRecorder passes everything through and keeps a copy of the body.
type responseRecorder struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int64
	truncated bool
	once      sync.Once
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	if n > 0 && !r.truncated {
		room := r.limit - int64(r.buf.Len())
		if int64(n) > room {
			r.buf.Write(p[:room])
			r.truncated = true
		} else {
			r.buf.Write(p[:n])
		}
	}
	return n, err
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// complete fires fn once with the final status and body.
func (r *responseRecorder) complete(fn func(status int, body []byte, truncated bool)) {
	r.once.Do(func() {
		status := r.status
		if status == 0 {
			status = http.StatusOK
		}
		var body []byte
		if status >= 200 && status < 300 {
			body = make([]byte, r.buf.Len())
			copy(body, r.buf.Bytes())
		}
		fn(status, body, r.truncated)
	})
}
