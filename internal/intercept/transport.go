// internal/intercept/transport.go
package intercept

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"quotation-relay/internal/models"
)

// Transport is the promise-style primitive: an http.RoundTripper decorator.
// The caller gets the same response, error and body bytes it would get from
// Base alone.
type Transport struct {
	Base     http.RoundTripper
	Observer *Observer
}

func NewTransport(base http.RoundTripper, observer *Observer) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Observer: observer}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, txID, matched := t.Observer.observeRequest(primitiveTransport, req)

	resp, err := t.Base.RoundTrip(req)

	if !matched || target.Name != models.TargetPrimary {
		return resp, err
	}
	if err != nil {
		t.Observer.log.Error("network error intercepting primary request", map[string]interface{}{
			"url":   req.URL.String(),
			"error": err.Error(),
		})
		return resp, err
	}

	capture := Capture{
		TransactionID: txID,
		URL:           req.URL.String(),
		StatusCode:    resp.StatusCode,
		Encoding:      resp.Header.Get("Content-Encoding"),
	}
	if capture.OK() && resp.Body != nil {
		resp.Body = newTeeBody(resp.Body, t.Observer.maxBody, func(body []byte, truncated bool) {
			capture.Body = body
			capture.Truncated = truncated
			t.Observer.dispatch(capture)
		})
		return resp, nil
	}

	t.Observer.dispatch(capture)
	return resp, nil
}

// teeBody copies everything the caller reads. The copy is handed off once,
// at EOF or at Close; an early Close drains the rest up to the limit.
type teeBody struct {
	rc        io.ReadCloser
	buf       bytes.Buffer
	limit     int64
	truncated bool
	once      sync.Once
	done      func(body []byte, truncated bool)
}

func newTeeBody(rc io.ReadCloser, limit int64, done func([]byte, bool)) *teeBody {
	return &teeBody{rc: rc, limit: limit, done: done}
}

func (b *teeBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.record(p[:n])
	}
	if err == io.EOF {
		b.finish()
	}
	return n, err
}

func (b *teeBody) Close() error {
	b.once.Do(func() {
		if !b.truncated {
			remaining := b.limit - int64(b.buf.Len())
			rest, _ := io.ReadAll(io.LimitReader(b.rc, remaining+1))
			b.record(rest)
		}
		b.handoff()
	})
	return b.rc.Close()
}

func (b *teeBody) finish() {
	b.once.Do(b.handoff)
}

func (b *teeBody) handoff() {
	body := make([]byte, b.buf.Len())
	copy(body, b.buf.Bytes())
	b.done(body, b.truncated)
}

func (b *teeBody) record(p []byte) {
	if b.truncated {
		return
	}
	room := b.limit - int64(b.buf.Len())
	if int64(len(p)) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return
	}
	b.buf.Write(p)
}
