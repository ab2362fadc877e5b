// internal/common/http/client.go
package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader correlates relay-originated calls in upstream logs.
const RequestIDHeader = "X-Request-Id"

// Client is the outbound client for the lookup and the sink. It is never
// wrapped by the interceptor, so relay-originated calls are not observed.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// NewClientWith wraps an existing *http.Client, mainly for tests.
func NewClientWith(c *http.Client) *Client {
	return &Client{httpClient: c}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return c.httpClient.Do(req)
}
