// internal/intercept/credential.go
package intercept

import (
	"net/http"
	"strings"
	"sync"

	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/common/metrics"
)

const bearerPrefix = "bearer "

// CredentialStore holds the latest bearer credential seen on a SECONDARY
// call. Only one value is ever held; a newer one replaces it.
type CredentialStore struct {
	mu      sync.RWMutex
	current string
	log     logger.Logger
}

func NewCredentialStore(log logger.Logger) *CredentialStore {
	return &CredentialStore{log: logger.ForComponent(log, "credential")}
}

// Capture inspects h for an Authorization value. It returns true when the
// stored credential changed. Non-bearer values are ignored with a warning
// and never clear the stored credential.
func (c *CredentialStore) Capture(h http.Header) bool {
	value := authorizationValue(h)
	if value == "" {
		return false
	}
	if !IsBearer(value) {
		c.log.Warn("authorization header does not start with 'Bearer '", map[string]interface{}{
			"preview": preview(value),
		})
		return false
	}

	c.mu.Lock()
	if c.current == value {
		c.mu.Unlock()
		return false
	}
	c.current = value
	c.mu.Unlock()

	metrics.CredentialUpdates.Inc()
	c.log.Info("captured/updated auth token", nil)
	return true
}

// Current returns the stored credential, or "" if none was captured.
func (c *CredentialStore) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// IsBearer reports a case-insensitive "Bearer " prefix.
func IsBearer(value string) bool {
	return len(value) >= len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix)
}

// authorizationValue does a case-insensitive lookup. Get covers canonical
// keys; the scan covers keys assigned directly into the map.
func authorizationValue(h http.Header) string {
	if h == nil {
		return ""
	}
	if v := h.Get("Authorization"); v != "" {
		return v
	}
	for k, vals := range h {
		if strings.EqualFold(k, "authorization") && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

func preview(v string) string {
	if len(v) <= 15 {
		return v
	}
	return v[:15] + "..."
}
