// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
proxy:
  upstream: https://app.example.com
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "quotation-relay", cfg.App.Name)
	assert.Equal(t, ":8081", cfg.Proxy.Listen)
	assert.Equal(t, ProxyModeTransport, cfg.Proxy.Mode)
	assert.Equal(t, int64(10<<20), cfg.Proxy.MaxBodyBytes)
	assert.Equal(t, "/api/carpentry/Order/Quotation?id=", cfg.Targets.Primary)
	assert.Equal(t, "/colleague/v2/customers/CAFR", cfg.Targets.Secondary)
	assert.Equal(t, "id", cfg.Targets.TransactionID)
	assert.Equal(t, "CAFR", cfg.Lookup.Tenant)
	assert.Equal(t, 30000, cfg.Lookup.Timeout)
	assert.Equal(t, 30000, cfg.Delivery.Timeout)
	assert.Equal(t, "N/A", cfg.Delivery.Placeholder)
	assert.Equal(t, "SQ_", cfg.Delivery.CustomerPrefix)
	assert.Equal(t, 500, cfg.Coordinator.PollInterval)
	assert.Equal(t, "memory", cfg.State.Backend)
	assert.Equal(t, 250, cfg.State.Timeout)
	assert.False(t, cfg.Delivery.SinkConfigured())
}

func TestLoadFromFile_Overrides(t *testing.T) {
	t.Setenv("SINK_FROM_ENV", "https://script.example.com/exec")
	t.Setenv("RELAY_LOOKUP_TENANT", "CAES")

	path := writeConfig(t, `
proxy:
  upstream: https://app.example.com
  mode: handler
  routes:
    - prefix: /colleague
      upstream: https://api.example.com
delivery:
  sink_url: ${SINK_FROM_ENV}
  image_formula: true
coordinator:
  poll_interval: 250
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ProxyModeHandler, cfg.Proxy.Mode)
	require.Len(t, cfg.Proxy.Routes, 1)
	assert.Equal(t, "/colleague", cfg.Proxy.Routes[0].Prefix)
	assert.Equal(t, "https://script.example.com/exec", cfg.Delivery.SinkURL)
	assert.True(t, cfg.Delivery.SinkConfigured())
	assert.True(t, cfg.Delivery.ImageFormula)
	assert.Equal(t, "CAES", cfg.Lookup.Tenant)
	assert.Equal(t, 250, cfg.Coordinator.PollInterval)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := map[string]string{
		"missing upstream": `
proxy:
  listen: ":9000"
`,
		"bad mode": `
proxy:
  upstream: https://app.example.com
  mode: sniff
`,
		"route without upstream": `
proxy:
  upstream: https://app.example.com
  routes:
    - prefix: /api
`,
		"redis without address": `
proxy:
  upstream: https://app.example.com
state:
  backend: redis
`,
		"sns without topic": `
proxy:
  upstream: https://app.example.com
notifications:
  sns:
    enabled: true
`,
		"ses without recipients": `
proxy:
  upstream: https://app.example.com
notifications:
  ses:
    enabled: true
    from_email: relay@example.com
`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSinkConfigured(t *testing.T) {
	assert.False(t, DeliveryConfig{}.SinkConfigured())
	assert.False(t, DeliveryConfig{SinkURL: SinkURLPlaceholder}.SinkConfigured())
	assert.False(t, DeliveryConfig{SinkURL: "  "}.SinkConfigured())
	assert.True(t, DeliveryConfig{SinkURL: "https://x"}.SinkConfigured())
}
