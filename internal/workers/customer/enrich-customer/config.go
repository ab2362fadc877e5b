// internal/workers/customer/enrich-customer/config.go
package enrichcustomer

import (
	"time"

	"quotation-relay/internal/common/config"
)

type Config struct {
	BaseURL      string
	Tenant       string
	Timeout      time.Duration
	PollInterval time.Duration
}

func LoadConfig(lookup config.LookupConfig, coordinator config.CoordinatorConfig) *Config {
	return &Config{
		BaseURL:      lookup.BaseURL,
		Tenant:       lookup.Tenant,
		Timeout:      config.GetDuration(lookup.Timeout),
		PollInterval: config.GetDuration(coordinator.PollInterval),
	}
}
