// internal/workers/quotation/process-quotation/config.go
package processquotation

import "quotation-relay/internal/common/config"

type Config struct {
	CustomerPrefix string
}

func LoadConfig(cfg config.DeliveryConfig) *Config {
	return &Config{CustomerPrefix: cfg.CustomerPrefix}
}
