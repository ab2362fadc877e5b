// internal/workers/delivery/deliver-record/config.go
package deliverrecord

import (
	"fmt"
	"strings"
	"time"

	"quotation-relay/internal/common/config"
)

type Config struct {
	SinkURL      string
	Timeout      time.Duration
	Location     *time.Location
	ImageFormula bool
	Placeholder  string
}

// SinkConfigured reports whether SinkURL is set to something other than the
// sample placeholder.
func (c *Config) SinkConfigured() bool {
	u := strings.TrimSpace(c.SinkURL)
	return u != "" && u != config.SinkURLPlaceholder
}

func LoadConfig(cfg config.DeliveryConfig) (*Config, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("delivery.timezone %q: %w", cfg.Timezone, err)
	}
	return &Config{
		SinkURL:      cfg.SinkURL,
		Timeout:      config.GetDuration(cfg.Timeout),
		Location:     loc,
		ImageFormula: cfg.ImageFormula,
		Placeholder:  cfg.Placeholder,
	}, nil
}
