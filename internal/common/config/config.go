// internal/common/config/config.go
package config

import (
	"strings"
	"time"
)

// SinkURLPlaceholder is the value shipped in the sample config. It counts as unset.
const SinkURLPlaceholder = "PASTE_YOUR_WEB_APP_URL_HERE"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Proxy         ProxyConfig        `mapstructure:"proxy"`
	Targets       TargetsConfig      `mapstructure:"targets"`
	Lookup        LookupConfig       `mapstructure:"lookup"`
	Delivery      DeliveryConfig     `mapstructure:"delivery"`
	Coordinator   CoordinatorConfig  `mapstructure:"coordinator"`
	State         StateConfig        `mapstructure:"state"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ProxyConfig describes the reverse proxy placed in front of the observed application.
type ProxyConfig struct {
	Listen       string  `mapstructure:"listen"`
	Upstream     string  `mapstructure:"upstream"`
	Routes       []Route `mapstructure:"routes"`
	Mode         string  `mapstructure:"mode"` // "transport" or "handler"
	MaxBodyBytes int64   `mapstructure:"max_body_bytes"`
}

// Route sends requests whose path starts with Prefix to Upstream.
type Route struct {
	Prefix   string `mapstructure:"prefix"`
	Upstream string `mapstructure:"upstream"`
}

const (
	ProxyModeTransport = "transport"
	ProxyModeHandler   = "handler"
)

// TargetsConfig holds the URL substrings that classify observed calls.
type TargetsConfig struct {
	Primary       string `mapstructure:"primary"`
	Secondary     string `mapstructure:"secondary"`
	TransactionID string `mapstructure:"transaction_id_param"`
}

type LookupConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Tenant  string `mapstructure:"tenant"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type DeliveryConfig struct {
	SinkURL        string `mapstructure:"sink_url"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
	Timezone       string `mapstructure:"timezone"`
	ImageFormula   bool   `mapstructure:"image_formula"`
	Placeholder    string `mapstructure:"placeholder"`
	CustomerPrefix string `mapstructure:"customer_prefix"`
}

type CoordinatorConfig struct {
	PollInterval int `mapstructure:"poll_interval"` // milliseconds
}

// StateConfig selects the transaction state tracker backend.
type StateConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "redis"
	TTL     int    `mapstructure:"ttl"`     // seconds
	Timeout int    `mapstructure:"timeout"` // milliseconds, per transition on the request path
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NotificationConfig holds the presentation channels beyond the log.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"ses"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SinkConfigured reports whether a usable sink URL is set.
func (d DeliveryConfig) SinkConfigured() bool {
	u := strings.TrimSpace(d.SinkURL)
	return u != "" && u != SinkURLPlaceholder
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
