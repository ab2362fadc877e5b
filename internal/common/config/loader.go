// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. RELAY_DELIVERY_SINK_URL.
const EnvPrefix = "RELAY"

// Load reads config.yaml, merges config.<env>.yaml and applies env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys makes AutomaticEnv see keys that have no YAML entry.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.name", "app.environment",
		"proxy.listen", "proxy.upstream", "proxy.mode", "proxy.max_body_bytes",
		"targets.primary", "targets.secondary", "targets.transaction_id_param",
		"lookup.base_url", "lookup.tenant", "lookup.timeout",
		"delivery.sink_url", "delivery.timeout", "delivery.timezone", "delivery.image_formula",
		"delivery.placeholder", "delivery.customer_prefix",
		"coordinator.poll_interval",
		"state.backend", "state.ttl", "state.timeout",
		"database.redis.address", "database.redis.password", "database.redis.db",
		"notifications.aws.region", "notifications.sns.enabled", "notifications.sns.topic_arn",
		"notifications.ses.enabled", "notifications.ses.from_email",
		"metrics.listen",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "quotation-relay"
	}

	if cfg.Proxy.Listen == "" {
		cfg.Proxy.Listen = ":8081"
	}
	if cfg.Proxy.Mode == "" {
		cfg.Proxy.Mode = ProxyModeTransport
	}
	if cfg.Proxy.MaxBodyBytes == 0 {
		cfg.Proxy.MaxBodyBytes = 10 << 20
	}

	if cfg.Targets.Primary == "" {
		cfg.Targets.Primary = "/api/carpentry/Order/Quotation?id="
	}
	if cfg.Targets.Secondary == "" {
		cfg.Targets.Secondary = "/colleague/v2/customers/CAFR"
	}
	if cfg.Targets.TransactionID == "" {
		cfg.Targets.TransactionID = "id"
	}

	if cfg.Lookup.BaseURL == "" {
		cfg.Lookup.BaseURL = "https://api.kingfisher.com/colleague/v2/customers/CAFR"
	}
	if cfg.Lookup.Tenant == "" {
		cfg.Lookup.Tenant = "CAFR"
	}
	if cfg.Lookup.Timeout == 0 {
		cfg.Lookup.Timeout = 30000
	}

	if cfg.Delivery.Timeout == 0 {
		cfg.Delivery.Timeout = 30000
	}
	if cfg.Delivery.Timezone == "" {
		cfg.Delivery.Timezone = "UTC"
	}
	if cfg.Delivery.Placeholder == "" {
		cfg.Delivery.Placeholder = "N/A"
	}
	if cfg.Delivery.CustomerPrefix == "" {
		cfg.Delivery.CustomerPrefix = "SQ_"
	}

	if cfg.Coordinator.PollInterval == 0 {
		cfg.Coordinator.PollInterval = 500
	}

	if cfg.State.Backend == "" {
		cfg.State.Backend = "memory"
	}
	if cfg.State.TTL == 0 {
		cfg.State.TTL = 3600
	}
	if cfg.State.Timeout == 0 {
		cfg.State.Timeout = 250
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "eu-west-1"
	}

	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":8080"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields. A missing sink URL
// is not a load error; each delivery reports it instead.
func validateConfig(cfg *Config) error {
	if cfg.Proxy.Upstream == "" {
		return fmt.Errorf("proxy.upstream is required")
	}
	for i, r := range cfg.Proxy.Routes {
		if r.Prefix == "" || r.Upstream == "" {
			return fmt.Errorf("proxy.routes[%d] needs prefix and upstream", i)
		}
	}
	if cfg.Proxy.Mode != ProxyModeTransport && cfg.Proxy.Mode != ProxyModeHandler {
		return fmt.Errorf("proxy.mode must be %q or %q", ProxyModeTransport, ProxyModeHandler)
	}

	if cfg.State.Backend != "memory" && cfg.State.Backend != "redis" {
		return fmt.Errorf("state.backend must be memory or redis")
	}
	if cfg.State.Backend == "redis" && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required for the redis state backend")
	}

	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}
	if cfg.Notifications.SES.Enabled && (cfg.Notifications.SES.FromEmail == "" || len(cfg.Notifications.SES.To) == 0) {
		return fmt.Errorf("notifications.ses.from_email and to are required when ses is enabled")
	}

	return nil
}
