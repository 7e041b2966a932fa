package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akylbek/transvoucher-go/apierror"
)

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"

	APIVersion = "v1.0"

	DefaultEnvironment    = EnvironmentProduction
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultUserAgent      = "TransVoucher-Go-SDK/1.0.0"
)

var baseURLs = map[string]string{
	EnvironmentSandbox:    "https://sandbox-api.transvoucher.com",
	EnvironmentProduction: "https://api.transvoucher.com",
}

// Config holds the resolved client settings. Zero fields in an override
// Config mean "not supplied".
type Config struct {
	APIKey         string
	APISecret      string
	Environment    string
	BaseURL        string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	UserAgent      string
	WebhookSecret  string
}

// Load resolves the configuration from defaults and the environment only.
func Load() (Config, error) {
	return Resolve(Config{})
}

// Resolve merges built-in defaults, TRANSVOUCHER_* environment variables and
// overrides, in that order of increasing precedence, then validates the result.
func Resolve(overrides Config) (Config, error) {
	cfg := Config{
		Environment:    DefaultEnvironment,
		Timeout:        DefaultTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		UserAgent:      DefaultUserAgent,
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyOverrides(&cfg, overrides)

	if cfg.APIKey == "" {
		return Config{}, apierror.Configuration("Missing required config: api_key")
	}
	if cfg.APISecret == "" {
		return Config{}, apierror.Configuration("Missing required config: api_secret")
	}

	if _, ok := baseURLs[cfg.Environment]; !ok {
		return Config{}, apierror.Configuration("Invalid environment. Must be 'sandbox' or 'production'")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURLs[cfg.Environment]
	}
	cfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)

	return cfg, nil
}

// NormalizeBaseURL strips trailing slashes and appends the API version
// segment unless it is already the last path segment.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if strings.HasSuffix(u, "/"+APIVersion) {
		return u
	}
	return u + "/" + APIVersion
}

// IsSandbox reports whether the client targets the sandbox API.
func (c Config) IsSandbox() bool {
	return c.Environment == EnvironmentSandbox
}

func applyEnv(cfg *Config) error {
	setString(&cfg.APIKey, "TRANSVOUCHER_API_KEY")
	setString(&cfg.APISecret, "TRANSVOUCHER_API_SECRET")
	setString(&cfg.Environment, "TRANSVOUCHER_ENVIRONMENT")
	setString(&cfg.BaseURL, "TRANSVOUCHER_API_URL")
	setString(&cfg.UserAgent, "TRANSVOUCHER_USER_AGENT")
	setString(&cfg.WebhookSecret, "TRANSVOUCHER_WEBHOOK_SECRET")

	if err := setDuration(&cfg.Timeout, "TRANSVOUCHER_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&cfg.ConnectTimeout, "TRANSVOUCHER_CONNECT_TIMEOUT")
}

func applyOverrides(cfg *Config, o Config) {
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.APISecret != "" {
		cfg.APISecret = o.APISecret
	}
	if o.Environment != "" {
		cfg.Environment = o.Environment
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.ConnectTimeout > 0 {
		cfg.ConnectTimeout = o.ConnectTimeout
	}
	if o.UserAgent != "" {
		cfg.UserAgent = o.UserAgent
	}
	if o.WebhookSecret != "" {
		cfg.WebhookSecret = o.WebhookSecret
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// setDuration accepts whole seconds ("30") or a Go duration ("1m30s").
func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return apierror.Configuration("Invalid duration for %s: %q", key, v)
	}
	*dst = d
	return nil
}
