package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultEnv             = "dev"
	defaultLogLevel        = "info"
	defaultBaseURL         = "https://silverpineapple.net"
	defaultLocale          = "en"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultRequestTimeout  = 30 * time.Second
	defaultBookingHost     = "booking.hospitable.com"
	defaultBookingAccount  = "9f9d3a07-f287-40dc-bb60-1966173ea154"
	defaultSearchWidgetID  = "fa52067f-9428-4c2a-8830-b54fd59398ad"
	defaultSearchScript    = "https://hospitable.b-cdn.net/direct-property-search-widget/hospitable-search-widget.prod.js"
	defaultPollInterval    = 500 * time.Millisecond
	defaultPollCeiling     = 60 * time.Second
	defaultPollDelay       = 2 * time.Second
	defaultSubmitPerMinute = 10

	// PatchProbe checks the vendor widget script in the background; PatchOff disables it.
	PatchProbe = "probe"
	PatchOff   = "off"
)

var defaultLocales = []string{"en", "es"}

// Config captures runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Paths     PathConfig
	Booking   BookingConfig
	Widget    WidgetConfig
	Forms     FormsConfig
	Telemetry TelemetryConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DevMode reports whether templates are reparsed on every request.
func (s ServerConfig) DevMode() bool { return s.Env != "prod" }

// SiteConfig holds the public origin and locale set.
type SiteConfig struct {
	BaseURL       string
	Locales       []string
	DefaultLocale string
}

// PathConfig locates on-disk resources.
type PathConfig struct {
	Templates string
	Locales   string
	Content   string
	Public    string
}

// BookingConfig addresses the hosted booking widget.
type BookingConfig struct {
	Host           string
	AccountID      string
	SearchWidgetID string
	SearchScript   string
}

// WidgetConfig controls the bounded widget patch poller.
type WidgetConfig struct {
	Patch    string
	Delay    time.Duration
	Interval time.Duration
	Ceiling  time.Duration
}

// FormsConfig configures where submissions are forwarded.
type FormsConfig struct {
	SubmissionsURL string
	NewsletterURL  string
	RatePerMinute  int
}

// TelemetryConfig groups logging, metrics and analytics settings.
type TelemetryConfig struct {
	LogLevel        string
	MetricsAddr     string
	GAMeasurementID string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects an explicit key/value map. Values in the map take precedence
// over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load assembles the configuration from defaults, the .env file, the process
// environment and an optional explicit map, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	// platform-provided PORT is honoured when the prefixed key is unset
	port := stringWithDefault(lookup, "PORT", defaultPort)

	cfg := Config{
		Server: ServerConfig{
			Port:           stringWithDefault(lookup, "SP_WEB_PORT", port),
			Env:            strings.ToLower(stringWithDefault(lookup, "SP_WEB_ENV", defaultEnv)),
			ReadTimeout:    durationWithDefault(lookup, "SP_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "SP_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "SP_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "SP_WEB_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Site: SiteConfig{
			BaseURL:       strings.TrimRight(stringWithDefault(lookup, "SP_WEB_BASE_URL", defaultBaseURL), "/"),
			Locales:       listWithDefault(lookup, "SP_WEB_LOCALES", defaultLocales),
			DefaultLocale: stringWithDefault(lookup, "SP_WEB_DEFAULT_LOCALE", defaultLocale),
		},
		Paths: PathConfig{
			Templates: stringWithDefault(lookup, "SP_WEB_TEMPLATES_DIR", "templates"),
			Locales:   stringWithDefault(lookup, "SP_WEB_LOCALES_DIR", "locales"),
			Content:   stringWithDefault(lookup, "SP_WEB_CONTENT_DIR", "content"),
			Public:    stringWithDefault(lookup, "SP_WEB_PUBLIC_DIR", "public"),
		},
		Booking: BookingConfig{
			Host:           stringWithDefault(lookup, "SP_WEB_BOOKING_HOST", defaultBookingHost),
			AccountID:      stringWithDefault(lookup, "SP_WEB_BOOKING_ACCOUNT_ID", defaultBookingAccount),
			SearchWidgetID: stringWithDefault(lookup, "SP_WEB_SEARCH_WIDGET_ID", defaultSearchWidgetID),
			SearchScript:   stringWithDefault(lookup, "SP_WEB_SEARCH_WIDGET_SCRIPT", defaultSearchScript),
		},
		Widget: WidgetConfig{
			Patch:    strings.ToLower(stringWithDefault(lookup, "SP_WEB_WIDGET_PATCH", PatchProbe)),
			Delay:    durationWithDefault(lookup, "SP_WEB_WIDGET_POLL_DELAY", defaultPollDelay),
			Interval: durationWithDefault(lookup, "SP_WEB_WIDGET_POLL_INTERVAL", defaultPollInterval),
			Ceiling:  durationWithDefault(lookup, "SP_WEB_WIDGET_POLL_CEILING", defaultPollCeiling),
		},
		Forms: FormsConfig{
			SubmissionsURL: stringWithDefault(lookup, "SP_WEB_SUBMISSIONS_URL", ""),
			NewsletterURL:  stringWithDefault(lookup, "SP_WEB_NEWSLETTER_URL", ""),
			RatePerMinute:  intWithDefault(lookup, "SP_WEB_SUBMIT_RATE_PER_MIN", defaultSubmitPerMinute),
		},
		Telemetry: TelemetryConfig{
			LogLevel:        stringWithDefault(lookup, "SP_WEB_LOG_LEVEL", defaultLogLevel),
			MetricsAddr:     stringWithDefault(lookup, "SP_WEB_METRICS_ADDR", ""),
			GAMeasurementID: stringWithDefault(lookup, "SP_WEB_GA_MEASUREMENT_ID", ""),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Server.Env != "dev" && cfg.Server.Env != "prod" {
		invalid = append(invalid, "Server.Env")
	}
	for name, d := range map[string]time.Duration{
		"Server.ReadTimeout":    cfg.Server.ReadTimeout,
		"Server.WriteTimeout":   cfg.Server.WriteTimeout,
		"Server.IdleTimeout":    cfg.Server.IdleTimeout,
		"Server.RequestTimeout": cfg.Server.RequestTimeout,
		"Widget.Delay":          cfg.Widget.Delay,
		"Widget.Interval":       cfg.Widget.Interval,
		"Widget.Ceiling":        cfg.Widget.Ceiling,
	} {
		if d <= 0 {
			invalid = append(invalid, name)
		}
	}
	if u, err := url.Parse(cfg.Site.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		invalid = append(invalid, "Site.BaseURL")
	}
	if len(cfg.Site.Locales) == 0 {
		invalid = append(invalid, "Site.Locales")
	} else if !contains(cfg.Site.Locales, cfg.Site.DefaultLocale) {
		invalid = append(invalid, "Site.DefaultLocale")
	}
	if cfg.Booking.Host == "" {
		invalid = append(invalid, "Booking.Host")
	}
	if cfg.Booking.AccountID == "" {
		invalid = append(invalid, "Booking.AccountID")
	}
	if cfg.Widget.Patch != PatchProbe && cfg.Widget.Patch != PatchOff {
		invalid = append(invalid, "Widget.Patch")
	}
	if cfg.Forms.RatePerMinute <= 0 {
		invalid = append(invalid, "Forms.RatePerMinute")
	}
	for name, raw := range map[string]string{
		"Forms.SubmissionsURL": cfg.Forms.SubmissionsURL,
		"Forms.NewsletterURL":  cfg.Forms.NewsletterURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || !u.IsAbs() {
			invalid = append(invalid, name)
		}
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// durationWithDefault keeps unparsable values visible to validation as zero.
func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0
		}
		return d
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0
		}
		return parsed
	}
	return fallback
}

func listWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" && !contains(out, trimmed) {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
