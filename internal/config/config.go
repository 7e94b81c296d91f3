package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultTemplatesDir    = "templates"
	defaultPublicDir       = "public"
	defaultImageDir        = "/images"
	defaultLogLevel        = "info"

	// EnvDevelopment serves entry images locally and reloads templates and icons.
	EnvDevelopment = "development"
	// EnvProduction serves entry images from the asset host.
	EnvProduction = "production"

	devEntryImageDir  = "/hike-images"
	prodEntryImageDir = "http://assets.hike.io/hike-images"
)

// Config captures runtime configuration organised by concern.
type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Paths     PathsConfig
	Site      SiteConfig
	Analytics AnalyticsConfig
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// PathsConfig locates templates, static files, and an optional catalog file.
// An empty CatalogFile selects the catalog compiled into the binary.
type PathsConfig struct {
	Templates   string
	Public      string
	CatalogFile string
}

// SiteConfig holds URLs surfaced to templates.
type SiteConfig struct {
	BaseURL       string
	ImageDir      string
	EntryImageDir string
}

// AnalyticsConfig holds client instrumentation settings.
type AnalyticsConfig struct {
	GA4MeasurementID string
	Debug            bool
}

// DevMode reports whether the development environment is selected.
func (c Config) DevMode() bool { return c.Env == EnvDevelopment }

// ValidationError is returned when configuration values are invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
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

// WithEnvFile overrides the .env file path. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the system
// environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles configuration from defaults, the .env file, the process
// environment, and an explicit map, in increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	l := &loader{lookup: func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotEnv[key]
		return v, ok
	}}

	env := strings.ToLower(l.string("HIKE_WEB_ENV", EnvDevelopment))
	switch env {
	case "dev":
		env = EnvDevelopment
	case "prod":
		env = EnvProduction
	case EnvDevelopment, EnvProduction:
	default:
		l.invalid = append(l.invalid, "Env")
	}

	port := l.string("HIKE_WEB_PORT", l.string("PORT", defaultPort))
	entryImageDir := devEntryImageDir
	if env == EnvProduction {
		entryImageDir = prodEntryImageDir
	}

	cfg := Config{
		Env:      env,
		LogLevel: l.string("HIKE_WEB_LOG_LEVEL", defaultLogLevel),
		Server: ServerConfig{
			Addr:            l.string("HIKE_WEB_ADDR", ":"+port),
			ReadTimeout:     l.duration("HIKE_WEB_READ_TIMEOUT", "Server.ReadTimeout", defaultReadTimeout),
			WriteTimeout:    l.duration("HIKE_WEB_WRITE_TIMEOUT", "Server.WriteTimeout", defaultWriteTimeout),
			IdleTimeout:     l.duration("HIKE_WEB_IDLE_TIMEOUT", "Server.IdleTimeout", defaultIdleTimeout),
			ShutdownTimeout: l.duration("HIKE_WEB_SHUTDOWN_TIMEOUT", "Server.ShutdownTimeout", defaultShutdownTimeout),
		},
		Paths: PathsConfig{
			Templates:   l.string("HIKE_WEB_TEMPLATES_DIR", defaultTemplatesDir),
			Public:      l.string("HIKE_WEB_PUBLIC_DIR", defaultPublicDir),
			CatalogFile: l.string("HIKE_WEB_CATALOG_FILE", ""),
		},
		Site: SiteConfig{
			BaseURL:       strings.TrimSuffix(l.string("HIKE_WEB_BASE_URL", "http://localhost:"+port), "/"),
			ImageDir:      defaultImageDir,
			EntryImageDir: strings.TrimSuffix(l.string("HIKE_WEB_ENTRY_IMAGE_DIR", entryImageDir), "/"),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: l.string("HIKE_WEB_GA_MEASUREMENT_ID", ""),
			Debug:            l.bool("HIKE_WEB_ANALYTICS_DEBUG", "Analytics.Debug", false),
		},
	}

	if len(l.invalid) > 0 {
		return Config{}, &ValidationError{fields: l.invalid}
	}
	return cfg, nil
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

type loader struct {
	lookup  func(string) (string, bool)
	invalid []string
}

func (l *loader) string(key, fallback string) string {
	if value, ok := l.lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (l *loader) duration(key, field string, fallback time.Duration) time.Duration {
	value, ok := l.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		l.invalid = append(l.invalid, field)
		return fallback
	}
	return d
}

func (l *loader) bool(key, field string, fallback bool) bool {
	value, ok := l.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	l.invalid = append(l.invalid, field)
	return fallback
}
