package app

import (
	"errors"
	"net/url"
	"time"

	"github.com/hibiken/asynq"
	"github.com/kelseyhightower/envconfig"

	"github.com/transitdesk/console/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"0s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://127.0.0.1:4000/api"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`
	ServiceToken   string        `envconfig:"SERVICE_TOKEN"`

	RealtimeURL       string `envconfig:"REALTIME_URL"`
	RealtimeNamespace string `envconfig:"REALTIME_NAMESPACE" default:"admin"`

	LiveDebounce time.Duration `envconfig:"LIVE_DEBOUNCE" default:"500ms"`
	PageSize     int           `envconfig:"PAGE_SIZE" default:"10"`
	ListCacheTTL time.Duration `envconfig:"LIST_CACHE_TTL" default:"30s"`

	WarmupSchedule string `envconfig:"WARMUP_SCHEDULE" default:"@every 1m"`
	WarmupPages    int    `envconfig:"WARMUP_PAGES" default:"1"`

	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	PGDSN      string `envconfig:"PG_DSN"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"4"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("backend url must be an absolute url")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return errors.New("page size must be between 1 and 100")
	}
	if c.WarmupPages < 0 || c.WarmupPages > 10 {
		return errors.New("warmup pages must be between 0 and 10")
	}
	if c.LiveDebounce < 0 {
		return errors.New("live debounce must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// RealtimeEnabled reports whether a real-time channel should be opened.
func (c *Config) RealtimeEnabled() bool {
	return c != nil && c.RealtimeURL != ""
}

// AuditEnabled reports whether the Postgres audit trail is configured.
func (c *Config) AuditEnabled() bool {
	return c != nil && c.PGDSN != ""
}

// RedisOptions returns the connection settings for sessions and the list cache.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// AsynqRedis returns the same Redis settings for the job queue.
func (c *Config) AsynqRedis() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}
