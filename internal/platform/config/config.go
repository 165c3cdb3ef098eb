package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	platformstrings "tickethub/pkg/platform/strings"
)

const devSessionSecret = "dev-session-secret-change-in-production"

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string `env:"TICKETHUB_ADDR" envDefault:":8080"`
	Environment string `env:"ENVIRONMENT"    envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"      envDefault:"info"`

	// AdminToken protects /admin when set. Empty leaves it open, as the
	// admin listing always was.
	AdminToken string `env:"ADMIN_TOKEN"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"30s"`

	// TrustedProxies lists proxy IPs/CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// TracingEndpoint enables OTLP/HTTP span export when set.
	TracingEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Remote    Remote
	Session   Session
	Redis     Redis
	Postgres  Postgres
	RateLimit RateLimit
	Catalog   Catalog
	Kafka     Kafka
}

// Remote configures the ticket service client.
type Remote struct {
	BaseURL string        `env:"REMOTE_BASE_URL" envDefault:"https://nestjs.fasthosttech.com"`
	APIKey  string        `env:"REMOTE_API_KEY"`
	Timeout time.Duration `env:"REMOTE_TIMEOUT"  envDefault:"10s"`
}

// Session configures the session cookie and its storage lifetime.
type Session struct {
	Secret     string `env:"SESSION_SECRET"`
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"tickethub_session"`
	// CookieMaxAge defaults to a year; verification flags do not expire.
	CookieMaxAge time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"8760h"`
	// TTL is the store-side lifetime. Zero keeps sessions until sign-out.
	TTL          time.Duration `env:"SESSION_TTL"   envDefault:"0s"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// Redis is optional; an empty URL selects the in-memory session store.
type Redis struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// Enabled reports whether a Redis URL is configured.
func (r Redis) Enabled() bool { return r.URL != "" }

// Postgres is the alternative shared session store, used when Redis is not
// configured.
type Postgres struct {
	URL             string        `env:"DATABASE_URL"`
	MaxConns        int32         `env:"DATABASE_MAX_CONNS"         envDefault:"10"`
	MinConns        int32         `env:"DATABASE_MIN_CONNS"         envDefault:"1"`
	MaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"1h"`
	// CleanupInterval is how often expired session rows are purged.
	CleanupInterval time.Duration `env:"DATABASE_CLEANUP_INTERVAL"  envDefault:"10m"`
}

func (p Postgres) Enabled() bool { return p.URL != "" }

// RateLimit bounds verification submissions per client IP.
type RateLimit struct {
	VerifyPerMinute float64 `env:"VERIFY_RATE_LIMIT" envDefault:"30"`
	VerifyBurst     int     `env:"VERIFY_RATE_BURST" envDefault:"10"`
}

// Catalog configures the ticket catalog fetch.
type Catalog struct {
	BreakerThreshold int           `env:"CATALOG_BREAKER_THRESHOLD" envDefault:"3"`
	BreakerCooldown  time.Duration `env:"CATALOG_BREAKER_COOLDOWN"  envDefault:"30s"`
}

// Kafka streams audit events when Brokers is set.
type Kafka struct {
	Brokers         string        `env:"KAFKA_BROKERS"`
	AuditTopic      string        `env:"KAFKA_AUDIT_TOPIC"      envDefault:"tickethub.audit"`
	Acks            string        `env:"KAFKA_ACKS"             envDefault:"all"`
	Retries         int           `env:"KAFKA_RETRIES"          envDefault:"3"`
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"10s"`
}

func (k Kafka) Enabled() bool { return k.Brokers != "" }

// IsProduction reports whether the server runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.Session.Secret == "" && !cfg.IsProduction() {
		// Use a default for development - should be overridden in production
		cfg.Session.Secret = devSessionSecret
	}
	cfg.TrustedProxies = platformstrings.DedupeAndTrim(cfg.TrustedProxies)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (s Server) Validate() error {
	var errs []error
	if s.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	} else if len(s.Session.Secret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 bytes"))
	}
	if s.Remote.BaseURL == "" {
		errs = append(errs, errors.New("REMOTE_BASE_URL must not be empty"))
	}
	if s.Remote.Timeout <= 0 {
		errs = append(errs, errors.New("REMOTE_TIMEOUT must be positive"))
	}
	if s.Session.TTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	if s.RateLimit.VerifyPerMinute < 0 || s.RateLimit.VerifyBurst < 0 {
		errs = append(errs, errors.New("verification rate limit must not be negative"))
	}
	if s.Postgres.Enabled() && s.Postgres.CleanupInterval <= 0 {
		errs = append(errs, errors.New("DATABASE_CLEANUP_INTERVAL must be positive"))
	}
	if s.Kafka.Enabled() && s.Kafka.AuditTopic == "" {
		errs = append(errs, errors.New("KAFKA_AUDIT_TOPIC must not be empty when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}
