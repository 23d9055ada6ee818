package config

import (
	"time"

	"github.com/flashdeck/flashdeck-backend/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Identity IdentityConfig `yaml:"identity"`
	Log      LogConfig      `yaml:"log"`
	SRS      SRSConfig      `yaml:"srs"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min" env:"SERVER_RATE_LIMIT_PER_MIN" env-default:"120"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// IdentityConfig holds the trusted-header identity settings. The service
// runs behind a gateway that authenticates users and forwards their ID.
type IdentityConfig struct {
	UserHeader string `yaml:"user_header" env:"IDENTITY_USER_HEADER" env-default:"X-User-ID"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-User-ID"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// SRSConfig holds spaced-repetition scheduling parameters.
type SRSConfig struct {
	MasteryIntervalDays int     `yaml:"mastery_interval_days" env:"SRS_MASTERY_INTERVAL_DAYS" env-default:"21"`
	LearningInterval    int     `yaml:"learning_interval"     env:"SRS_LEARNING_INTERVAL"     env-default:"1"`
	GraduatingInterval  int     `yaml:"graduating_interval"   env:"SRS_GRADUATING_INTERVAL"   env-default:"6"`
	EasePenalty         float64 `yaml:"ease_penalty"          env:"SRS_EASE_PENALTY"          env-default:"0.2"`
	EaseReward          float64 `yaml:"ease_reward"           env:"SRS_EASE_REWARD"           env-default:"0.1"`
	MaxSessionSize      int     `yaml:"max_session_size"      env:"SRS_MAX_SESSION_SIZE"      env-default:"20"`
	NewCardsPerDay      int     `yaml:"new_cards_per_day"     env:"SRS_NEW_CARDS_DAY"         env-default:"10"`
	AdaptiveWindow      int     `yaml:"adaptive_window"       env:"SRS_ADAPTIVE_WINDOW"       env-default:"10"`
	PromotionThreshold  float64 `yaml:"promotion_threshold"   env:"SRS_PROMOTION_THRESHOLD"   env-default:"0.85"`
}

// ToDomain converts the config section to the domain parameter set the
// study service consumes.
func (s SRSConfig) ToDomain() domain.SRSConfig {
	return domain.SRSConfig{
		MasteryIntervalDays: s.MasteryIntervalDays,
		LearningInterval:    s.LearningInterval,
		GraduatingInterval:  s.GraduatingInterval,
		EasePenalty:         s.EasePenalty,
		EaseReward:          s.EaseReward,
		MaxSessionSize:      s.MaxSessionSize,
		NewCardsPerDay:      s.NewCardsPerDay,
		AdaptiveWindow:      s.AdaptiveWindow,
		PromotionThreshold:  s.PromotionThreshold,
	}
}
