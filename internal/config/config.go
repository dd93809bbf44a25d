package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Breaker   BreakerConfig   `mapstructure:"breaker"   validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the access token lifetime. The default of
	// 10080 minutes (7 days) suits the web client; shorter policies are a
	// config change only.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// BcryptCost is the work factor used when hashing passwords.
	// Zero means bcrypt.DefaultCost.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"gte=0,lte=31"`
}

// BreakerConfig contains circuit breaker settings for the persistence layer.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures after which
	// the circuit opens.
	FailureThreshold int `mapstructure:"failure_threshold" validate:"required,gt=0"`

	// CooldownSeconds is how long the circuit stays open before a single
	// probe call is allowed through.
	CooldownSeconds int `mapstructure:"cooldown_seconds" validate:"required,gt=0"`
}

// RateLimitConfig contains per-client request rate limits.
type RateLimitConfig struct {
	// AuthPerMinute limits requests to the authentication endpoints.
	AuthPerMinute int `mapstructure:"auth_per_minute" validate:"required,gt=0"`

	// TasksPerMinute limits requests to the task endpoints.
	TasksPerMinute int `mapstructure:"tasks_per_minute" validate:"required,gt=0"`
}
