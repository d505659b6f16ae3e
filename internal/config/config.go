package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Admin     AdminConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Export    ExportConfig
	MinIO     MinIOConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	FrontendURL string
	// TrustedProxies lists proxy addresses whose X-Forwarded-For is honoured
	// for the client IP. Empty means the socket address is used.
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	BodyLimit      int64
}

// StoreConfig selects the contact store implementation: "mongo" or "memory".
type StoreConfig struct {
	Driver string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type AdminConfig struct {
	Email        string
	Password     string
	PasswordHash string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// RateLimitConfig covers both the per-route window limiters (contact, login)
// and the optional global token-bucket throttle.
type RateLimitConfig struct {
	Enabled    bool
	UseRedis   bool
	RPS        float64
	Burst      int
	ContactMax int
	LoginMax   int
	Window     time.Duration
}

type ExportConfig struct {
	TimeZone string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("FRONTEND_URL", "http://localhost:3001")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017/portfolio")
	v.SetDefault("MONGODB_DATABASE", "portfolio")
	v.SetDefault("MONGODB_COLLECTION", "contacts")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_TTL_MINUTES", 1440)
	v.SetDefault("JWT_ISSUER", "portfolio-backend")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", true)
	v.SetDefault("CONTACT_RATE_LIMIT_MAX", 5)
	v.SetDefault("LOGIN_RATE_LIMIT_MAX", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_MINUTES", 15)
	v.SetDefault("EXPORT_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("MINIO_BUCKET", "portfolio-exports")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    v.GetString("SERVER_ENVIRONMENT"),
			FrontendURL:    v.GetString("FRONTEND_URL"),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			BodyLimit:      10 << 20,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Admin: AdminConfig{
			Email:        strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
			Password:     v.GetString("ADMIN_PASSWORD"),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
			Issuer: v.GetString("JWT_ISSUER"),
		},
		RateLimit: RateLimitConfig{
			Enabled:    v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:   v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:        v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:      v.GetInt("RATE_LIMIT_BURST"),
			ContactMax: v.GetInt("CONTACT_RATE_LIMIT_MAX"),
			LoginMax:   v.GetInt("LOGIN_RATE_LIMIT_MAX"),
			Window:     time.Duration(v.GetInt("RATE_LIMIT_WINDOW_MINUTES")) * time.Minute,
		},
		Export: ExportConfig{
			TimeZone: v.GetString("EXPORT_TIMEZONE"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Validate checks the settings the server cannot run without.
// Missing secrets are tolerated outside production so local runs work out of the box.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "mongo":
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_DRIVER=mongo"))
		}
		if c.MongoDB.Timeout <= 0 {
			errs = append(errs, errors.New("MONGODB_TIMEOUT must be positive"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW_MINUTES must be positive"))
	}
	if c.RateLimit.ContactMax <= 0 || c.RateLimit.LoginMax <= 0 {
		errs = append(errs, errors.New("rate limit maximums must be positive"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL_MINUTES must be positive"))
	}
	if c.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes in production"))
		}
		if c.Admin.Email == "" || (c.Admin.Password == "" && c.Admin.PasswordHash == "") {
			errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD or ADMIN_PASSWORD_HASH are required in production"))
		}
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
