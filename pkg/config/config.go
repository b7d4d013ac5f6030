package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"-" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	JWTSecret string        `mapstructure:"JWT_SECRET" validate:"required"`
	TokenTTL  time.Duration `mapstructure:"-" validate:"gt=0"`

	StoreDriver   string `mapstructure:"STORE_DRIVER" validate:"required,oneof=postgres mongo memory"`
	DatabaseURL   string `mapstructure:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	MongoURI      string `mapstructure:"MONGO_URI" validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE" validate:"required_if=StoreDriver mongo"`

	CORSAllowedOrigins []string `mapstructure:"-"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST" validate:"gte=0"`
	RedisAddr      string  `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword  string  `mapstructure:"REDIS_PASSWORD"`

	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3Region    string `mapstructure:"S3_REGION" validate:"required_with=S3Bucket"`
	S3Endpoint  string `mapstructure:"S3_ENDPOINT" validate:"omitempty,url"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY" validate:"required_with=S3Bucket"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY" validate:"required_with=S3Bucket"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

// IsDevelopment reports whether internal error detail may be exposed to clients.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

var validate = validator.New(validator.WithRequiredStructEnabled())

var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"PORT",
	"SHUTDOWN_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"JWT_SECRET",
	"JWT_EXPIRE",
	"STORE_DRIVER",
	"DATABASE_URL",
	"MONGO_URI",
	"MONGO_DATABASE",
	"CORS_ALLOWED_ORIGINS",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"S3_BUCKET",
	"S3_REGION",
	"S3_ENDPOINT",
	"S3_ACCESS_KEY",
	"S3_SECRET_KEY",
	"GOMAXPROCS",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:5000")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("JWT_EXPIRE", "30d")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("MONGO_DATABASE", "marketplace")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	d, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	c.ShutdownTimeout = d

	ttl, err := ParseLifetime(v.GetString("JWT_EXPIRE"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}
	c.TokenTTL = ttl

	if port := strings.TrimSpace(v.GetString("PORT")); port != "" {
		host, _, err := net.SplitHostPort(c.HTTPAddr)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_ADDR: %w", err)
		}
		c.HTTPAddr = net.JoinHostPort(host, port)
	}

	c.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	return &c, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// ParseLifetime parses a token lifetime. It accepts Go durations ("720h",
// "90m") and whole days with a "d" suffix ("30d").
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("lifetime must be positive, got %s", s)
	}
	return d, nil
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
