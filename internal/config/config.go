package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tair/furniture-storefront/pkg/database"
)

// Environment selects the deployment-specific base URLs
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Storage backends understood by the repository factory
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendGorm     = "gorm"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Endpoints are the base URLs the storefront talks to and links to
type Endpoints struct {
	APIBaseURL      string `toml:"api_base_url"`
	FrontendBaseURL string `toml:"frontend_base_url"`
	ImageBaseURL    string `toml:"image_base_url"`
}

// ImageURL turns a stored image path into an absolute URL. Absolute URLs are
// returned unchanged; /images/ paths are frontend assets (the placeholder
// lives there) and everything else is served by the backend's storage.
func (e Endpoints) ImageURL(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case strings.HasPrefix(path, "/images/"):
		return strings.TrimRight(e.FrontendBaseURL, "/") + path
	default:
		return strings.TrimRight(e.ImageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
}

// StorageConfig selects and tunes the favorites key-value backend
type StorageConfig struct {
	Backend      string `toml:"backend"`       // memory, redis, gorm, postgres or sqlite
	Namespace    string `toml:"namespace"`     // redis key prefix
	SQLitePath   string `toml:"sqlite_path"`   // only used for backend=sqlite
	QuotaBytes   int    `toml:"quota_bytes"`   // only used for backend=memory; 0 is unlimited
	RegistrySize int    `toml:"registry_size"` // visitors kept hydrated in memory
}

// RedisConfig holds the connection settings shared by storage and the catalog cache
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// KafkaConfig configures the favorites event stream
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
	GroupID string   `toml:"group_id"` // prefix of the per-instance consumer group
}

// CatalogConfig tunes the backend REST client
type CatalogConfig struct {
	TimeoutSeconds      int  `toml:"timeout_seconds"`
	CacheEnabled        bool `toml:"cache_enabled"`
	CacheTTLSeconds     int  `toml:"cache_ttl_seconds"`
	SampleFallback      bool `toml:"sample_fallback"`
	BreakerMaxFailures  int  `toml:"breaker_max_failures"`
	BreakerResetSeconds int  `toml:"breaker_reset_seconds"`
}

func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c CatalogConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c CatalogConfig) BreakerReset() time.Duration {
	return time.Duration(c.BreakerResetSeconds) * time.Second
}

// RateLimitConfig throttles the contact form and admin login per visitor
type RateLimitConfig struct {
	Enabled       bool `toml:"enabled"`
	MaxRequests   int  `toml:"max_requests"`
	WindowSeconds int  `toml:"window_seconds"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// Config is the storefront service configuration
type Config struct {
	Environment    Environment     `toml:"environment"`
	ServiceName    string          `toml:"service_name"`
	HTTPPort       string          `toml:"http_port"`
	LogLevel       string          `toml:"log_level"`
	JaegerEndpoint string          `toml:"jaeger_endpoint"`
	Endpoints      Endpoints       `toml:"endpoints"`
	Storage        StorageConfig   `toml:"storage"`
	Database       database.Config `toml:"database"`
	Redis          RedisConfig     `toml:"redis"`
	Kafka          KafkaConfig     `toml:"kafka"`
	Catalog        CatalogConfig   `toml:"catalog"`
	RateLimit      RateLimitConfig `toml:"rate_limit"`
}

// IsDevelopment reports whether the console log writer should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// EndpointsFor returns the default base URLs of an environment
func EndpointsFor(env Environment) Endpoints {
	switch env {
	case Production:
		return Endpoints{
			APIBaseURL:      "https://api.furniture-storefront.com/api",
			FrontendBaseURL: "https://furniture-storefront.com",
			ImageBaseURL:    "https://api.furniture-storefront.com/storage",
		}
	case Staging:
		return Endpoints{
			APIBaseURL:      "https://staging-api.furniture-storefront.com/api",
			FrontendBaseURL: "https://staging.furniture-storefront.com",
			ImageBaseURL:    "https://staging-api.furniture-storefront.com/storage",
		}
	default:
		return Endpoints{
			APIBaseURL:      "http://localhost:8000/api",
			FrontendBaseURL: "http://localhost:3000",
			ImageBaseURL:    "http://localhost:8000/storage",
		}
	}
}

// Default returns the configuration of env before any file or environment overrides
func Default(env Environment) *Config {
	return &Config{
		Environment:    env,
		ServiceName:    "furniture-storefront",
		HTTPPort:       "8080",
		LogLevel:       "info",
		JaegerEndpoint: "http://localhost:14268/api/traces",
		Endpoints:      EndpointsFor(env),
		Storage: StorageConfig{
			Backend:      BackendMemory,
			Namespace:    "storefront",
			SQLitePath:   "favorites.db",
			RegistrySize: 1024,
		},
		Database: database.Config{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "storefrontdb",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "favorites-updated",
			GroupID: "storefront-popularity",
		},
		Catalog: CatalogConfig{
			TimeoutSeconds:      10,
			CacheTTLSeconds:     300,
			SampleFallback:      true,
			BreakerMaxFailures:  5,
			BreakerResetSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   10,
			WindowSeconds: 60,
		},
	}
}

// Decode overlays the TOML document read from r onto cfg. Keys missing from
// the document keep their current values.
func Decode(r io.Reader, cfg *Config) error {
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// ReadFromFile overlays the TOML file at path onto cfg
func ReadFromFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := Decode(f, cfg); err != nil {
		return fmt.Errorf("reading config from %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration: environment defaults, then the optional
// CONFIG_FILE, then individual environment variables.
func Load() (*Config, error) {
	cfg := Default(Environment(getEnv("ENVIRONMENT", string(Development))))

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := ReadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", cfg.JaegerEndpoint)

	cfg.Endpoints.APIBaseURL = getEnv("API_BASE_URL", cfg.Endpoints.APIBaseURL)
	cfg.Endpoints.FrontendBaseURL = getEnv("FRONTEND_BASE_URL", cfg.Endpoints.FrontendBaseURL)
	cfg.Endpoints.ImageBaseURL = getEnv("IMAGE_BASE_URL", cfg.Endpoints.ImageBaseURL)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Namespace = getEnv("STORAGE_NAMESPACE", cfg.Storage.Namespace)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.QuotaBytes = getEnvInt("STORAGE_QUOTA_BYTES", cfg.Storage.QuotaBytes)
	cfg.Storage.RegistrySize = getEnvInt("REGISTRY_SIZE", cfg.Storage.RegistrySize)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Kafka.Enabled = getEnvBool("KAFKA_ENABLED", cfg.Kafka.Enabled)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Catalog.TimeoutSeconds = getEnvInt("CATALOG_TIMEOUT_SECONDS", cfg.Catalog.TimeoutSeconds)
	cfg.Catalog.CacheEnabled = getEnvBool("CATALOG_CACHE_ENABLED", cfg.Catalog.CacheEnabled)
	cfg.Catalog.CacheTTLSeconds = getEnvInt("CATALOG_CACHE_TTL_SECONDS", cfg.Catalog.CacheTTLSeconds)
	cfg.Catalog.SampleFallback = getEnvBool("CATALOG_SAMPLE_FALLBACK", cfg.Catalog.SampleFallback)

	cfg.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.MaxRequests = getEnvInt("RATE_LIMIT_MAX_REQUESTS", cfg.RateLimit.MaxRequests)
	cfg.RateLimit.WindowSeconds = getEnvInt("RATE_LIMIT_WINDOW_SECONDS", cfg.RateLimit.WindowSeconds)
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendGorm, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.HTTPPort == "" {
		return fmt.Errorf("http port is required")
	}
	if c.Endpoints.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.Storage.RegistrySize <= 0 {
		return fmt.Errorf("registry size must be positive, got %d", c.Storage.RegistrySize)
	}
	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return fmt.Errorf("rate limit needs a positive max requests and window")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka is enabled but no brokers are configured")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
