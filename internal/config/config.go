package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Session   SessionConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Payment   PaymentConfig
	Courses   Catalog

	// runtime flags, set from the command line
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
	// PublicBaseURL is the externally reachable origin used to build gateway return URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
	// Path is the sqlite database file.
	Path string
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	Secure     bool   `mapstructure:"secure"`
}

type StorageConfig struct {
	Type          string        `mapstructure:"type"`
	LocalPath     string        `mapstructure:"local_path"`
	MinioEndpoint string        `mapstructure:"minio_endpoint"`
	MinioAccessID string        `mapstructure:"minio_access_key"`
	MinioSecret   string        `mapstructure:"minio_secret_key"`
	MinioBucket   string        `mapstructure:"minio_bucket"`
	MinioSecure   bool          `mapstructure:"minio_secure"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	OSSEndpoint   string        `mapstructure:"oss_endpoint"`
	OSSAccessKey  string        `mapstructure:"oss_access_key"`
	OSSSecretKey  string        `mapstructure:"oss_secret_key"`
	OSSBucket     string        `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// PaymentConfig holds the gateway endpoints and credentials. Credentials are
// only ever read from the environment (or a local .env file).
type PaymentConfig struct {
	Provider      string        `mapstructure:"provider"`
	AuthURL       string        `mapstructure:"auth_url"`
	BaseURL       string        `mapstructure:"base_url"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	ClientVersion string        `mapstructure:"client_version"`
	Timeout       time.Duration `mapstructure:"timeout"`

	MidtransServerKey  string `mapstructure:"midtrans_server_key"`
	MidtransProduction bool   `mapstructure:"midtrans_production"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_base_url", "http://127.0.0.1:8000")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "viksit.db")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("jwt.expire_hours", 24*14)
	v.SetDefault("session.cookie_name", "viksit_session")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("storage.presign_expiry", time.Hour)

	v.SetDefault("redis.port", 6379)

	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("payment.provider", "phonepe")
	v.SetDefault("payment.auth_url", "https://api-preprod.phonepe.com/apis/pg-sandbox")
	v.SetDefault("payment.base_url", "https://api-preprod.phonepe.com/apis/pg-sandbox")
	v.SetDefault("payment.client_version", "1")
	v.SetDefault("payment.timeout", 15*time.Second)
}

// LoadConfig reads config.yaml from path (the file is optional), applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("VIKSIT")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.public_base_url", "PUBLIC_BASE_URL")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Payment gateway
	v.BindEnv("payment.provider", "PAYMENT_PROVIDER")
	v.BindEnv("payment.auth_url", "PAYMENT_AUTH_URL")
	v.BindEnv("payment.base_url", "PAYMENT_BASE_URL")
	v.BindEnv("payment.client_id", "PAYMENT_CLIENT_ID")
	v.BindEnv("payment.client_secret", "PAYMENT_CLIENT_SECRET")
	v.BindEnv("payment.client_version", "PAYMENT_CLIENT_VERSION")
	v.BindEnv("payment.midtrans_server_key", "MIDTRANS_SERVER_KEY")
	v.BindEnv("payment.midtrans_production", "MIDTRANS_PRODUCTION")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	defaults := DefaultCatalog()
	if len(cfg.Courses.Items) == 0 {
		cfg.Courses.Items = defaults.Items
	}
	if cfg.Courses.Default == (Pricing{}) {
		cfg.Courses.Default = defaults.Default
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

func (c *Config) Validate() error {
	if c.IsRelease() && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	if !c.IsRelease() && c.JWT.Secret == "" {
		c.JWT.Secret = "dev-only-secret-change-me-dev-only-secret"
	}

	switch c.Payment.Provider {
	case "phonepe":
		if c.IsRelease() && (c.Payment.ClientID == "" || c.Payment.ClientSecret == "") {
			return errors.New("PAYMENT_CLIENT_ID and PAYMENT_CLIENT_SECRET are required in release mode")
		}
	case "midtrans":
		if c.IsRelease() && c.Payment.MidtransServerKey == "" {
			return errors.New("MIDTRANS_SERVER_KEY is required in release mode")
		}
	default:
		return fmt.Errorf("unknown payment provider %q", c.Payment.Provider)
	}

	return c.Courses.Validate()
}
