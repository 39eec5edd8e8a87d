package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Redis       RedisConfig
	S3          S3Config
	Pricing     PricingConfig
	Scheduler   SchedulerConfig
	Idempotency IdempotencyConfig
}

type ServerConfig struct {
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	GinMode     string `envconfig:"GIN_MODE" default:"debug"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"console"`
}

type DatabaseConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         string `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" default:"admin"`
	Password     string `envconfig:"DB_PASSWORD" default:"1234"`
	DBName       string `envconfig:"DB_NAME" default:"cartcore"`
	SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	AutoMigrate  bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"` // 개발용. 운영은 cartctl migrate
}

type JWTConfig struct {
	Secret             string        `envconfig:"JWT_SECRET" default:"your-secret-key"`
	AccessTokenExpiry  time.Duration `envconfig:"JWT_ACCESS_TOKEN_EXPIRY" default:"15m"`
	RefreshTokenExpiry time.Duration `envconfig:"JWT_REFRESH_TOKEN_EXPIRY" default:"168h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type S3Config struct {
	Region          string        `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	Bucket          string        `envconfig:"AWS_S3_BUCKET"`
	AccessKeyID     string        `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string        `envconfig:"AWS_SECRET_ACCESS_KEY"`
	BaseURL         string        `envconfig:"AWS_S3_BASE_URL"` // CloudFront or S3 direct URL
	PresignExpiry   time.Duration `envconfig:"AWS_S3_PRESIGN_EXPIRY" default:"1h"`
}

// PricingConfig holds the purchase pricing rules. Amounts are minor currency units.
type PricingConfig struct {
	StandardDeliveryFee   int64         `envconfig:"PRICING_DELIVERY_FEE" default:"2500"`
	FreeShippingThreshold int64         `envconfig:"PRICING_FREE_SHIPPING_THRESHOLD" default:"50000"`
	DeliveryLeadTime      time.Duration `envconfig:"PRICING_DELIVERY_LEAD_TIME" default:"48h"`
}

type SchedulerConfig struct {
	Enabled           bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
	StockReportSpec   string `envconfig:"SCHEDULER_STOCK_REPORT_SPEC" default:"0 9 * * *"`
	LowStockThreshold int    `envconfig:"SCHEDULER_LOW_STOCK_THRESHOLD" default:"5"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
		if cfg.Server.Environment == "development" {
			cfg.Server.LogLevel = "debug"
		}
	}

	return &cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as expected by lib/pq
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
