package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database backends.
const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	PrinterService ServiceConfig
	Listing        ListingConfig
	Media          MediaConfig
	Features       FeatureFlags
	StoreID        string
	LogLevel       string
	Version        string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Backend      string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	AutoMigrate  bool
	// LocalPath is the SQLite file backing the local-storage backend.
	LocalPath string
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	OrdersTopic   string
	PaymentsTopic string
	ConsumerGroup string
}

type ServiceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ListingConfig drives the third-party listing publisher.
type ListingConfig struct {
	BaseURL    string
	ChromePath string
	Timeout    time.Duration
	Simulate   bool
	StepDelay  time.Duration
}

type MediaConfig struct {
	Dir      string
	MaxWidth int
	Quality  int
}

type FeatureFlags struct {
	EnableCatalogCaching  bool
	EnableOrderEvents     bool
	EnablePaymentEvents   bool
	EnableReceiptPrinting bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8082),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Backend:      getEnvString("DB_BACKEND", BackendLocal),
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "acme"),
			Password:     getEnvString("DB_PASSWORD", "acme"),
			Name:         getEnvString("DB_NAME", "acme_pos"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
			AutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", false),
			LocalPath:    getEnvString("DB_LOCAL_PATH", "pos.db"),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvStrings("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic:   getEnvString("KAFKA_ORDERS_TOPIC", "pos.orders"),
			PaymentsTopic: getEnvString("KAFKA_PAYMENTS_TOPIC", "pos.payments"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "pos-service"),
		},
		PrinterService: ServiceConfig{
			BaseURL: getEnvString("PRINTER_SERVICE_URL", ""),
			APIKey:  getEnvString("PRINTER_SERVICE_API_KEY", ""),
			Timeout: time.Duration(getEnvInt("PRINTER_SERVICE_TIMEOUT", 10)) * time.Second,
		},
		Listing: ListingConfig{
			BaseURL:    getEnvString("LISTING_BASE_URL", "https://jo.opensooq.com"),
			ChromePath: getEnvString("CHROME_PATH", ""),
			Timeout:    time.Duration(getEnvInt("LISTING_TIMEOUT", 120)) * time.Second,
			Simulate:   getEnvBool("LISTING_SIMULATE", true),
			StepDelay:  time.Duration(getEnvInt("LISTING_STEP_DELAY_MS", 0)) * time.Millisecond,
		},
		Media: MediaConfig{
			Dir:      getEnvString("MEDIA_DIR", "media"),
			MaxWidth: getEnvInt("MEDIA_MAX_WIDTH", 800),
			Quality:  getEnvInt("MEDIA_JPEG_QUALITY", 75),
		},
		Features: FeatureFlags{
			EnableCatalogCaching:  getEnvBool("FEATURE_CATALOG_CACHING", false),
			EnableOrderEvents:     getEnvBool("FEATURE_ORDER_EVENTS", false),
			EnablePaymentEvents:   getEnvBool("FEATURE_PAYMENT_EVENTS", false),
			EnableReceiptPrinting: getEnvBool("FEATURE_RECEIPT_PRINTING", true),
		},
		StoreID:  getEnvString("STORE_ID", "store_main"),
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		Version:  getEnvString("SERVICE_VERSION", "1.0.0"),
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

func getEnvStrings(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
