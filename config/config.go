package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Elastic   ElasticsearchConfig
	Metrics   MetricsConfig
	Scheduler SchedulerConfig
	Inventory InventoryConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	AutoMigrate     bool
}

// RedisConfig enables distributed item locks when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	FeedingTopic  string
	LowStockTopic string
	GroupID       string
	Enabled       bool
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Enabled   bool
}

type MetricsConfig struct {
	Addr    string
	Enabled bool
}

type SchedulerConfig struct {
	AuditSchedule  string
	ExpirySchedule string
	ExpiryWindow   time.Duration
}

type InventoryConfig struct {
	StorageDriver     string // postgres or memory
	ConsumptionPolicy string // single_lot or spill_over
	LedgerMaxAttempts int
	LockTTL           time.Duration
	LockAttempts      int
	LockBackoff       time.Duration
}

// LoadEnv reads .env when present and then the process environment.
func LoadEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8083"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "shelter"),
			Password:        getEnv("POSTGRES_PASSWORD", "shelter"),
			DBName:          getEnv("POSTGRES_DB", "shelter_inventory"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			AutoMigrate:     getEnvBool("POSTGRES_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			FeedingTopic:  getEnv("KAFKA_TOPIC_FEEDING", "feeding.events"),
			LowStockTopic: getEnv("KAFKA_TOPIC_LOW_STOCK", "inventory.low_stock"),
			GroupID:       getEnv("KAFKA_GROUP_INVENTORY", "shelter-inventory"),
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", false),
		},
		Metrics: MetricsConfig{
			Addr:    getEnv("METRICS_ADDR", ":9090"),
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
		Scheduler: SchedulerConfig{
			AuditSchedule:  getEnv("SCHEDULER_AUDIT", "@daily"),
			ExpirySchedule: getEnv("SCHEDULER_EXPIRY", "0 6 * * *"),
			ExpiryWindow:   getEnvDuration("SCHEDULER_EXPIRY_WINDOW", 30*24*time.Hour),
		},
		Inventory: InventoryConfig{
			StorageDriver:     getEnv("STORAGE_DRIVER", "postgres"),
			ConsumptionPolicy: getEnv("CONSUMPTION_POLICY", "single_lot"),
			LedgerMaxAttempts: getEnvInt("LEDGER_MAX_ATTEMPTS", 3),
			LockTTL:           getEnvDuration("LOCK_TTL", 5*time.Second),
			LockAttempts:      getEnvInt("LOCK_ATTEMPTS", 50),
			LockBackoff:       getEnvDuration("LOCK_BACKOFF", 100*time.Millisecond),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
