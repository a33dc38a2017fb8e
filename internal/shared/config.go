package shared

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string `mapstructure:"app_env"`
	HTTPAddr    string `mapstructure:"http_addr" validate:"required"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	MySQLDSN             string `mapstructure:"mysql_dsn" validate:"required"`
	MySQLMaxOpenConns    int    `mapstructure:"mysql_max_open_conns" validate:"gte=0"`
	MySQLMaxIdleConns    int    `mapstructure:"mysql_max_idle_conns" validate:"gte=0"`
	MySQLConnMaxLifetime int    `mapstructure:"mysql_conn_max_lifetime_seconds" validate:"gte=0"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPass     string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	NATSURL       string `mapstructure:"nats_url"`
	EventsBackend string `mapstructure:"events_backend" validate:"oneof=none redis nats"`

	// Empty paths select the built-in search conditions.
	ChairCatalogPath  string `mapstructure:"chair_catalog_path"`
	EstateCatalogPath string `mapstructure:"estate_catalog_path"`

	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`

	// Ingestor
	Workers          int     `mapstructure:"ingest_workers" validate:"gt=0"`
	BatchSize        int     `mapstructure:"ingest_batch_size" validate:"gt=0"`
	BatchesPerSecond float64 `mapstructure:"ingest_batches_per_second" validate:"gte=0"`
	ChairCSV         string  `mapstructure:"chair_csv"`
	EstateCSV        string  `mapstructure:"estate_csv"`
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.MySQLConnMaxLifetime) * time.Second
}

var defaults = map[string]any{
	"app_env":                         "prod",
	"http_addr":                       ":1323",
	"metrics_addr":                    ":9100",
	"mysql_dsn":                       "isucon:isucon@tcp(localhost:3306)/isuumo?parseTime=true&charset=utf8mb4&loc=UTC",
	"mysql_max_open_conns":            64,
	"mysql_max_idle_conns":            64,
	"mysql_conn_max_lifetime_seconds": 300,
	"redis_addr":                      "localhost:6379",
	"redis_password":                  "",
	"redis_db":                        0,
	"nats_url":                        "nats://localhost:4222",
	"events_backend":                  "none",
	"chair_catalog_path":              "",
	"estate_catalog_path":             "",
	"request_timeout_seconds":         10,
	"ingest_workers":                  4,
	"ingest_batch_size":               500,
	"ingest_batches_per_second":       0,
	"chair_csv":                       "",
	"estate_csv":                      "",
}

// Load reads defaults, then CONFIG_FILE if set, then the environment (APP_ENV, HTTP_ADDR, ...).
func Load() (Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.EventsBackend == "redis" && c.RedisAddr == "" {
		log.Warn().Msg("EVENTS_BACKEND=redis but REDIS_ADDR is empty")
	}
	return c, nil
}
