package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "microshop"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Catalog  CatalogUpstreamConfig
	CartSvc  CartUpstreamConfig
	Checkout CheckoutConfig
	Cron     CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MICROSHOP_APP_ENV" default:"dev"`
	Port         string `envconfig:"MICROSHOP_APP_PORT"`
	LogLevel     string `envconfig:"MICROSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MICROSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver     string `envconfig:"MICROSHOP_DB_DRIVER" default:"sqlite"`
	DSN        string `envconfig:"MICROSHOP_DB_DSN"`
	SQLitePath string `envconfig:"MICROSHOP_DB_SQLITE_PATH" default:"microshop.db"`

	MaxOpenConns    int           `envconfig:"MICROSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MICROSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MICROSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MICROSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"MICROSHOP_DB_AUTO_MIGRATE" default:"true"`
}

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverSQLite:
		if db.SQLitePath == "" {
			return fmt.Errorf("MICROSHOP_DB_SQLITE_PATH is required for the sqlite driver")
		}
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("MICROSHOP_DB_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	return nil
}

// RedisConfig is optional: with an empty URL and address the services run
// without the idempotency cache and cron lock.
type RedisConfig struct {
	URL          string        `envconfig:"MICROSHOP_REDIS_URL"`
	Address      string        `envconfig:"MICROSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"MICROSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MICROSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MICROSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MICROSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MICROSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MICROSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MICROSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

// CatalogUpstreamConfig locates the catalog service.
type CatalogUpstreamConfig struct {
	BaseURL string        `envconfig:"MICROSHOP_CATALOG_BASE_URL" default:"http://localhost:5001"`
	Timeout time.Duration `envconfig:"MICROSHOP_CATALOG_TIMEOUT" default:"5s"`
}

// CartUpstreamConfig locates the cart service.
type CartUpstreamConfig struct {
	BaseURL string        `envconfig:"MICROSHOP_CART_BASE_URL" default:"http://localhost:5002"`
	Timeout time.Duration `envconfig:"MICROSHOP_CART_TIMEOUT" default:"5s"`
}

type CheckoutConfig struct {
	DefaultOwner           string `envconfig:"MICROSHOP_DEFAULT_OWNER" default:"default-user"`
	DefaultShippingAddress string `envconfig:"MICROSHOP_DEFAULT_SHIPPING_ADDRESS" default:"123 Default Address"`
}

type CronConfig struct {
	Enabled           bool          `envconfig:"MICROSHOP_CRON_ENABLED" default:"true"`
	ReconcileInterval time.Duration `envconfig:"MICROSHOP_CRON_RECONCILE_INTERVAL" default:"1m"`
	ReconcileBatch    int           `envconfig:"MICROSHOP_CRON_RECONCILE_BATCH" default:"50"`
}
