package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Host         HostConfig
	DB           DBConfig
	Redis        RedisConfig
	Checkout     CheckoutConfig
	Keys         KeysConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"SHOPOVERLAY_APP_ENV" required:"true"`
	Port         string   `envconfig:"SHOPOVERLAY_APP_PORT" default:"3044"`
	LogLevel     string   `envconfig:"SHOPOVERLAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SHOPOVERLAY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SHOPOVERLAY_CORS_ORIGINS" default:"http://localhost:3000,https://cfx-nui-shops"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// HostConfig describes how the bridge reaches the game client and how the
// client proves its identity when pushing state.
type HostConfig struct {
	BaseURL  string        `envconfig:"SHOPOVERLAY_HOST_BASE_URL" required:"true"`
	Resource string        `envconfig:"SHOPOVERLAY_HOST_RESOURCE" default:"shops"`
	Timeout  time.Duration `envconfig:"SHOPOVERLAY_HOST_TIMEOUT" default:"10s"`
	Secret   string        `envconfig:"SHOPOVERLAY_HOST_SECRET" required:"true"`
	Issuer   string        `envconfig:"SHOPOVERLAY_HOST_ISSUER" default:"game-host"`
	TokenTTL time.Duration `envconfig:"SHOPOVERLAY_HOST_TOKEN_TTL" default:"12h"`
}

type DBConfig struct {
	Driver string `envconfig:"SHOPOVERLAY_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"SHOPOVERLAY_DB_DSN"`

	MaxOpenConns    int           `envconfig:"SHOPOVERLAY_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"SHOPOVERLAY_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPOVERLAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPOVERLAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether receipts are stored in an embedded SQLite file.
func (db DBConfig) IsSQLite() bool {
	return db.Driver == DBDriverSQLite
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPOVERLAY_REDIS_URL"`
	Address      string        `envconfig:"SHOPOVERLAY_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPOVERLAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPOVERLAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPOVERLAY_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"SHOPOVERLAY_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"SHOPOVERLAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPOVERLAY_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SHOPOVERLAY_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SHOPOVERLAY_CHECKOUT_IDEMPOTENCY_TTL" default:"10m"`
	SettleTimeout  time.Duration `envconfig:"SHOPOVERLAY_CHECKOUT_SETTLE_TIMEOUT" default:"30s"`
	SaleFallback   bool          `envconfig:"SHOPOVERLAY_CHECKOUT_SALE_FALLBACK" default:"true"`
	RateLimit      int           `envconfig:"SHOPOVERLAY_CHECKOUT_RATE_LIMIT" default:"30"`
	RateWindow     time.Duration `envconfig:"SHOPOVERLAY_CHECKOUT_RATE_WINDOW" default:"1m"`
}

// KeysConfig names the keyboard codes the overlay reacts to.
type KeysConfig struct {
	ClearCart  string `envconfig:"SHOPOVERLAY_KEY_CLEAR_CART" default:"Delete"`
	ToggleMode string `envconfig:"SHOPOVERLAY_KEY_TOGGLE_MODE" default:"Tab"`
	Dismiss    string `envconfig:"SHOPOVERLAY_KEY_DISMISS" default:"Escape"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPOVERLAY_AUTO_MIGRATE" default:"true"`
	Receipts    bool `envconfig:"SHOPOVERLAY_RECEIPTS" default:"true"`
}

func (db *DBConfig) normalize() error {
	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	switch db.Driver {
	case DBDriverSQLite:
		if db.DSN == "" {
			db.DSN = "file:shopoverlay.db?_foreign_keys=on"
		}
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
	return nil
}
