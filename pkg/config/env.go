package config

const (
	EnvPrefix = "SHOPOVERLAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	EnvAppEnv       = "SHOPOVERLAY_APP_ENV"
	EnvPort         = "SHOPOVERLAY_APP_PORT"
	EnvLogLevel     = "SHOPOVERLAY_LOG_LEVEL"
	EnvLogWarnStack = "SHOPOVERLAY_LOG_WARN_STACK"

	EnvHostBaseURL  = "SHOPOVERLAY_HOST_BASE_URL"
	EnvHostResource = "SHOPOVERLAY_HOST_RESOURCE"
	EnvHostTimeout  = "SHOPOVERLAY_HOST_TIMEOUT"
	EnvHostSecret   = "SHOPOVERLAY_HOST_SECRET"
	EnvHostIssuer   = "SHOPOVERLAY_HOST_ISSUER"

	EnvDBDriver = "SHOPOVERLAY_DB_DRIVER"
	EnvDBDSN    = "SHOPOVERLAY_DB_DSN"

	EnvRedisURL  = "SHOPOVERLAY_REDIS_URL"
	EnvRedisAddr = "SHOPOVERLAY_REDIS_ADDR"

	EnvCheckoutIdempotencyTTL = "SHOPOVERLAY_CHECKOUT_IDEMPOTENCY_TTL"
	EnvCheckoutSettleTimeout  = "SHOPOVERLAY_CHECKOUT_SETTLE_TIMEOUT"
	EnvCheckoutSaleFallback   = "SHOPOVERLAY_CHECKOUT_SALE_FALLBACK"

	EnvKeyClearCart  = "SHOPOVERLAY_KEY_CLEAR_CART"
	EnvKeyToggleMode = "SHOPOVERLAY_KEY_TOGGLE_MODE"
	EnvKeyDismiss    = "SHOPOVERLAY_KEY_DISMISS"

	EnvAutoMigrate = "SHOPOVERLAY_AUTO_MIGRATE"
	EnvReceipts    = "SHOPOVERLAY_RECEIPTS"
)
