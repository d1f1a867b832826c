package config

const (
	EnvPrefix = "MEVA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv            = "MEVA_APP_ENV"
	EnvPort              = "MEVA_APP_PORT"
	EnvDBDSN             = "MEVA_DB_DSN"
	EnvDBHost            = "MEVA_DB_HOST"
	EnvDBUser            = "MEVA_DB_USER"
	EnvDBName            = "MEVA_DB_NAME"
	EnvRedisURL          = "MEVA_REDIS_URL"
	EnvUseSQLite         = "MEVA_USE_SQLITE"
	EnvCORSOrigins       = "MEVA_CORS_ALLOWED_ORIGINS"
	EnvOrdersMaxTotal    = "MEVA_ORDERS_MAX_TOTAL_AMOUNT"
	EnvOrdersMaxQuantity = "MEVA_ORDERS_MAX_ITEM_QUANTITY"
	EnvSessionTTL        = "MEVA_SESSION_TTL"
	EnvFeedbackRateLimit = "MEVA_FEEDBACK_RATE_LIMIT"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
