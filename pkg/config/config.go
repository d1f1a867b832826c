package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
	Orders       OrdersConfig
	Sessions     SessionsConfig
	Feedback     FeedbackConfig
	Idempotency  IdempotencyConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Orders.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEVA_APP_ENV" required:"true"`
	Port         string `envconfig:"MEVA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MEVA_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MEVA_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MEVA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"MEVA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MEVA_DB_DSN"`
	Driver string `envconfig:"MEVA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MEVA_DB_HOST"`
	Port     int    `envconfig:"MEVA_DB_PORT" default:"5432"`
	User     string `envconfig:"MEVA_DB_USER"`
	Password string `envconfig:"MEVA_DB_PASSWORD"`
	Name     string `envconfig:"MEVA_DB_NAME"`
	SSLMode  string `envconfig:"MEVA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEVA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEVA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEVA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEVA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEVA_REDIS_URL"`
	Address      string        `envconfig:"MEVA_REDIS_ADDR"`
	Password     string        `envconfig:"MEVA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEVA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEVA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEVA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEVA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEVA_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"MEVA_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEVA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEVA_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MEVA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type OrdersConfig struct {
	DefaultEstimatedMinutes int    `envconfig:"MEVA_ORDERS_DEFAULT_ESTIMATED_MINUTES" default:"20"`
	MaxTotalAmount          string `envconfig:"MEVA_ORDERS_MAX_TOTAL_AMOUNT" default:"100000"`
	MaxItemQuantity         int    `envconfig:"MEVA_ORDERS_MAX_ITEM_QUANTITY" default:"99"`
}

// MaxTotal returns the configured order ceiling as a decimal.
func (o OrdersConfig) MaxTotal() decimal.Decimal {
	value, err := decimal.NewFromString(o.MaxTotalAmount)
	if err != nil {
		return decimal.NewFromInt(100000)
	}
	return value
}

func (o OrdersConfig) validate() error {
	if _, err := decimal.NewFromString(o.MaxTotalAmount); err != nil {
		return fmt.Errorf("%s must be a decimal: %w", EnvOrdersMaxTotal, err)
	}
	if o.MaxItemQuantity <= 0 {
		return fmt.Errorf("%s must be positive", EnvOrdersMaxQuantity)
	}
	return nil
}

type SessionsConfig struct {
	TTL                   time.Duration `envconfig:"MEVA_SESSION_TTL" default:"4h"`
	MaxDevices            int           `envconfig:"MEVA_SESSION_MAX_DEVICES" default:"8"`
	HighOrderVolumeCount  int           `envconfig:"MEVA_SESSION_HIGH_ORDER_COUNT" default:"15"`
	HighOrderVolumeWindow time.Duration `envconfig:"MEVA_SESSION_HIGH_ORDER_WINDOW" default:"10m"`
	OrderRateLimit        int           `envconfig:"MEVA_SESSION_ORDER_RATE_LIMIT" default:"10"`
	OrderRateLimitWindow  time.Duration `envconfig:"MEVA_SESSION_ORDER_RATE_WINDOW" default:"1m"`
	StartRateLimit        int           `envconfig:"MEVA_SESSION_START_RATE_LIMIT" default:"30"`
	StartRateWindow       time.Duration `envconfig:"MEVA_SESSION_START_RATE_WINDOW" default:"1m"`
}

type FeedbackConfig struct {
	RateLimit  int           `envconfig:"MEVA_FEEDBACK_RATE_LIMIT" default:"3"`
	RateWindow time.Duration `envconfig:"MEVA_FEEDBACK_RATE_WINDOW" default:"60s"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"MEVA_IDEMPOTENCY_TTL" default:"24h"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"MEVA_CRON_INTERVAL" default:"5m"`
	LockTTL    time.Duration `envconfig:"MEVA_CRON_LOCK_TTL" default:"4m"`
	JobTimeout time.Duration `envconfig:"MEVA_CRON_JOB_TIMEOUT" default:"2m"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = "file:meva.db?cache=shared"
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}
	db.DSN = u.String()
	return nil
}
