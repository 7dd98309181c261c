package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "orderdesk"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "ORDERDESK_APP_ENV"
	EnvDBDSN  = "ORDERDESK_DB_DSN"
	EnvDBHost = "ORDERDESK_DB_HOST"
	EnvDBUser = "ORDERDESK_DB_USER"
	EnvDBName = "ORDERDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	FeatureFlags FeatureFlagsConfig
	Wallet       WalletConfig
	Bonus        BonusConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ORDERDESK_APP_ENV" required:"true"`
	Port         string   `envconfig:"ORDERDESK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"ORDERDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ORDERDESK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ORDERDESK_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERDESK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERDESK_DB_DSN"`
	Driver string `envconfig:"ORDERDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERDESK_DB_USER"`
	LegacyPassword string `envconfig:"ORDERDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AuthConfig configures service-token verification for the two trusted
// callers: the chat bot and the operator console.
type AuthConfig struct {
	Secret            string `envconfig:"ORDERDESK_AUTH_SECRET" required:"true"`
	Issuer            string `envconfig:"ORDERDESK_AUTH_ISSUER" default:"orderdesk"`
	ExpirationMinutes int    `envconfig:"ORDERDESK_AUTH_TOKEN_EXPIRATION_MINUTES" default:"60"`
}

// TokenTTL returns the configured token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(a.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ORDERDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ORDERDESK_AUTO_MIGRATE" default:"false"`
}

// WalletConfig bounds how much of an order's price internal balance may cover.
type WalletConfig struct {
	MaxCoveragePercent int `envconfig:"ORDERDESK_WALLET_MAX_COVERAGE_PERCENT" default:"50"`
}

// BonusConfig sets the fixed credits granted on order milestones.
type BonusConfig struct {
	OrderCreationBonus int64 `envconfig:"ORDERDESK_BONUS_ORDER_CREATION" default:"10000"`
	ReferralBonus      int64 `envconfig:"ORDERDESK_BONUS_REFERRAL" default:"15000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ORDERDESK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ORDERDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ORDERDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderEventsTopic     string `envconfig:"ORDERDESK_PUBSUB_ORDER_EVENTS_TOPIC" default:"od-order-events"`
	PaymentEventsTopic   string `envconfig:"ORDERDESK_PUBSUB_PAYMENT_EVENTS_TOPIC" default:"od-payment-events"`
	BalanceEventsTopic   string `envconfig:"ORDERDESK_PUBSUB_BALANCE_EVENTS_TOPIC" default:"od-balance-events"`
	NotificationTopic    string `envconfig:"ORDERDESK_PUBSUB_NOTIFICATION_TOPIC" default:"od-notification-events"`
	NotificationsEnabled bool   `envconfig:"ORDERDESK_PUBSUB_NOTIFICATIONS_ENABLED" default:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ORDERDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ORDERDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ORDERDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
