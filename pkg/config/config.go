package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"CARGOCHAIN_APP_ENV" required:"true"`
	Port         string `envconfig:"CARGOCHAIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARGOCHAIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARGOCHAIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARGOCHAIN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARGOCHAIN_DB_DSN"`
	Driver string `envconfig:"CARGOCHAIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARGOCHAIN_DB_HOST"`
	LegacyPort     int    `envconfig:"CARGOCHAIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARGOCHAIN_DB_USER"`
	LegacyPassword string `envconfig:"CARGOCHAIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARGOCHAIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARGOCHAIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARGOCHAIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARGOCHAIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARGOCHAIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARGOCHAIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARGOCHAIN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARGOCHAIN_REDIS_ADDR"`
	Password     string        `envconfig:"CARGOCHAIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARGOCHAIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARGOCHAIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARGOCHAIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARGOCHAIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARGOCHAIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARGOCHAIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CARGOCHAIN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARGOCHAIN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CARGOCHAIN_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARGOCHAIN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARGOCHAIN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARGOCHAIN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARGOCHAIN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARGOCHAIN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow             time.Duration `envconfig:"CARGOCHAIN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit    int           `envconfig:"CARGOCHAIN_AUTH_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
	LoginIPLimit            int           `envconfig:"CARGOCHAIN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow          time.Duration `envconfig:"CARGOCHAIN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIdentifierLimit int           `envconfig:"CARGOCHAIN_AUTH_RATE_LIMIT_REGISTER_IDENTIFIER_LIMIT" default:"3"`
	RegisterIPLimit         int           `envconfig:"CARGOCHAIN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite    bool `envconfig:"CARGOCHAIN_USE_SQLITE" default:"false"`
	AutoMigrate  bool `envconfig:"CARGOCHAIN_AUTO_MIGRATE" default:"false"`
	SeedDemoData bool `envconfig:"CARGOCHAIN_SEED_DEMO_DATA" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CARGOCHAIN_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CARGOCHAIN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CARGOCHAIN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BookingTopic  string `envconfig:"CARGOCHAIN_PUBSUB_BOOKING_TOPIC" default:"cc-booking-events"`
	TrackingTopic string `envconfig:"CARGOCHAIN_PUBSUB_TRACKING_TOPIC" default:"cc-tracking-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CARGOCHAIN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CARGOCHAIN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CARGOCHAIN_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
