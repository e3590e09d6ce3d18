package config

// EnvPrefix is passed to envconfig; individual fields carry fully qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "CARGOCHAIN_APP_ENV"
	EnvPort       = "CARGOCHAIN_APP_PORT"
	EnvDBDSN      = "CARGOCHAIN_DB_DSN"
	EnvDBHost     = "CARGOCHAIN_DB_HOST"
	EnvDBUser     = "CARGOCHAIN_DB_USER"
	EnvDBName     = "CARGOCHAIN_DB_NAME"
	EnvRedisURL   = "CARGOCHAIN_REDIS_URL"
	EnvJWTSecret  = "CARGOCHAIN_JWT_SECRET"
	EnvJWTIssuer  = "CARGOCHAIN_JWT_ISSUER"
	EnvJWTExpMins = "CARGOCHAIN_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
