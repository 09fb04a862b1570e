package config

// EnvPrefix namespaces every configuration variable.
const EnvPrefix = "ARMORY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "ARMORY_APP_ENV"
	EnvPort     = "ARMORY_APP_PORT"
	EnvDBDSN    = "ARMORY_DB_DSN"
	EnvDBHost   = "ARMORY_DB_HOST"
	EnvDBUser   = "ARMORY_DB_USER"
	EnvDBName   = "ARMORY_DB_NAME"
	EnvRedisURL = "ARMORY_REDIS_URL"

	EnvJWTSecret = "ARMORY_JWT_SECRET"
	EnvJWTIssuer = "ARMORY_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
