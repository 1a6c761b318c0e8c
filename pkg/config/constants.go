package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "STORELOCATOR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "STORELOCATOR_APP_ENV"
	EnvPort      = "STORELOCATOR_APP_PORT"
	EnvRedisURL  = "STORELOCATOR_REDIS_URL"
	EnvJWTSecret = "STORELOCATOR_JWT_SECRET"

	EnvDBDSN  = "STORELOCATOR_DB_DSN"
	EnvDBHost = "STORELOCATOR_DB_HOST"
	EnvDBUser = "STORELOCATOR_DB_USER"
	EnvDBName = "STORELOCATOR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
