package config

// EnvPrefix is the envconfig prefix for every GenStudio setting.
const EnvPrefix = "GENSTUDIO"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error messages).
const (
	EnvAppEnv   = "GENSTUDIO_APP_ENV"
	EnvPort     = "GENSTUDIO_APP_PORT"
	EnvDBDSN    = "GENSTUDIO_DB_DSN"
	EnvDBHost   = "GENSTUDIO_DB_HOST"
	EnvDBUser   = "GENSTUDIO_DB_USER"
	EnvDBName   = "GENSTUDIO_DB_NAME"
	EnvRedisURL = "GENSTUDIO_REDIS_URL"

	EnvGeminiAPIKey = "GENSTUDIO_GEMINI_API_KEY"
	EnvStorageRoot  = "GENSTUDIO_STORAGE_ROOT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
