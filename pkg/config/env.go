package config

// EnvPrefix is passed to envconfig; every field carries an explicit envconfig tag.
const EnvPrefix = "LIBRARY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "LIBRARY_APP_ENV"
	EnvPort                   = "LIBRARY_APP_PORT"
	EnvDBDSN                  = "LIBRARY_DB_DSN"
	EnvDBHost                 = "LIBRARY_DB_HOST"
	EnvDBUser                 = "LIBRARY_DB_USER"
	EnvDBName                 = "LIBRARY_DB_NAME"
	EnvUseSQLite              = "LIBRARY_USE_SQLITE"
	EnvRedisURL               = "LIBRARY_REDIS_URL"
	EnvJWTSecret              = "LIBRARY_JWT_SECRET"
	EnvJWTIssuer              = "LIBRARY_JWT_ISSUER"
	EnvJWTExpMins             = "LIBRARY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "LIBRARY_REFRESH_TOKEN_TTL_MINUTES"
	EnvLoanPeriodDays         = "LIBRARY_LOAN_PERIOD_DAYS"
	EnvMaxRenewals            = "LIBRARY_MAX_RENEWALS"
	EnvDefaultDailyFine       = "LIBRARY_DEFAULT_DAILY_FINE"
	EnvDueSoonDays            = "LIBRARY_DUE_SOON_DAYS"
	EnvReminderMinInterval    = "LIBRARY_REMINDER_MIN_INTERVAL"
	EnvSendgridAPIKey         = "LIBRARY_SENDGRID_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
