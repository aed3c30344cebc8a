package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// DICEMATCH_ tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DICEMATCH_DB_DSN"
	EnvDBHost = "DICEMATCH_DB_HOST"
	EnvDBUser = "DICEMATCH_DB_USER"
	EnvDBName = "DICEMATCH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
