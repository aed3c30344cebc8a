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
	DB            DBConfig
	Redis         RedisConfig
	Match         MatchConfig
	RollRateLimit RollRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
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
	Env          string `envconfig:"DICEMATCH_APP_ENV" required:"true"`
	Port         string `envconfig:"DICEMATCH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DICEMATCH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DICEMATCH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DICEMATCH_DB_DSN"`
	Driver string `envconfig:"DICEMATCH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DICEMATCH_DB_HOST"`
	LegacyPort     int    `envconfig:"DICEMATCH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DICEMATCH_DB_USER"`
	LegacyPassword string `envconfig:"DICEMATCH_DB_PASSWORD"`
	LegacyName     string `envconfig:"DICEMATCH_DB_NAME"`
	LegacySSLMode  string `envconfig:"DICEMATCH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DICEMATCH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DICEMATCH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DICEMATCH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DICEMATCH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DICEMATCH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DICEMATCH_REDIS_ADDR"`
	Password     string        `envconfig:"DICEMATCH_REDIS_PASSWORD"`
	DB           int           `envconfig:"DICEMATCH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DICEMATCH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DICEMATCH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DICEMATCH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DICEMATCH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DICEMATCH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// MatchConfig tunes the roll-matching engine.
type MatchConfig struct {
	// Horizon is how long a roll stays eligible as a match candidate.
	Horizon time.Duration `envconfig:"DICEMATCH_MATCH_HORIZON" default:"5m"`
	// CandidateLimit caps how many candidates a single resolve ranks.
	CandidateLimit int `envconfig:"DICEMATCH_MATCH_CANDIDATE_LIMIT" default:"50"`
}

type RollRateLimitConfig struct {
	Window       time.Duration `envconfig:"DICEMATCH_ROLL_RATE_LIMIT_WINDOW" default:"1m"`
	PerUserLimit int           `envconfig:"DICEMATCH_ROLL_RATE_LIMIT_PER_USER" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DICEMATCH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DICEMATCH_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DICEMATCH_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	MatchTopic string `envconfig:"DICEMATCH_PUBSUB_MATCH_TOPIC" default:"dm-match-events"`
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
