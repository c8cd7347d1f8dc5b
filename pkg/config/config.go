package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Quota        QuotaConfig
	Gemini       GeminiConfig
	Storage      StorageConfig
	Jobs         JobsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"GENSTUDIO_APP_ENV" required:"true"`
	Port         string `envconfig:"GENSTUDIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GENSTUDIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GENSTUDIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GENSTUDIO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GENSTUDIO_DB_DSN"`
	Driver string `envconfig:"GENSTUDIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GENSTUDIO_DB_HOST"`
	LegacyPort     int    `envconfig:"GENSTUDIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GENSTUDIO_DB_USER"`
	LegacyPassword string `envconfig:"GENSTUDIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"GENSTUDIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"GENSTUDIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GENSTUDIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GENSTUDIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GENSTUDIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GENSTUDIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GENSTUDIO_REDIS_URL"`
	Address      string        `envconfig:"GENSTUDIO_REDIS_ADDR"`
	Password     string        `envconfig:"GENSTUDIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"GENSTUDIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GENSTUDIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GENSTUDIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GENSTUDIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GENSTUDIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GENSTUDIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GENSTUDIO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GENSTUDIO_JWT_ISSUER" default:"genstudio"`
	ExpirationMinutes int    `envconfig:"GENSTUDIO_JWT_EXPIRATION_MINUTES" default:"60"`
}

// QuotaConfig carries per-resource fixed-window limits and the counter backend
// selection. A limit of 0 denies every request for that resource; this mirrors
// the admin-facing "quota set to 0" behavior.
type QuotaConfig struct {
	Backend string `envconfig:"GENSTUDIO_QUOTA_BACKEND" default:"memory"`

	ImageHourly int `envconfig:"GENSTUDIO_QUOTA_IMAGE_HOURLY" default:"10"`
	ImageDaily  int `envconfig:"GENSTUDIO_QUOTA_IMAGE_DAILY" default:"100"`
	VideoHourly int `envconfig:"GENSTUDIO_QUOTA_VIDEO_HOURLY" default:"5"`
	VideoDaily  int `envconfig:"GENSTUDIO_QUOTA_VIDEO_DAILY" default:"50"`
	AudioHourly int `envconfig:"GENSTUDIO_QUOTA_SPEECH_HOURLY" default:"10"`
	AudioDaily  int `envconfig:"GENSTUDIO_QUOTA_SPEECH_DAILY" default:"100"`

	SweepInterval time.Duration `envconfig:"GENSTUDIO_QUOTA_SWEEP_INTERVAL" default:"10m"`
}

type GeminiConfig struct {
	APIKey  string `envconfig:"GENSTUDIO_GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GENSTUDIO_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`

	ImageModel  string `envconfig:"GENSTUDIO_GEMINI_IMAGE_MODEL" default:"gemini-2.5-flash-image"`
	VideoModel  string `envconfig:"GENSTUDIO_GEMINI_VIDEO_MODEL" default:"veo-3.1-fast-generate-preview"`
	SpeechModel string `envconfig:"GENSTUDIO_GEMINI_SPEECH_MODEL" default:"gemini-2.5-flash-preview-tts"`

	HTTPTimeout      time.Duration `envconfig:"GENSTUDIO_GEMINI_HTTP_TIMEOUT" default:"60s"`
	PollInterval     time.Duration `envconfig:"GENSTUDIO_GEMINI_POLL_INTERVAL" default:"10s"`
	MaxPollAttempts  int           `envconfig:"GENSTUDIO_GEMINI_MAX_POLL_ATTEMPTS" default:"60"`
	SubmitRetries    int           `envconfig:"GENSTUDIO_GEMINI_SUBMIT_RETRIES" default:"3"`
	SubmitRetryBase  time.Duration `envconfig:"GENSTUDIO_GEMINI_SUBMIT_RETRY_BASE" default:"500ms"`
}

type StorageConfig struct {
	Root          string        `envconfig:"GENSTUDIO_STORAGE_ROOT" default:".media-storage"`
	Backend       string        `envconfig:"GENSTUDIO_STORAGE_INDEX_BACKEND" default:"file"`
	RetentionDays int           `envconfig:"GENSTUDIO_STORAGE_RETENTION_DAYS" default:"30"`
	SweepInterval time.Duration `envconfig:"GENSTUDIO_STORAGE_SWEEP_INTERVAL" default:"24h"`
	SweepDelay    time.Duration `envconfig:"GENSTUDIO_STORAGE_SWEEP_DELAY" default:"30s"`
}

type JobsConfig struct {
	Backend        string        `envconfig:"GENSTUDIO_JOBS_BACKEND" default:"file"`
	SnapshotPath   string        `envconfig:"GENSTUDIO_JOBS_SNAPSHOT_PATH" default:".video-jobs/jobs.json"`
	CleanupHorizon time.Duration `envconfig:"GENSTUDIO_JOBS_CLEANUP_HORIZON" default:"48h"`
	SweepInterval  time.Duration `envconfig:"GENSTUDIO_JOBS_SWEEP_INTERVAL" default:"1h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GENSTUDIO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GENSTUDIO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GENSTUDIO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	JobEventsTopic string `envconfig:"GENSTUDIO_PUBSUB_JOB_EVENTS_TOPIC"`
}

// Enabled reports whether job lifecycle events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.JobEventsTopic) != ""
}

type BigQueryConfig struct {
	Dataset         string `envconfig:"GENSTUDIO_BIGQUERY_DATASET"`
	UsageEventsTable string `envconfig:"GENSTUDIO_BIGQUERY_USAGE_TABLE" default:"usage_events"`
}

// Enabled reports whether usage analytics should stream to BigQuery.
func (b BigQueryConfig) Enabled() bool {
	return strings.TrimSpace(b.Dataset) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GENSTUDIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GENSTUDIO_AUTO_MIGRATE" default:"false"`
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

	// A database is only required when a db-backed store is selected, so an
	// entirely unset config is left empty for the composition root to reject
	// if it actually needs a connection.
	if len(missing) == len(legacyDBEnvVars) {
		return nil
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
