package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	// TrustedProxies lists proxy addresses or CIDRs whose forwarding headers are honoured
	// when resolving client IPs. Empty trusts none.
	TrustedProxies []string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Form     FormConfig
	Session  SessionConfig
	Content  ContentConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// FormConfig tunes the application wizard: local draft encryption, autosave and rate limiting.
type FormConfig struct {
	EncryptionKey        string
	EncryptionWorkFactor int
	LocalStorageDir      string
	AutosaveQuietPeriod  time.Duration
	MaxSubmissions       int
	SubmissionWindow     time.Duration
	MaxWorkSampleBytes   int64
	OpenApplicationTypes []string
}

// SessionConfig controls signed form session tokens and idle eviction.
type SessionConfig struct {
	Secret          string
	TTL             time.Duration
	CleanupInterval time.Duration
}

// ContentConfig points at an optional TOML catalog overriding the embedded site content.
type ContentConfig struct {
	File string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.TrustedProxies = splitAndTrim(v.GetString("TRUSTED_PROXIES"))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxWorkSample := v.GetInt64("FORM_MAX_WORK_SAMPLE_SIZE")
	if maxWorkSample <= 0 {
		maxWorkSample = 10 * 1024 * 1024
	}
	cfg.Form = FormConfig{
		EncryptionKey:        v.GetString("FORM_ENCRYPTION_KEY"),
		EncryptionWorkFactor: v.GetInt("FORM_ENCRYPTION_WORK_FACTOR"),
		LocalStorageDir:      v.GetString("FORM_LOCAL_STORAGE_DIR"),
		AutosaveQuietPeriod:  parseDuration(v.GetString("FORM_AUTOSAVE_QUIET_PERIOD"), 2*time.Second),
		MaxSubmissions:       v.GetInt("FORM_MAX_SUBMISSIONS"),
		SubmissionWindow:     parseDuration(v.GetString("FORM_SUBMISSION_WINDOW"), time.Hour),
		MaxWorkSampleBytes:   maxWorkSample,
		OpenApplicationTypes: splitAndTrim(v.GetString("FORM_OPEN_APPLICATION_TYPES")),
	}

	cfg.Session = SessionConfig{
		Secret:          v.GetString("FORM_SESSION_SECRET"),
		TTL:             parseDuration(v.GetString("FORM_SESSION_TTL"), 72*time.Hour),
		CleanupInterval: parseDuration(v.GetString("FORM_SESSION_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.Content = ContentConfig{File: v.GetString("CONTENT_FILE")}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ebhath")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "form:")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("FORM_ENCRYPTION_KEY", "ebhath-form-secure-key")
	v.SetDefault("FORM_ENCRYPTION_WORK_FACTOR", 10)
	v.SetDefault("FORM_LOCAL_STORAGE_DIR", "./var/forms")
	v.SetDefault("FORM_AUTOSAVE_QUIET_PERIOD", "2s")
	v.SetDefault("FORM_MAX_SUBMISSIONS", 3)
	v.SetDefault("FORM_SUBMISSION_WINDOW", "1h")
	v.SetDefault("FORM_MAX_WORK_SAMPLE_SIZE", 10*1024*1024)
	v.SetDefault("FORM_OPEN_APPLICATION_TYPES", "mentor")

	v.SetDefault("FORM_SESSION_SECRET", "dev_form_session_secret")
	v.SetDefault("FORM_SESSION_TTL", "72h")
	v.SetDefault("FORM_SESSION_CLEANUP_INTERVAL", "1h")

	v.SetDefault("CONTENT_FILE", "")
	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
