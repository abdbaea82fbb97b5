package config

import (
	"errors"
	"os"
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

	Backend  BackendConfig
	Redis    RedisConfig
	Cache    CacheConfig
	CORS     CORSConfig
	Log      LogConfig
	Calendar CalendarConfig
	Export   ExportConfig
}

// BackendConfig points at the REST backend that owns all calendar data.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles the backend response cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	// PurgeOnStart drops every cached payload when the gateway boots, e.g.
	// after a backend release changed response shapes.
	PurgeOnStart bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CalendarConfig tunes month grid rendering.
type CalendarConfig struct {
	MaxEventsPerDay int
	Timezone        string
}

// ExportConfig controls file naming and serializer options.
type ExportConfig struct {
	Dir                string
	FilenameBase       string
	UIDDomain          string
	ProductID          string
	AllDayEndExclusive bool
	PageSize           int
	MaxPages           int
}

// Location resolves the configured calendar time zone, falling back to UTC.
func (c CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		BaseURL: resolveBaseURL(v.GetString("API_BASE_URL"), v.GetString("NEXT_PUBLIC_API_BASE_URL")),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled:      v.GetBool("ENABLE_CACHE"),
		TTL:          parseDuration(v.GetString("CALENDAR_CACHE_TTL"), 5*time.Minute),
		PurgeOnStart: v.GetBool("CACHE_PURGE_ON_START"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxPerDay := v.GetInt("CALENDAR_MAX_EVENTS_PER_DAY")
	if maxPerDay <= 0 {
		maxPerDay = 3
	}
	cfg.Calendar = CalendarConfig{
		MaxEventsPerDay: maxPerDay,
		Timezone:        v.GetString("CALENDAR_TIMEZONE"),
	}

	cfg.Export = ExportConfig{
		Dir:                v.GetString("EXPORT_DIR"),
		FilenameBase:       v.GetString("EXPORT_FILENAME_BASE"),
		UIDDomain:          v.GetString("EXPORT_UID_DOMAIN"),
		ProductID:          v.GetString("EXPORT_PRODID"),
		AllDayEndExclusive: v.GetBool("EXPORT_ALL_DAY_END_EXCLUSIVE"),
		PageSize:           v.GetInt("EXPORT_PAGE_SIZE"),
		MaxPages:           v.GetInt("EXPORT_MAX_PAGES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("NEXT_PUBLIC_API_BASE_URL", "")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CALENDAR_CACHE_TTL", "5m")
	v.SetDefault("CACHE_PURGE_ON_START", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CALENDAR_MAX_EVENTS_PER_DAY", 3)
	v.SetDefault("CALENDAR_TIMEZONE", "UTC")

	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_FILENAME_BASE", "academic_calendar")
	v.SetDefault("EXPORT_UID_DOMAIN", "calendar.seminary.edu")
	v.SetDefault("EXPORT_PRODID", "-//Seminary//Academic Calendar//EN")
	v.SetDefault("EXPORT_ALL_DAY_END_EXCLUSIVE", true)
	v.SetDefault("EXPORT_PAGE_SIZE", 100)
	v.SetDefault("EXPORT_MAX_PAGES", 50)
}

// DefaultBackendURL is used when neither API_BASE_URL nor NEXT_PUBLIC_API_BASE_URL is set.
const DefaultBackendURL = "http://localhost:8000/api"

func resolveBaseURL(primary, legacy string) string {
	for _, candidate := range []string{primary, legacy} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return strings.TrimRight(trimmed, "/")
		}
	}
	return DefaultBackendURL
}

func isMissingFile(err error) bool {
	return errors.Is(err, os.ErrNotExist)
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
