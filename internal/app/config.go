package app

import (
	"time"

	"github.com/yungbote/lifepilot-backend/internal/data/db"
	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/envutil"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

type ProviderConfig struct {
	Name  string
	Key   string
	Model string
	Quota int
}

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	DB db.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	CORSOrigins []string

	Providers         []ProviderConfig
	AIProviderTimeout time.Duration
	AIRotation        string

	NotifyEnabled  bool
	NotifyInterval time.Duration

	MetricsEnabled bool
	Otel           observability.OtelConfig
}

const defaultJWTSecret = "defaultsecret"

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:  envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Duration("REFRESH_TOKEN_TTL", 24*time.Hour),

		DB: db.Config{
			Driver:        envutil.String("DB_DRIVER", db.DriverPostgres),
			DSN:           envutil.String("DATABASE_URL", ""),
			SQLitePath:    envutil.String("SQLITE_PATH", "lifepilot.db"),
			SlowThreshold: envutil.Duration("DB_SLOW_QUERY_THRESHOLD", time.Second),
		},

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		RedisChannel:  envutil.String("REDIS_CHANNEL", ""),

		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		// Order is the manager's priority order.
		Providers: []ProviderConfig{
			providerFromEnv("openai", "OPENAI"),
			providerFromEnv("gemini", "GEMINI"),
			providerFromEnv("huggingface", "HUGGINGFACE"),
			providerFromEnv("anthropic", "ANTHROPIC"),
		},
		AIProviderTimeout: envutil.Duration("AI_PROVIDER_TIMEOUT", 30*time.Second),
		AIRotation:        envutil.String("AI_ROTATION", "first"),

		NotifyEnabled:  envutil.Bool("NOTIFY_ENABLED", false),
		NotifyInterval: envutil.Duration("NOTIFY_INTERVAL", time.Minute),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "lifepilot-api"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
	}
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = db.PostgresDSN(
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			envutil.String("POSTGRES_NAME", "lifepilot"),
			envutil.String("POSTGRES_SSLMODE", "disable"),
		)
	}
	if log != nil {
		if cfg.JWTSecretKey == defaultJWTSecret {
			log.Warn("JWT_SECRET_KEY not set, using the development default")
		}
		log.Info("Config loaded", "db_driver", cfg.DB.Driver, "redis", cfg.RedisAddr != "", "ai_rotation", cfg.AIRotation)
	}
	return cfg
}

func providerFromEnv(name, prefix string) ProviderConfig {
	return ProviderConfig{
		Name:  name,
		Key:   envutil.String(prefix+"_API_KEY", ""),
		Model: envutil.String(prefix+"_MODEL", ""),
		Quota: envutil.Int(prefix+"_QUOTA", 0),
	}
}

// llmConfig leaves zero values for the adapter's own defaults.
func (p ProviderConfig) llmConfig() llm.Config {
	return llm.Config{APIKey: p.Key, Model: p.Model, QuotaLimit: p.Quota}
}
