package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	BlobDriver   string // fs|minio
	BlobBasePath string // fs root

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	CacheDriver   string // memory|redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PreviewTTL    time.Duration

	AuthSecret    string
	SessionCookie string
	SessionTTL    time.Duration
	CookieSecure  bool

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	LogLevel       string
	MetricsEnabled bool

	ChoiceTruncateLimit     int
	DistractorTruncateLimit int
	AbortOnFirstError       bool
}

// FromEnv reads the process environment, after merging a .env file from the
// working directory when one exists.
func FromEnv() Config {
	_ = godotenv.Load()

	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:         mode,
		HTTPAddr:     envOr("HTTP_ADDR", ":8080"),
		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BlobDriver:   envOr("BLOB_DRIVER", "fs"),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		MinioEndpoint:  envOr("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOr("MINIO_BUCKET", "trainer-reports"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", mode == ModeOnline),

		CacheDriver:   envOr("CACHE_DRIVER", "memory"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		PreviewTTL:    envDuration("PREVIEW_TTL", 30*time.Minute),

		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		SessionCookie: envOr("SESSION_COOKIE", "session"),
		SessionTTL:    envDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  envBool("COOKIE_SECURE", mode == ModeOnline),

		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://trainer.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		LogLevel:       envOr("LOG_LEVEL", "info"),
		MetricsEnabled: envBool("METRICS_ENABLED", true),

		ChoiceTruncateLimit:     envInt("CHOICE_TRUNCATE_LIMIT", 200),
		DistractorTruncateLimit: envInt("DISTRACTOR_TRUNCATE_LIMIT", 120),
		AbortOnFirstError:       envBool("ABORT_ON_FIRST_ERROR", false),
	}
}

// CORSOrigins is the allow-list for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
