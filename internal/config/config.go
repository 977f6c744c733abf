package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	"github.com/sngm3741/pcb-intake-services/api/internal/logger"
)

const (
	defaultMaxUploadBytes = 20 << 20
	maxAdminTokenTTL      = 24 * time.Hour
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                string
	AllowedOrigins      []string
	ServerLog           *zap.Logger
	LogLevel            string
	Timezone            string
	MaxUploadBytes      int64
	AllowedContentTypes []string

	AdminPasswordHash string
	JWTSecret         []byte
	JWTIssuer         string
	AdminTokenTTL     time.Duration

	StoreDriver          string
	StoreDSN             string
	MongoURI             string
	MongoDatabase        string
	SubmissionCollection string
	Timeout              time.Duration

	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3Folder          string
	S3PublicBaseURL   string
	S3UsePathStyle    bool
	S3EnsureBucket    bool

	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string
	NotifyTimeout    time.Duration
	AdminPanelURL    string
}

// Load reads environment variables and returns a fully populated Config.
// Secrets that are missing are left empty; the login endpoint reports them as a misconfiguration.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	v.SetDefault("JWT_ISSUER", "pcb-intake-api")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB", "pcb-intake")
	v.SetDefault("SUBMISSION_COLLECTION", "submissions")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "pcb-intake")
	v.SetDefault("S3_FOLDER", "pcb_uploads")
	v.SetDefault("S3_USE_PATH_STYLE", true)
	v.SetDefault("S3_ENSURE_BUCKET", false)
	v.SetDefault("TELEGRAM_API_URL", "https://api.telegram.org")

	logLevel := strings.TrimSpace(v.GetString("LOG_LEVEL"))
	serverLog, err := logger.New(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed (%v), falling back to info level\n", err)
		serverLog, err = logger.New("info")
		if err != nil {
			serverLog = zap.NewNop()
		}
	}

	maxUpload := v.GetInt64("MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	tokenTTL := durationOrDefault(v, "ADMIN_TOKEN_TTL", time.Hour)
	if tokenTTL > maxAdminTokenTTL {
		tokenTTL = maxAdminTokenTTL
	}

	cfg := Config{
		Addr:                 envOrDefault(v, "HTTP_ADDR", ":8080"),
		AllowedOrigins:       parseList(v, "API_ALLOWED_ORIGINS", []string{"*"}),
		ServerLog:            serverLog,
		LogLevel:             logLevel,
		Timezone:             envOrDefault(v, "TIMEZONE", "UTC"),
		MaxUploadBytes:       maxUpload,
		AllowedContentTypes:  parseList(v, "ALLOWED_CONTENT_TYPES", domain.DefaultAllowedContentTypes),
		AdminPasswordHash:    strings.TrimSpace(v.GetString("ADMIN_PASSWORD_HASH")),
		JWTSecret:            []byte(strings.TrimSpace(v.GetString("JWT_SECRET"))),
		JWTIssuer:            envOrDefault(v, "JWT_ISSUER", "pcb-intake-api"),
		AdminTokenTTL:        tokenTTL,
		StoreDriver:          strings.ToLower(envOrDefault(v, "STORE_DRIVER", "mongo")),
		StoreDSN:             strings.TrimSpace(v.GetString("STORE_DSN")),
		MongoURI:             envOrDefault(v, "MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:        envOrDefault(v, "MONGO_DB", "pcb-intake"),
		SubmissionCollection: envOrDefault(v, "SUBMISSION_COLLECTION", "submissions"),
		Timeout:              durationOrDefault(v, "STORE_CONNECT_TIMEOUT", 10*time.Second),
		S3Endpoint:           strings.TrimSpace(v.GetString("S3_ENDPOINT")),
		S3Region:             envOrDefault(v, "S3_REGION", "us-east-1"),
		S3AccessKeyID:        strings.TrimSpace(v.GetString("S3_ACCESS_KEY_ID")),
		S3SecretAccessKey:    strings.TrimSpace(v.GetString("S3_SECRET_ACCESS_KEY")),
		S3Bucket:             envOrDefault(v, "S3_BUCKET", "pcb-intake"),
		S3Folder:             strings.Trim(envOrDefault(v, "S3_FOLDER", "pcb_uploads"), "/ "),
		S3PublicBaseURL:      strings.TrimRight(strings.TrimSpace(v.GetString("S3_PUBLIC_BASE_URL")), "/"),
		S3UsePathStyle:       v.GetBool("S3_USE_PATH_STYLE"),
		S3EnsureBucket:       v.GetBool("S3_ENSURE_BUCKET"),
		TelegramBotToken:     strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:       strings.TrimSpace(v.GetString("TELEGRAM_CHAT_ID")),
		TelegramAPIURL:       strings.TrimRight(envOrDefault(v, "TELEGRAM_API_URL", "https://api.telegram.org"), "/"),
		NotifyTimeout:        durationOrDefault(v, "NOTIFY_TIMEOUT", 5*time.Second),
		AdminPanelURL:        strings.TrimSpace(v.GetString("ADMIN_PANEL_URL")),
	}

	cfg.ServerLog.Info("loaded config",
		zap.String("addr", cfg.Addr),
		zap.String("storeDriver", cfg.StoreDriver),
		zap.String("s3Bucket", cfg.S3Bucket),
		zap.String("s3Folder", cfg.S3Folder),
		zap.Bool("adminHashProvisioned", cfg.AdminPasswordHash != ""),
		zap.Bool("telegramEnabled", cfg.TelegramBotToken != "" && cfg.TelegramChatID != ""),
	)

	return cfg
}

func envOrDefault(v *viper.Viper, key, fallback string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return fallback
}

func durationOrDefault(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseList(v *viper.Viper, key string, fallback []string) []string {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return append([]string(nil), fallback...)
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return append([]string(nil), fallback...)
	}
	return values
}
