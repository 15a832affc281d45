package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	GeminiAPIKey string
	Models       ModelConfig

	DataDir       string
	PostgresDSN   string
	SaveDebounce  time.Duration
	Media         MediaConfig
}

type ModelConfig struct {
	Text  string
	Image string
	Video string
}

type MediaConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env, flags and environment. The Gemini key is checked here,
// before any network call is attempted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8082", "server port")
	dataDir := flag.String("data", "./data", "workspace data directory")
	flag.Parse()

	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	cfg := &Config{
		Port:         *port,
		Env:          env,
		GeminiAPIKey: key,
		Models: ModelConfig{
			Text:  firstNonEmpty(os.Getenv("MODEL_TEXT"), "gemini-2.5-flash"),
			Image: firstNonEmpty(os.Getenv("MODEL_IMAGE"), "gemini-2.5-flash-image-preview"),
			Video: firstNonEmpty(os.Getenv("MODEL_VIDEO"), "veo-3.0-generate-001"),
		},
		DataDir:      firstNonEmpty(os.Getenv("DATA_DIR"), *dataDir),
		PostgresDSN:  strings.TrimSpace(os.Getenv("WORKSPACE_PG_DSN")),
		SaveDebounce: loadDebounce(),
		Media:        loadMediaConfig(env),
	}
	return cfg, nil
}

func loadDebounce() time.Duration {
	raw := strings.TrimSpace(os.Getenv("SAVE_DEBOUNCE_MS"))
	if raw == "" {
		return 500 * time.Millisecond
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func loadMediaConfig(env string) MediaConfig {
	endpoint := resolveMediaEndpoint(env)
	return MediaConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(os.Getenv("MEDIA_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(os.Getenv("MEDIA_S3_ACCESS_KEY"), os.Getenv("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(os.Getenv("MEDIA_S3_SECRET_KEY"), os.Getenv("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(os.Getenv("MEDIA_S3_BUCKET"), "remixcanvas-media"),
		UseSSL:    resolveMediaUseSSL(env),
	}
}

func resolveMediaEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("MEDIA_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("MEDIA_S3_ENDPOINT"))
}

func resolveMediaUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("MEDIA_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
