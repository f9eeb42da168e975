package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/studio"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	// GatewayURL points the bot and CLI at a running web server instead of
	// calling Gemini in-process.
	GatewayURL string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	ListenAddr      string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration

	MediaGroupDebounce time.Duration
	MaxConcurrent      int
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration

	GeminiBaseURL    string
	GeminiAPIVersion string
	AnalysisModel    string
	ImageModel       string
	EditModel        string
	// EditModels is the editImage allow-list; EditModel is always first.
	EditModels []string

	Helmet2Strategy studio.Strategy
	PlaceholderSize int
	SessionTTL      time.Duration
	SweepInterval   time.Duration
}

// Load reads the environment shared by every binary. Component checks are
// done by ValidateBot and ValidateWeb.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:           strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:              getEnvBool("DEBUG", false),
		PreferIPv4:         getEnvBool("PREFER_IPV4", true),
		ListenAddr:         getEnv("LISTEN_ADDR", ""),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 25)) << 20,
		ShutdownTimeout:    time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		MediaGroupDebounce: time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
		MaxConcurrent:      getEnvInt("MAX_CONCURRENT", 4),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		GeminiBaseURL:      strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:   strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		AnalysisModel:      getEnv("GEMINI_ANALYSIS_MODEL", gemini.DefaultAnalysisModel),
		ImageModel:         getEnv("GEMINI_IMAGE_MODEL", gemini.DefaultImageModel),
		EditModel:          getEnv("GEMINI_EDIT_MODEL", gemini.DefaultEditModel),
		PlaceholderSize:    getEnvInt("PLACEHOLDER_SIZE", 512),
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		SweepInterval:      time.Duration(getEnvInt("SESSION_SWEEP_MINUTES", 10)) * time.Minute,
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.GatewayURL = strings.TrimSpace(os.Getenv("GATEWAY_URL"))

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":" + getEnv("PORT", "8080")
	}

	strategy, err := studio.ParseStrategy(os.Getenv("HELMET2_STRATEGY"))
	if err != nil {
		return Config{}, err
	}
	cfg.Helmet2Strategy = strategy

	cfg.EditModels = []string{cfg.EditModel}
	for _, m := range strings.Split(os.Getenv("GEMINI_EDIT_MODELS"), ",") {
		m = strings.TrimSpace(m)
		if m != "" && m != cfg.EditModel {
			cfg.EditModels = append(cfg.EditModels, m)
		}
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 25 << 20
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.PlaceholderSize < 64 {
		cfg.PlaceholderSize = 512
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = studio.DefaultSessionTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}

	return cfg, nil
}

func (c Config) ValidateBot() error {
	switch {
	case c.TelegramToken == "":
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	case c.GeminiAPIKey == "" && c.GatewayURL == "":
		return errors.New("GEMINI_API_KEY or GATEWAY_URL is required")
	}
	return nil
}

func (c Config) ValidateWeb() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
