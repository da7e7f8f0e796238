package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mwhitacre/leaguelive/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv              string
	ServiceName         string
	ServiceVersion      string
	HTTPAddr            string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	ShutdownTimeout     time.Duration
	ScoringTickInterval time.Duration
	ScoringCloseDelay   time.Duration
	ScoringTickWorkers  int
	AuthTokens          map[string]string
	LogLevel            logging.Level
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	if readTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_READ_TIMEOUT must be > 0")
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	if writeTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_WRITE_TIMEOUT must be > 0")
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}

	tickInterval, err := time.ParseDuration(getEnv("SCORING_TICK_INTERVAL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_TICK_INTERVAL: %w", err)
	}
	if tickInterval <= 0 {
		return Config{}, fmt.Errorf("SCORING_TICK_INTERVAL must be > 0")
	}

	closeDelay, err := time.ParseDuration(getEnv("SCORING_CLOSE_DELAY", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_CLOSE_DELAY: %w", err)
	}
	if closeDelay <= 0 {
		return Config{}, fmt.Errorf("SCORING_CLOSE_DELAY must be > 0")
	}

	tickWorkers, err := getEnvAsInt("SCORING_TICK_WORKERS", 16)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORING_TICK_WORKERS: %w", err)
	}
	if tickWorkers < 1 {
		return Config{}, fmt.Errorf("SCORING_TICK_WORKERS must be >= 1")
	}

	authTokens, err := parseTokenMap(getEnv("AUTH_TOKENS", defaultAuthTokens))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_TOKENS: %w", err)
	}
	if len(authTokens) == 0 {
		return Config{}, fmt.Errorf("AUTH_TOKENS cannot be empty")
	}

	return Config{
		AppEnv:              appEnv,
		ServiceName:         getEnv("APP_SERVICE_NAME", "leaguelive"),
		ServiceVersion:      getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:            getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:         readTimeout,
		WriteTimeout:        writeTimeout,
		ShutdownTimeout:     shutdownTimeout,
		ScoringTickInterval: tickInterval,
		ScoringCloseDelay:   closeDelay,
		ScoringTickWorkers:  tickWorkers,
		AuthTokens:          authTokens,
		LogLevel:            parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}, nil
}

// defaultAuthTokens covers the seeded leagues so a dev build works
// without any env at all.
const defaultAuthTokens = "token-commish:user-commish,token-user-1:user-1,token-user-2:user-2,token-user-3:user-3"

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseTokenMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid token item %q, expected token:user_id", item)
		}

		token := strings.TrimSpace(segments[0])
		userID := strings.TrimSpace(segments[1])
		if token == "" || userID == "" {
			return nil, fmt.Errorf("empty token or user id in item %q", item)
		}

		out[token] = userID
	}

	return out, nil
}
