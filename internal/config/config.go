package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Auth        AuthConfig
	STT         STTConfig
	Diarization DiarizationConfig
	Limits      LimitsConfig
	Tools       ToolsConfig
	Worker      WorkerConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	RateLimitRPS   int
	RateLimitBurst int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string // empty disables bearer auth
}

type STTConfig struct {
	APIKey  string
	BaseURL string // OpenAI-compatible endpoint; point at whisper.cpp/LocalAI for local inference
	Model   string
}

type DiarizationConfig struct {
	BaseURL string
	Token   string
}

type LimitsConfig struct {
	MaxUploadMB        int
	MaxDurationSeconds int
	ResultTTLHours     int
}

type ToolsConfig struct {
	FFmpegPath  string
	FFprobePath string
	UploadDir   string
}

type WorkerConfig struct {
	Concurrency   int
	PreloadModels bool
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateLimitRPS, err := getEnvInt("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	rateLimitBurst, err := getEnvInt("RATE_LIMIT_BURST", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxUploadMB, err := getEnvInt("MAX_UPLOAD_SIZE_MB", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE_MB: %w", err)
	}

	maxDuration, err := getEnvInt("MAX_AUDIO_DURATION_SECONDS", 3600)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_AUDIO_DURATION_SECONDS: %w", err)
	}

	resultTTL, err := getEnvInt("RESULT_TTL_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid RESULT_TTL_HOURS: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			RateLimitRPS:   rateLimitRPS,
			RateLimitBurst: rateLimitBurst,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("API_JWT_SECRET", ""),
		},
		STT: STTConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("STT_BASE_URL", ""),
			Model:   getEnv("STT_MODEL", ""),
		},
		Diarization: DiarizationConfig{
			BaseURL: getEnv("DIARIZATION_BASE_URL", "http://localhost:8179"),
			Token:   getEnv("DIARIZATION_TOKEN", ""),
		},
		Limits: LimitsConfig{
			MaxUploadMB:        maxUploadMB,
			MaxDurationSeconds: maxDuration,
			ResultTTLHours:     resultTTL,
		},
		Tools: ToolsConfig{
			FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
			UploadDir:   getEnv("UPLOAD_DIR", ""),
		},
		Worker: WorkerConfig{
			Concurrency:   concurrency,
			PreloadModels: getEnvBool("PRELOAD_MODELS", false),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes is the upload size ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Limits.MaxUploadMB) * 1024 * 1024
}

// ResultTTL is the job retention window.
func (c *Config) ResultTTL() time.Duration {
	return time.Duration(c.Limits.ResultTTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
