package config

import (
	"log"
	"os"

	"github.com/katkatprog/sleepApp-sub000/pkg/cache"
	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
	"github.com/katkatprog/sleepApp-sub000/pkg/logger"
	"github.com/katkatprog/sleepApp-sub000/pkg/storage"
	"github.com/katkatprog/sleepApp-sub000/pkg/util"
)

// Config carries every recognized environment option. It is constructed
// once by Load and passed explicitly; nothing in the repository reads
// the environment after startup.
type Config struct {
	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`
	Addr     string `env:"ADDR"`
	Mode     string `env:"MODE"`

	Log   logger.LogConfig
	Cache cache.Config
	Minio storage.MinioConfig

	// Generative text service (OpenAI-compatible).
	LLMApiKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL"`
	LLMModel   string `env:"LLM_MODEL"`

	// Phonetic transform service. Empty disables normalization.
	TransformServiceURL string `env:"TRANSFORM_SERVICE_URL"`

	// Asynchronous speech-synthesis service.
	TTSServiceURL string `env:"TTS_SERVICE_URL"`
	TTSApiKey     string `env:"TTS_API_KEY"`

	RecordsPerBatch  int `env:"RECORDS_PER_BATCH"`
	BatchExecHourGMT int `env:"BATCH_EXEC_HOUR_GMT"`

	RateLimit string `env:"RATE_LIMIT"`
}

const (
	DefaultRecordsPerBatch  = 70
	DefaultBatchExecHourGMT = 12
)

// Load reads the .env file for APP_ENV and returns the assembled
// configuration.
func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := &Config{
		DBDriver: util.GetEnv("DB_DRIVER"),
		DSN:      util.GetEnv("DSN"),
		Addr:     util.GetEnvDefault("ADDR", ":8080"),
		Mode:     util.GetEnvDefault("MODE", "debug"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Cache: cache.Config{
			Type: util.GetEnvDefault("CACHE_TYPE", "gocache"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
			},
		},
		Minio: storage.MinioConfig{
			Endpoint:  util.GetEnv("MINIO_ENDPOINT"),
			AccessKey: util.GetEnv("MINIO_ACCESS_KEY"),
			SecretKey: util.GetEnv("MINIO_SECRET_KEY"),
			Bucket:    util.GetEnv("MINIO_BUCKET"),
			UseSSL:    util.GetBoolEnv("MINIO_USE_SSL"),
			BaseURL:   util.GetEnv("MINIO_PUBLIC_BASE"),
		},
		LLMApiKey:           util.GetEnv("LLM_API_KEY"),
		LLMBaseURL:          util.GetEnv("LLM_BASE_URL"),
		LLMModel:            util.GetEnvDefault("LLM_MODEL", "gpt-4o-mini"),
		TransformServiceURL: util.GetEnv("TRANSFORM_SERVICE_URL"),
		TTSServiceURL:       util.GetEnv("TTS_SERVICE_URL"),
		TTSApiKey:           util.GetEnv("TTS_API_KEY"),
		RecordsPerBatch:     int(util.GetIntEnvDefault("RECORDS_PER_BATCH", DefaultRecordsPerBatch)),
		BatchExecHourGMT:    int(util.GetIntEnvDefault("BATCH_EXEC_HOUR_GMT", DefaultBatchExecHourGMT)),
		RateLimit:           util.GetEnvDefault("RATE_LIMIT", "30-M"),
	}
	return cfg, nil
}

// ValidateBatch checks the options the batch binary cannot run without.
// Missing generation or synthesis credentials are fatal at startup, not
// mid-run.
func (c *Config) ValidateBatch() error {
	if c.LLMApiKey == "" {
		return errors.New("LLM_API_KEY is required")
	}
	if c.TTSServiceURL == "" || c.TTSApiKey == "" {
		return errors.New("TTS_SERVICE_URL and TTS_API_KEY are required")
	}
	if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
		return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required")
	}
	if c.BatchExecHourGMT < 0 || c.BatchExecHourGMT > 23 {
		return errors.Errorf("BATCH_EXEC_HOUR_GMT out of range: %d", c.BatchExecHourGMT)
	}
	if c.RecordsPerBatch <= 0 {
		return errors.Errorf("RECORDS_PER_BATCH must be positive: %d", c.RecordsPerBatch)
	}
	return nil
}

// ValidateServer checks the options the live API cannot run without.
func (c *Config) ValidateServer() error {
	if c.Addr == "" {
		return errors.New("ADDR is required")
	}
	if c.BatchExecHourGMT < 0 || c.BatchExecHourGMT > 23 {
		return errors.Errorf("BATCH_EXEC_HOUR_GMT out of range: %d", c.BatchExecHourGMT)
	}
	if c.RecordsPerBatch <= 0 {
		return errors.Errorf("RECORDS_PER_BATCH must be positive: %d", c.RecordsPerBatch)
	}
	return nil
}
