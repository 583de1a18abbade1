package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// S3Config describes where ingest files live. Endpoint and PathStyle are only
// needed when pointing at an S3-compatible store (minio, localstack).
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type ArangoConfig struct {
	Endpoint string `yaml:"endpoint"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// CheckpointConfig controls the durable ledger used for idempotency. When
// RedisAddr is empty an in-process ledger is used instead, which is fine for
// bounded one-shot runs but loses resumption state across restarts.
type CheckpointConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPoolSize int    `yaml:"redis_pool_size"`
	// WindowHours bounds the recent-processed set: entries older than
	// watermark - window are evicted. Files arriving later than that are
	// fetched again and rely on upsert idempotency downstream.
	WindowHours int `yaml:"window_hours"`
}

type RetryConfig struct {
	Attempts int `yaml:"attempts"`
	DelayMS  int `yaml:"delay_ms"`
}

type StorageConfig struct {
	Type string `yaml:"type"` // "arangodb" or "file"
	File struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"file"`
	Arango ArangoConfig `yaml:"arangodb"`
}

type Config struct {
	LogLevel string `yaml:"log_level"`
	// Stream is the logical file stream: object keys look like
	// <stream>.<unix_millis>.gz and the checkpoint is kept per stream.
	Stream string `yaml:"stream"`
	// Workers bounds how many files are fetched and transformed concurrently.
	Workers int `yaml:"workers"`
	// IntervalSecs is the tick interval of current mode.
	IntervalSecs int `yaml:"interval_secs"`
	// APIPort serves the status endpoint in current mode. 0 disables it.
	APIPort int `yaml:"api_port"`

	S3         S3Config         `yaml:"s3"`
	Storage    StorageConfig    `yaml:"storage"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Retry      RetryConfig      `yaml:"retry"`
}

// Load reads and unmarshals the configuration file located at the given path.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("s3.bucket is required")
	}

	switch cfg.Storage.Type {
	case "", "arangodb":
		cfg.Storage.Type = "arangodb"
		if cfg.Storage.Arango.Endpoint == "" {
			cfg.Storage.Arango.Endpoint = "http://localhost:8529"
		}
		if cfg.Storage.Arango.User == "" {
			cfg.Storage.Arango.User = "root"
		}
		if cfg.Storage.Arango.Database == "" {
			cfg.Storage.Arango.Database = "iot"
		}
	case "file":
		if cfg.Storage.File.OutputDir == "" {
			return nil, fmt.Errorf("storage.file.output_dir is required when storage type is file")
		}
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Stream == "" {
		cfg.Stream = "iot_poc"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
		if cfg.Workers < 1 {
			cfg.Workers = 1
		}
	}
	if cfg.IntervalSecs <= 0 {
		cfg.IntervalSecs = 10
	}
	if cfg.Checkpoint.WindowHours <= 0 {
		cfg.Checkpoint.WindowHours = 24
	}
	if cfg.Checkpoint.RedisPoolSize <= 0 {
		cfg.Checkpoint.RedisPoolSize = 16
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry.Attempts = 3
	}
	if cfg.Retry.DelayMS == 0 {
		cfg.Retry.DelayMS = 1500
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-west-2"
	}
}

// Interval returns the current-mode tick interval as a duration.
func (cfg *Config) Interval() time.Duration {
	return time.Duration(cfg.IntervalSecs) * time.Second
}

// Window returns the checkpoint recency window as a duration.
func (cfg *Config) Window() time.Duration {
	return time.Duration(cfg.Checkpoint.WindowHours) * time.Hour
}
