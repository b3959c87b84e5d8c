package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowRequest     time.Duration `yaml:"slow_request"`
		DisableCORS     bool          `yaml:"disable_cors"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Database struct {
		URL             string        `yaml:"url"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	} `yaml:"database"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		DrawsTopic   string   `yaml:"draws_topic"`
		PicksTopic   string   `yaml:"picks_topic"`
		ReportsTopic string   `yaml:"reports_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
	Cache struct {
		TTL        time.Duration `yaml:"ttl"`
		MemorySize int           `yaml:"memory_size"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
			PoolSize int    `yaml:"pool_size"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Model struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Breaker struct {
			MaxRequests         uint32        `yaml:"max_requests"`
			Interval            time.Duration `yaml:"interval"`
			Timeout             time.Duration `yaml:"timeout"`
			ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
		} `yaml:"breaker"`
	} `yaml:"model"`
	Engine struct {
		PoolSize         int           `yaml:"pool_size"`
		PoolStrategy     string        `yaml:"pool_strategy"`
		RecentSimilarity float64       `yaml:"recent_similarity"`
		OlderSimilarity  float64       `yaml:"older_similarity"`
		MaxAttempts      int           `yaml:"max_attempts"`
		ReductionSamples int           `yaml:"reduction_samples"`
		MaxBatch         int           `yaml:"max_batch"`
		LoadTimeout      time.Duration `yaml:"load_timeout"`
	} `yaml:"engine"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"ratelimit"`
	Jobs struct {
		Enabled    bool          `yaml:"enabled"`
		Queue      string        `yaml:"queue"`
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		ResultTTL  time.Duration `yaml:"result_ttl"`
	} `yaml:"jobs"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads .env when present, then the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("MODEL_BASE_URL"); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Kafka.DrawsTopic == "" {
		c.Kafka.DrawsTopic = "draws"
	}
	if c.Kafka.PicksTopic == "" {
		c.Kafka.PicksTopic = "picks"
	}
	if c.Kafka.ReportsTopic == "" {
		c.Kafka.ReportsTopic = "reports"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 6 * time.Hour
	}
	if c.Cache.MemorySize == 0 {
		c.Cache.MemorySize = 16
	}
	if c.Model.Timeout == 0 {
		c.Model.Timeout = 5 * time.Second
	}
	if c.Engine.PoolSize == 0 {
		c.Engine.PoolSize = 30
	}
	if c.Engine.PoolStrategy == "" {
		c.Engine.PoolStrategy = "dynamic"
	}
	if c.Engine.RecentSimilarity == 0 {
		c.Engine.RecentSimilarity = 49
	}
	if c.Engine.OlderSimilarity == 0 {
		c.Engine.OlderSimilarity = 60
	}
	if c.Engine.MaxAttempts == 0 {
		c.Engine.MaxAttempts = 5000
	}
	if c.Engine.ReductionSamples == 0 {
		c.Engine.ReductionSamples = 10000
	}
	if c.Engine.MaxBatch == 0 {
		c.Engine.MaxBatch = 100
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 2
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
	if c.Jobs.Queue == "" {
		c.Jobs.Queue = "mm:jobs"
	}
	if c.Jobs.Workers == 0 {
		c.Jobs.Workers = 2
	}
	if c.Jobs.ResultTTL == 0 {
		c.Jobs.ResultTTL = 24 * time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if (c.Cache.Redis.Enabled || c.Jobs.Enabled) && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis cache and the job queue")
	}
	switch c.Engine.PoolStrategy {
	case "dynamic", "frequency", "model":
	default:
		return fmt.Errorf("engine.pool_strategy must be dynamic, frequency or model, got '%s'", c.Engine.PoolStrategy)
	}
	if c.Engine.RecentSimilarity < 0 || c.Engine.RecentSimilarity > 100 ||
		c.Engine.OlderSimilarity < 0 || c.Engine.OlderSimilarity > 100 {
		return fmt.Errorf("engine similarity thresholds must be within 0..100")
	}
	return nil
}
