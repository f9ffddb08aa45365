package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Scorer struct {
		BaseURL     string        `yaml:"base_url"`
		PredictPath string        `yaml:"predict_path"`
		HealthPath  string        `yaml:"health_path"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"scorer"`
	Signatures struct {
		HighAmount        float64  `yaml:"high_amount"`
		HighAmountBoost   float64  `yaml:"high_amount_boost"`
		NightStartHour    int      `yaml:"night_start_hour"`
		NightEndHour      int      `yaml:"night_end_hour"`
		NightBoost        float64  `yaml:"night_boost"`
		VelocityThreshold int      `yaml:"velocity_threshold"`
		VelocityBoost     float64  `yaml:"velocity_boost"`
		ForeignLocations  []string `yaml:"foreign_locations"`
		ForeignBoost      float64  `yaml:"foreign_boost"`
	} `yaml:"signatures"`
	Behavior struct {
		Shards         int     `yaml:"shards"`
		NewDeviceBoost float64 `yaml:"new_device_boost"`
		BurstThreshold int     `yaml:"burst_threshold"`
		BurstBoost     float64 `yaml:"burst_boost"`
	} `yaml:"behavior"`
	Alerts struct {
		ScoreThreshold float64 `yaml:"score_threshold"`
		ModelThreshold float64 `yaml:"model_threshold"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst float64 `yaml:"rate_limit_burst"`
	} `yaml:"alerts"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		AlertTopic   string   `yaml:"alert_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Intake struct {
			Enabled    bool          `yaml:"enabled"`
			Topic      string        `yaml:"topic"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"intake"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
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

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SCORER_URL"); v != "" {
		c.Scorer.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_ALERT_TOPIC"); v != "" {
		c.Kafka.AlertTopic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("FOREIGN_LOCATIONS"); v != "" {
		c.Signatures.ForeignLocations = strings.Split(v, ",")
	}

	return c, nil
}

// applyDefaults fills in the canonical engine parameters for anything the
// YAML leaves at zero, so a minimal config file still produces a working
// engine.
func (c *Config) applyDefaults() {
	s := &c.Signatures
	if s.HighAmount == 0 {
		s.HighAmount = 50_000_000
	}
	if s.HighAmountBoost == 0 {
		s.HighAmountBoost = 0.35
	}
	if s.NightEndHour == 0 {
		s.NightEndHour = 5
	}
	if s.NightBoost == 0 {
		s.NightBoost = 0.25
	}
	if s.VelocityThreshold == 0 {
		s.VelocityThreshold = 10
	}
	if s.VelocityBoost == 0 {
		s.VelocityBoost = 0.20
	}
	if s.ForeignBoost == 0 {
		s.ForeignBoost = 0.25
	}

	b := &c.Behavior
	if b.Shards == 0 {
		b.Shards = 64
	}
	if b.NewDeviceBoost == 0 {
		b.NewDeviceBoost = 0.30
	}
	if b.BurstThreshold == 0 {
		b.BurstThreshold = 8
	}
	if b.BurstBoost == 0 {
		b.BurstBoost = 0.20
	}

	a := &c.Alerts
	if a.ScoreThreshold == 0 {
		a.ScoreThreshold = 0.7
	}
	if a.ModelThreshold == 0 {
		a.ModelThreshold = 0.5
	}

	if c.Scorer.PredictPath == "" {
		c.Scorer.PredictPath = "/predict"
	}
	if c.Scorer.HealthPath == "" {
		c.Scorer.HealthPath = "/health"
	}
	if c.Scorer.Timeout == 0 {
		c.Scorer.Timeout = 3 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Scorer.BaseURL == "" {
		return fmt.Errorf("scorer.base_url is required")
	}
	s := c.Signatures
	if s.NightStartHour < 0 || s.NightStartHour > 23 || s.NightEndHour < 0 || s.NightEndHour > 24 {
		return fmt.Errorf("signatures night window out of range: [%d, %d)", s.NightStartHour, s.NightEndHour)
	}
	if s.NightStartHour >= s.NightEndHour {
		return fmt.Errorf("signatures.night_start_hour must be before night_end_hour")
	}
	if c.Behavior.Shards <= 0 {
		return fmt.Errorf("behavior.shards must be positive")
	}
	if c.Alerts.ScoreThreshold <= 0 || c.Alerts.ScoreThreshold > 1 {
		return fmt.Errorf("alerts.score_threshold must be in (0, 1]")
	}
	if c.Alerts.ModelThreshold <= 0 || c.Alerts.ModelThreshold > 1 {
		return fmt.Errorf("alerts.model_threshold must be in (0, 1]")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.AlertTopic == "" {
		return fmt.Errorf("kafka.alert_topic is required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
