package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(dur)
	case int:
		*d = Duration(time.Duration(v))
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// D returns the native duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// SourceConfig describes the acquisition endpoints for one indicator.
type SourceConfig struct {
	Primary    string `yaml:"primary"`
	Backup     string `yaml:"backup"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int      `yaml:"port"`
		ReadTimeout     Duration `yaml:"read_timeout"`
		WriteTimeout    Duration `yaml:"write_timeout"`
		ShutdownTimeout Duration `yaml:"shutdown_timeout"`
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
	Engine struct {
		RefreshInterval Duration `yaml:"refresh_interval"`
		HistoryDays     int      `yaml:"history_days"`
	} `yaml:"engine"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled          bool     `yaml:"enabled"`
		Host             string   `yaml:"host"`
		Port             int      `yaml:"port"`
		Database         string   `yaml:"database"`
		User             string   `yaml:"user"`
		Password         string   `yaml:"password"`
		AsyncInsert      bool     `yaml:"async_insert"`
		WaitForAsync     bool     `yaml:"wait_for_async_insert"`
		DialTimeout      Duration `yaml:"dial_timeout"`
		ReadTimeout      Duration `yaml:"read_timeout"`
		WriteTimeout     Duration `yaml:"write_timeout"`
		MaxExecutionTime Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		LogTopic     string   `yaml:"log_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int      `yaml:"max_attempts"`
			Linger       Duration `yaml:"linger"`
			BatchBytes   int      `yaml:"batch_bytes"`
			BatchSize    int      `yaml:"batch_size"`
			WriteTimeout Duration `yaml:"write_timeout"`
			ReadTimeout  Duration `yaml:"read_timeout"`
			Async        bool     `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Stream struct {
		Enabled        bool     `yaml:"enabled"`
		URL            string   `yaml:"url"`
		ReconnectDelay Duration `yaml:"reconnect_delay"`
		PingInterval   Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Sources    map[string]SourceConfig       `yaml:"sources"`
	Thresholds map[string]map[string]float64 `yaml:"thresholds"`
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

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources cannot be empty")
	}
	for name, src := range c.Sources {
		if src.Primary == "" {
			return fmt.Errorf("sources.%s.primary is required", name)
		}
	}
	if len(c.Thresholds) == 0 {
		return fmt.Errorf("thresholds cannot be empty")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	return nil
}
