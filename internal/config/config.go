package config

import (
	"fmt"
	"strings"
	"time"

	"launchhub/pkg/circuitbreaker"
	"launchhub/pkg/config"
	"launchhub/pkg/logger"
)

type ExportConfig struct {
	// StakeholderSections are the data sections kept in a stakeholder view.
	StakeholderSections []string `yaml:"stakeholder_sections"`
}

type CacheConfig struct {
	InsightTTL time.Duration `yaml:"insight_ttl"`
	DedupTTL   time.Duration `yaml:"dedup_ttl"`
}

type OutboxConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
}

// ConsumerConfig 每个 routing key 声明一个队列
// 队列名为 {QueuePrefix}.{去掉 ".#" 的 key}
type ConsumerConfig struct {
	QueuePrefix string   `yaml:"queue_prefix"`
	RoutingKeys []string `yaml:"routing_keys"`
	MaxRetries  int      `yaml:"max_retries"`
}

// QueueName returns the queue bound to routingKey.
func (c ConsumerConfig) QueueName(routingKey string) string {
	return c.QueuePrefix + "." + strings.TrimSuffix(routingKey, ".#")
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

type Config struct {
	Server   config.ServerConfig   `yaml:"server"`
	DB       config.DBConfig       `yaml:"db"`
	MQ       config.MQConfig       `yaml:"mq"`
	Redis    config.RedisConfig    `yaml:"redis"`
	JWT      config.JWTConfig      `yaml:"jwt"`
	Otel     config.OtelConfig     `yaml:"otel"`
	Log      logger.Config         `yaml:"log"`
	Export   ExportConfig          `yaml:"export"`
	Cache    CacheConfig           `yaml:"cache"`
	Outbox   OutboxConfig          `yaml:"outbox"`
	Consumer ConsumerConfig        `yaml:"consumer"`
	Retry    RetryConfig           `yaml:"retry"`
	Breaker  circuitbreaker.Config `yaml:"circuit_breaker"`
	ErrorLog struct {
		MaxEntries int `yaml:"max_entries"`
	} `yaml:"error_log"`
}

// Load reads config/{base,$CONFIG_ENV}.yaml plus secrets, then applies
// environment overrides and defaults.
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	dir := config.GetEnv("CONFIG_DIR", "config")

	var cfg Config
	if err := config.Decode(env, dir, &cfg); err != nil {
		return nil, fmt.Errorf("load config (%s): %w", env, err)
	}

	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideOtelFromEnv(&cfg.Otel)

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Export.StakeholderSections) == 0 {
		c.Export.StakeholderSections = []string{"validation", "financial"}
	}
	if c.Cache.InsightTTL <= 0 {
		c.Cache.InsightTTL = 10 * time.Minute
	}
	if c.Cache.DedupTTL <= 0 {
		c.Cache.DedupTTL = 24 * time.Hour
	}
	if c.Outbox.Interval <= 0 {
		c.Outbox.Interval = time.Second
	}
	if c.Outbox.BatchSize <= 0 {
		c.Outbox.BatchSize = 100
	}
	if c.Outbox.MaxRetries <= 0 {
		c.Outbox.MaxRetries = 5
	}
	if c.Consumer.QueuePrefix == "" {
		c.Consumer.QueuePrefix = "launchhub"
	}
	if len(c.Consumer.RoutingKeys) == 0 {
		c.Consumer.RoutingKeys = []string{"progress.#", "project.#"}
	}
	if c.Consumer.MaxRetries <= 0 {
		c.Consumer.MaxRetries = 3
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = 100 * time.Millisecond
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = 2 * time.Second
	}
	if c.ErrorLog.MaxEntries <= 0 {
		c.ErrorLog.MaxEntries = 500
	}
	if c.Otel.ServiceName == "" {
		c.Otel.ServiceName = "launchhub"
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}
