package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary      Primary            `koanf:"primary"`
	Database     DatabaseConfig     `koanf:"database"`
	Kafka        KafkaConfig        `koanf:"kafka"`
	Redis        RedisConfig        `koanf:"redis"`
	Gateways     GatewaysConfig     `koanf:"gateways"`
	Retry        RetryConfig        `koanf:"retry"`
	Subscription SubscriptionConfig `koanf:"subscription"`
	Credentials  CredentialsConfig  `koanf:"credentials"`
	Reporting    ReportingConfig    `koanf:"reporting"`
	Logger       LoggerConfig       `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

type KafkaConfig struct {
	Brokers []string `koanf:"brokers" validate:"required"`
	// Topic carries outbound events; CommandTopic carries inbound
	// operation commands consumed by the GroupID consumer group.
	Topic        string `koanf:"topic" validate:"required"`
	CommandTopic string `koanf:"command_topic" validate:"required"`
	GroupID      string `koanf:"group_id" validate:"required"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// GatewayEndpointConfig is one processor's HTTP endpoint.
type GatewayEndpointConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required"`
	ConnTimeout time.Duration `koanf:"conn_timeout" validate:"required"`
}

type GatewaysConfig struct {
	Cardworks  GatewayEndpointConfig `koanf:"cardworks"`
	ACHDirect  GatewayEndpointConfig `koanf:"achdirect"`
	TokenProxy GatewayEndpointConfig `koanf:"tokenproxy"`
}

type SubscriptionConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required"`
	ConnTimeout time.Duration `koanf:"conn_timeout" validate:"required"`
}

type RetryConfig struct {
	BaseDelay  int32 `koanf:"base_delay"`
	MaxRetries int32 `koanf:"max_retries"`
}

// CredentialsConfig maps gateway ids to KMS-encrypted credential blobs
// (base64). An empty map with Primary.Env=development falls back to the
// static provider.
type CredentialsConfig struct {
	KMSKeyID       string            `koanf:"kms_key_id"`
	EncryptedBlobs map[string]string `koanf:"encrypted_blobs"`
}

type ReportingConfig struct {
	Interval    time.Duration `koanf:"interval" validate:"required"`
	Concurrency int           `koanf:"concurrency" validate:"required"`
	ReportTTL   time.Duration `koanf:"report_ttl"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

// NewLogger builds the process-wide structured logger at the configured
// level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("PAYMENTS_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PAYMENTS_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
