package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment   string `yaml:"environment" default:"production"`
	WebhookSecret string `yaml:"webhook_secret"`
	Server        struct {
		Port            int           `yaml:"port" default:"5001" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes" default:"65536" validate:"gte=0"`
		TrustedProxies  []string      `yaml:"trusted_proxies" validate:"omitempty,dive,cidr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Path string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Discord struct {
		WebhookURL string        `yaml:"webhook_url" validate:"omitempty,url"`
		Timeout    time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"discord"`
	Email struct {
		User      string        `yaml:"user"`
		Password  string        `yaml:"password"`
		Recipient string        `yaml:"recipient" validate:"omitempty,email"`
		Host      string        `yaml:"host" default:"smtp.gmail.com"`
		Port      int           `yaml:"port" default:"587" validate:"gte=1,lte=65535"`
		Timeout   time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"email"`
	Telegram struct {
		Token   string        `yaml:"token"`
		ChatID  int64         `yaml:"chat_id"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"telegram"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks string        `yaml:"required_acks" default:"one" validate:"oneof=none one all"`
		Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
	} `yaml:"kafka"`
	RateLimit struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		Limit   int           `yaml:"limit" default:"30" validate:"gte=1"`
		Window  time.Duration `yaml:"window" default:"1m"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"tvrelay"`
		} `yaml:"redis"`
	} `yaml:"rate_limit"`
}

var validate = validator.New()

// Default returns a configuration with every default applied and nothing else.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. A missing file is not an
// error: the process then runs on defaults and environment variables only.
func Load(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("WEBHOOK_SECRET", &c.WebhookSecret)
	str("DISCORD_WEBHOOK_URL", &c.Discord.WebhookURL)
	str("EMAIL_USER", &c.Email.User)
	str("EMAIL_PASSWORD", &c.Email.Password)
	str("SEND_TO_EMAIL", &c.Email.Recipient)
	str("SMTP_HOST", &c.Email.Host)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.Token)
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	str("REDIS_ADDR", &c.RateLimit.Redis.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("TRUSTED_PROXIES"); ok && v != "" {
		c.Server.TrustedProxies = splitList(v)
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Email.Port = port
	}
	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v, ok := lookup("RATE_LIMIT_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_ENABLED: %w", err)
		}
		c.RateLimit.Enabled = enabled
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if (len(c.Kafka.Brokers) == 0) != (c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic must be set together")
	}
	if c.RateLimit.Enabled && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	return nil
}

// DiscordConfigured reports whether the chat webhook sink has a target.
func (c *Config) DiscordConfigured() bool { return c.Discord.WebhookURL != "" }

// EmailConfigured reports whether all SMTP credentials are present.
func (c *Config) EmailConfigured() bool {
	return c.Email.User != "" && c.Email.Password != "" && c.Email.Recipient != ""
}

// TelegramConfigured reports whether the Telegram sink has a bot and a chat.
func (c *Config) TelegramConfigured() bool { return c.Telegram.Token != "" && c.Telegram.ChatID != 0 }

// KafkaRequiredAcks maps required_acks to the broker's numeric setting:
// none is 0, one is 1, all is -1.
func (c *Config) KafkaRequiredAcks() int {
	switch c.Kafka.RequiredAcks {
	case "none":
		return 0
	case "all":
		return -1
	default:
		return 1
	}
}

// KafkaConfigured reports whether the Kafka sink has brokers and a topic.
func (c *Config) KafkaConfigured() bool { return len(c.Kafka.Brokers) > 0 && c.Kafka.Topic != "" }

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
