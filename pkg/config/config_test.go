package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func mustDefault(t *testing.T) *Config {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return c
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 5001 {
		t.Fatalf("expected default port 5001, got %d", c.Server.Port)
	}
	if c.Discord.Timeout != 5*time.Second {
		t.Fatalf("expected discord timeout 5s, got %s", c.Discord.Timeout)
	}
	if c.Email.Host != "smtp.gmail.com" || c.Email.Port != 587 {
		t.Fatalf("unexpected smtp defaults %s:%d", c.Email.Host, c.Email.Port)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadYAMLKeepsExplicitValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("webhook_secret: s3cret\nserver:\n  port: 8080\ndiscord:\n  webhook_url: https://discord.example/api/webhooks/1\n  timeout: 7s\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.WebhookSecret != "s3cret" {
		t.Fatalf("secret = %q", c.WebhookSecret)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if c.Discord.Timeout != 7*time.Second {
		t.Fatalf("discord timeout = %s", c.Discord.Timeout)
	}
	if !c.DiscordConfigured() {
		t.Fatalf("expected discord configured")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c := mustDefault(t)
	err := c.applyEnv(envMap(map[string]string{
		"WEBHOOK_SECRET":      "from-env",
		"DISCORD_WEBHOOK_URL": "https://discord.example/hook",
		"EMAIL_USER":          "bot@example.com",
		"EMAIL_PASSWORD":      "app-password",
		"SEND_TO_EMAIL":       "me@example.com",
		"PORT":                "9000",
		"TELEGRAM_CHAT_ID":    "-100123",
		"KAFKA_BROKERS":       "k1:9092, k2:9092",
		"KAFKA_TOPIC":         "alerts",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if c.WebhookSecret != "from-env" || c.Server.Port != 9000 {
		t.Fatalf("unexpected overrides: %+v", c)
	}
	if !c.EmailConfigured() {
		t.Fatalf("expected email configured")
	}
	if c.Telegram.ChatID != -100123 {
		t.Fatalf("chat id = %d", c.Telegram.ChatID)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestApplyEnvRejectsBadPort(t *testing.T) {
	c := mustDefault(t)
	if err := c.applyEnv(envMap(map[string]string{"PORT": "http"})); err == nil {
		t.Fatalf("expected error for non-numeric PORT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad discord url", func(c *Config) { c.Discord.WebhookURL = "not a url" }, true},
		{"bad recipient", func(c *Config) { c.Email.Recipient = "nobody" }, true},
		{"kafka topic without brokers", func(c *Config) { c.Kafka.Topic = "alerts" }, true},
		{"unknown rate limit backend", func(c *Config) { c.RateLimit.Backend = "etcd" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"numeric required acks", func(c *Config) { c.Kafka.RequiredAcks = "0" }, true},
		{"trusted proxy cidr", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8"} }, false},
		{"trusted proxy not a cidr", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.1"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustDefault(t)
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmailConfiguredNeedsAllThree(t *testing.T) {
	c := mustDefault(t)
	c.Email.User = "bot@example.com"
	c.Email.Password = "pw"
	if c.EmailConfigured() {
		t.Fatalf("recipient missing, should not be configured")
	}
	c.Email.Recipient = "me@example.com"
	if !c.EmailConfigured() {
		t.Fatalf("expected configured")
	}
}

func TestRequiredAcksExplicitNoneSurvivesDefaults(t *testing.T) {
	tests := []struct {
		yaml string
		want int
	}{
		{"kafka:\n  required_acks: none\n", 0},
		{"kafka:\n  required_acks: all\n", -1},
		{"kafka: {}\n", 1},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(tt.yaml), 0o600); err != nil {
			t.Fatal(err)
		}
		c, err := Load(path)
		if err != nil {
			t.Fatalf("load %q: %v", tt.yaml, err)
		}
		if err := c.Validate(); err != nil {
			t.Fatalf("validate %q: %v", tt.yaml, err)
		}
		if got := c.KafkaRequiredAcks(); got != tt.want {
			t.Fatalf("%q: KafkaRequiredAcks() = %d, want %d", tt.yaml, got, tt.want)
		}
	}
}

func TestRequiredAcksNumericZeroIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("kafka:\n  required_acks: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("required_acks: 0 must not silently become one")
	}
}

func TestApplyEnvTrustedProxies(t *testing.T) {
	c := mustDefault(t)
	if err := c.applyEnv(envMap(map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8, 192.168.0.0/16"})); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if len(c.Server.TrustedProxies) != 2 || c.Server.TrustedProxies[1] != "192.168.0.0/16" {
		t.Fatalf("trusted proxies = %v", c.Server.TrustedProxies)
	}
}
