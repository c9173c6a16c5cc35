package config

import (
	"testing"
	"time"
)

func validLocal() Config {
	return Config{
		App:      AppConfig{Env: "local", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voicewatch"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Auth:     AuthConfig{JWTSecret: "secret"},
		Platform: PlatformConfig{BaseURL: "https://api.example.test", APIKey: "key"},
		Monitor: MonitorConfig{
			Interval:     4 * time.Second,
			MaxAttempts:  3,
			InitialDelay: time.Second,
			GracePeriod:  30 * time.Second,
		},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Platform.Timeout <= 0 {
		t.Fatalf("expected platform timeout default, got %v", c.Platform.Timeout)
	}
	if c.Recordings.Dir == "" {
		t.Fatalf("expected recordings dir default")
	}
}

func TestValidate_RequiresPlatformCredentials(t *testing.T) {
	c := validLocal()
	c.Platform.APIKey = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing VOICE_API_KEY")
	}
}

func TestValidate_RejectsSubSecondInterval(t *testing.T) {
	c := validLocal()
	c.Monitor.Interval = 500 * time.Millisecond
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for interval below 1s")
	}
}

func TestValidate_ProductionRequiresWebhookSecret(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	c.Auth.JWTIssuer = "voicewatch"
	c.Auth.JWTAudience = "api"
	c.Webhook.Secret = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without WEBHOOK_SECRET")
	}
}
