package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "tok")
	t.Setenv("LINE_TARGET_ID", "U123")
	t.Setenv("LINE_TIMEOUT", "3s")
	t.Setenv("ADMIN_EMAIL", "admin@shop.test")
	t.Setenv("MAIL_MODE", "SMTP")
	t.Setenv("SMTP_HOST", "mail.test")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := DefaultConfig()
	if err := ApplyEnvOverrides(cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides failed: %v", err)
	}
	if cfg.HTTPPort != "9000" {
		t.Fatalf("unexpected port: %s", cfg.HTTPPort)
	}
	if !cfg.HasLineSecrets() {
		t.Fatalf("expected LINE secrets to be present")
	}
	if cfg.LineTimeout != 3*time.Second {
		t.Fatalf("unexpected line timeout: %v", cfg.LineTimeout)
	}
	if cfg.MailMode != MailModeSMTP {
		t.Fatalf("expected mail mode to be lower-cased, got %q", cfg.MailMode)
	}
	if cfg.SMTPPort != 465 || !cfg.SMTPSecure {
		t.Fatalf("unexpected smtp settings: %d %v", cfg.SMTPPort, cfg.SMTPSecure)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.MetricsEnabled {
		t.Fatalf("expected metrics disabled")
	}
	if w := cfg.Validate(); len(w) != 0 {
		t.Fatalf("expected no warnings, got %v", w)
	}
}

func TestApplyEnvOverridesInvalid(t *testing.T) {
	cases := map[string]string{
		"SMTP_PORT":         "smtp",
		"SMTP_SECURE":       "maybe",
		"LINE_TIMEOUT":      "soon",
		"SECONDARY_TIMEOUT": "10",
		"METRICS_ENABLED":   "yes please",
	}
	for env, val := range cases {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			if err := ApplyEnvOverrides(DefaultConfig()); err == nil {
				t.Fatalf("expected error for %s=%q", env, val)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	body := "line_target_id: Cgroup\nmail_mode: queue\ndb_dsn: postgres://localhost/shop\nsecondary_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LineTargetID != "Cgroup" || cfg.MailMode != MailModeQueue {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SecondaryTimeout != 5*time.Second {
		t.Fatalf("unexpected secondary timeout: %v", cfg.SecondaryTimeout)
	}
	// defaults survive for keys absent from the file
	if cfg.LineAPIBase != "https://api.line.me" || cfg.HTTPPort != "8080" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.HasLineSecrets() {
		t.Fatalf("token is missing, secrets must not be reported present")
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MailMode = MailModeKafka
	w := cfg.Validate()
	// missing LINE secrets, missing admin email, missing brokers
	if len(w) != 3 {
		t.Fatalf("expected 3 warnings, got %v", w)
	}

	cfg = DefaultConfig()
	cfg.LineAccessToken, cfg.LineTargetID = "t", "U"
	cfg.AdminEmail = "admin@shop.test"
	cfg.MailMode = "carrier-pigeon"
	if w := cfg.Validate(); len(w) != 1 {
		t.Fatalf("expected unknown mode warning, got %v", w)
	}
}

func TestSender(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminEmail = "admin@shop.test"
	if got := cfg.Sender(); got != "admin@shop.test" {
		t.Fatalf("unexpected sender fallback: %s", got)
	}
	cfg.SMTPUser = "bot@shop.test"
	if got := cfg.Sender(); got != "bot@shop.test" {
		t.Fatalf("expected smtp user, got %s", got)
	}
	cfg.MailFrom = "Shop <noreply@shop.test>"
	if got := cfg.Sender(); got != cfg.MailFrom {
		t.Fatalf("expected MAIL_FROM, got %s", got)
	}
}
