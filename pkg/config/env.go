package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
func ApplyEnvOverrides(cfg *Config) error {
	applyServerEnv(cfg)
	if err := applyLineEnv(cfg); err != nil {
		return err
	}
	if err := applyMailEnv(cfg); err != nil {
		return err
	}
	applyBrokerEnv(cfg)
	return setBoolEnv("METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b })
}

func applyServerEnv(cfg *Config) {
	cfg.HTTPPort = getEnv("PORT", cfg.HTTPPort)
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func applyLineEnv(cfg *Config) error {
	cfg.LineAccessToken = getEnv("LINE_CHANNEL_ACCESS_TOKEN", cfg.LineAccessToken)
	cfg.LineTargetID = getEnv("LINE_TARGET_ID", cfg.LineTargetID)
	cfg.LineAPIBase = getEnv("LINE_API_BASE", cfg.LineAPIBase)
	return setDurationEnv("LINE_TIMEOUT", func(d time.Duration) { cfg.LineTimeout = d })
}

func applyMailEnv(cfg *Config) error {
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.MailMode = strings.ToLower(getEnv("MAIL_MODE", cfg.MailMode))
	cfg.MailFrom = getEnv("MAIL_FROM", cfg.MailFrom)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPUser = getEnv("SMTP_USER", cfg.SMTPUser)
	cfg.SMTPPass = getEnv("SMTP_PASS", cfg.SMTPPass)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)

	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = p
	}
	if err := setBoolEnv("SMTP_SECURE", func(b bool) { cfg.SMTPSecure = b }); err != nil {
		return err
	}
	return setDurationEnv("SECONDARY_TIMEOUT", func(d time.Duration) { cfg.SecondaryTimeout = d })
}

func applyBrokerEnv(cfg *Config) {
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPRoutingKey = getEnv("AMQP_ROUTING_KEY", cfg.AMQPRoutingKey)
}

// setBoolEnv is a small helper to parse boolean environment variables
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}

func setDurationEnv(env string, setter func(time.Duration)) error {
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(d)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
