// Package bootstrap builds the API server's runtime dependencies from config.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/voice-receptionist/internal/config"
	"github.com/wolfman30/voice-receptionist/internal/leads"
	"github.com/wolfman30/voice-receptionist/internal/notify"
	"github.com/wolfman30/voice-receptionist/internal/settings"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// Email providers accepted in EMAIL_PROVIDER.
const (
	EmailProviderAuto     = "auto"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderStub     = "stub"
)

const pingTimeout = 5 * time.Second

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPgxPool connects to Postgres, or returns nil when DATABASE_URL is unset.
func BuildPgxPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// BuildLeadRepository prefers Postgres and falls back to memory.
func BuildLeadRepository(pool *pgxpool.Pool, logger *logging.Logger) leads.Repository {
	if pool == nil {
		if logger != nil {
			logger.Warn("DATABASE_URL not set; leads are kept in memory")
		}
		return leads.NewInMemoryRepository()
	}
	return leads.NewPostgresRepository(pool)
}

// BuildSettingsStore prefers Redis and falls back to memory.
func BuildSettingsStore(redisClient *redis.Client) settings.Store {
	if redisClient == nil {
		return settings.NewMemoryStore()
	}
	return settings.NewRedisStore(redisClient)
}

// NeedsSES reports whether BuildEmailSender will want an SES client, so
// callers only load AWS config when it is used.
func NeedsSES(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	switch cfg.EmailProvider {
	case EmailProviderSES:
		return true
	case EmailProviderAuto, "":
		return strings.TrimSpace(cfg.SendGridAPIKey) == "" && strings.TrimSpace(cfg.SESFromEmail) != ""
	default:
		return false
	}
}

// BuildEmailSender picks the email provider. Misconfiguration degrades to the
// stub sender with a warning rather than failing startup.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	sendgrid := func() notify.EmailSender {
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}
	ses := func() notify.EmailSender {
		if cfg.SESFromEmail == "" {
			return nil
		}
		if s := notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case EmailProviderSendGrid:
		sender = sendgrid()
	case EmailProviderSES:
		sender = ses()
	case EmailProviderStub:
		return notify.NewStubEmailSender(logger)
	case EmailProviderAuto, "":
		if sender = sendgrid(); sender == nil {
			sender = ses()
		}
	default:
		logger.Warn("unknown EMAIL_PROVIDER; using stub", "provider", cfg.EmailProvider)
	}
	if sender == nil {
		logger.Warn("email provider not configured; lead alerts will only be logged", "provider", cfg.EmailProvider)
		return notify.NewStubEmailSender(logger)
	}
	return sender
}
