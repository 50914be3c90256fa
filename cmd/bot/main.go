// Command bot runs the Telegram bot that serves stored articles and
// records like/dislike feedback.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"briefly/internal/bot"
	pgRepo "briefly/internal/infra/adapter/persistence/postgres"
	"briefly/internal/infra/db"
	"briefly/internal/observability/logging"
	"briefly/internal/usecase/browse"
	"briefly/pkg/config"
)

func main() {
	// Missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	token := config.GetEnvString("TELEGRAM_BOT_TOKEN", "")
	if token == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := db.MigrateUp(database); err != nil {
		logger.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}

	service := &browse.Service{
		Articles:  pgRepo.NewArticleRepo(database),
		Responses: pgRepo.NewResponseRepo(database),
	}

	b, err := bot.New(bot.Config{
		Token:      token,
		WebhookURL: config.GetEnvString("WEBHOOK_URL", ""),
		ListenAddr: config.GetEnvString("WEBHOOK_LISTEN_ADDR", ":8443"),
		SessionTTL: config.GetEnvDuration("BOT_SESSION_TTL", 30*time.Minute),
	}, service, logger)
	if err != nil {
		logger.Error("failed to create bot", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil {
		logger.Error("bot stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("bot stopped")
}
