// Command pipeline runs the article collection pipeline, either once
// (-once) or on a cron schedule with health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	pgRepo "briefly/internal/infra/adapter/persistence/postgres"
	"briefly/internal/infra/db"
	"briefly/internal/infra/newsapi"
	"briefly/internal/infra/notifier"
	workerPkg "briefly/internal/infra/worker"
	"briefly/internal/observability/logging"
	"briefly/internal/observability/metrics"
	"briefly/internal/repository"
	"briefly/internal/usecase/pipeline"
	"briefly/pkg/config"
)

func main() {
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	// Missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

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

	jobMetrics := workerPkg.NewJobMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, jobMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	articleRepo := pgRepo.NewArticleRepo(database)
	runner := buildRunner(logger, articleRepo)

	if *once {
		if err := runJob(logger, runner, articleRepo, workerConfig, jobMetrics); err != nil {
			os.Exit(1)
		}
		return
	}

	runScheduled(logger, runner, articleRepo, workerConfig, jobMetrics)
}

// buildRunner wires the four pipeline stages in their fixed order.
func buildRunner(logger *slog.Logger, articleRepo repository.ArticleRepository) *pipeline.Runner {
	apiConfig, err := newsapi.LoadConfigFromEnv()
	if err != nil {
		logger.Error("news API configuration invalid", slog.Any("error", err))
		os.Exit(1)
	}

	topics, err := newsapi.LoadTopics(config.GetEnvString("NEWS_TOPICS_PATH", ""))
	if err != nil {
		logger.Error("failed to load topics", slog.Any("error", err))
		os.Exit(1)
	}

	rules, err := pipeline.LoadRulesFromEnv(config.GetEnvString("FILTER_RULES_PATH", ""))
	if err != nil {
		logger.Error("failed to load filter rules", slog.Any("error", err))
		os.Exit(1)
	}

	return pipeline.NewRunner(logger,
		&pipeline.CollectStage{
			Client:      newsapi.NewClient(apiConfig, nil),
			ArticleRepo: articleRepo,
			Topics:      topics,
		},
		&pipeline.DedupeStage{ArticleRepo: articleRepo},
		&pipeline.FilterStage{ArticleRepo: articleRepo, Rules: rules},
		&pipeline.NotifyStage{Notifier: buildNotifier(logger)},
	)
}

// buildNotifier returns the Telegram notifier when credentials are
// configured, otherwise a noop so the pipeline still runs in
// development environments.
func buildNotifier(logger *slog.Logger) notifier.Notifier {
	token := config.GetEnvString("TELEGRAM_BOT_TOKEN", "")
	chatID := config.GetEnvInt64("TELEGRAM_CHAT_ID", 0)
	if token == "" || chatID == 0 {
		logger.Info("telegram announcements disabled",
			slog.Bool("token_set", token != ""),
			slog.Bool("chat_id_set", chatID != 0))
		return notifier.NewNoopNotifier()
	}

	logger.Info("telegram announcements enabled")
	return notifier.NewTelegramNotifier(notifier.TelegramConfig{
		BotToken: token,
		ChatID:   chatID,
		Timeout:  config.GetEnvDuration("TELEGRAM_TIMEOUT", 10*time.Second),
	})
}

// runScheduled runs the pipeline under cron until terminated.
func runScheduled(logger *slog.Logger, runner *pipeline.Runner, articleRepo repository.ArticleRepository, cfg workerPkg.Config, jobMetrics *workerPkg.JobMetrics) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	c := cron.New(cron.WithLocation(cfg.Location()))
	_, err := c.AddFunc(cfg.CronSchedule, func() {
		_ = runJob(logger, runner, articleRepo, cfg, jobMetrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("pipeline worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down")
	<-c.Stop().Done()
}

// runJob executes one pipeline run with timeout, metrics, and logging.
func runJob(logger *slog.Logger, runner *pipeline.Runner, articleRepo repository.ArticleRepository, cfg workerPkg.Config, jobMetrics *workerPkg.JobMetrics) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	report, err := runner.Run(ctx)
	jobMetrics.RecordJobDuration(time.Since(start).Seconds())
	if err != nil {
		jobMetrics.RecordJobRun("failure")
		logger.Error("pipeline run failed", slog.Any("error", err))
		return err
	}

	jobMetrics.RecordJobRun("success")
	jobMetrics.RecordLastSuccess()

	if active, err := articleRepo.CountActive(ctx); err == nil {
		metrics.UpdateArticlesActive(active)
	}

	logger.Info("pipeline run completed",
		slog.Int64("collected", report.Collected),
		slog.Int64("inserted", report.Inserted),
		slog.Int64("duplicated", report.Duplicated),
		slog.Int64("removed", report.Removed),
		slog.Int64("excluded", report.Excluded),
		slog.Bool("announced", report.Announced),
		slog.Duration("duration", report.Duration))
	return nil
}
