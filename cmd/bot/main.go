package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediadesk/internal/backend"
	"mediadesk/internal/bot"
	"mediadesk/internal/config"
	"mediadesk/internal/events"
	"mediadesk/internal/google"
	"mediadesk/internal/journal"
	"mediadesk/internal/logging"
	"mediadesk/internal/metrics"
	"mediadesk/internal/models"
	"mediadesk/internal/ops"
	"mediadesk/internal/repository"
	"mediadesk/internal/service"
	"mediadesk/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis хранит состояние диалогов; при сбое работаем из памяти.
	redisClient := repository.NewRedisClient(cfg.Redis)
	stateTTL := time.Duration(models.DefaultRedisTTL) * time.Second
	redisRepo := repository.NewRedisStateRepository(redisClient, stateTTL)
	memoryRepo := repository.NewMemoryStateRepository(stateTTL)
	stateRepo := repository.NewFailoverStateRepository(redisRepo, memoryRepo, logger)
	stateService := service.NewStateService(stateRepo, logger)

	client := backend.New(
		cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
		cfg.Backend.RateLimitRPS,
		cfg.Backend.RateLimitBurst,
	)
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, reference data cache disabled")
	} else {
		client.UseRedisCache(redisClient, time.Duration(cfg.Backend.CacheTTL)*time.Second)
	}
	cancelPing()

	actionJournal, err := journal.Open(cfg.Exports.JournalPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open action journal")
	}
	defer actionJournal.Close()

	eventBus := events.NewEventBus()
	metrics.Register()
	botMetrics := bot.NewMetrics(prometheus.DefaultRegisterer)

	actions := service.NewBookingActions(client, actionJournal, eventBus, logger)
	auth := service.NewStaticAuthenticator(cfg.Managers)

	// Зеркало в Google Sheets опционально; обновляется по событиям мутаций.
	if cfg.Google.GoogleCredentialsFile != "" {
		sheets, err := google.NewSheetsService(ctx, cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
		if err != nil {
			logger.Error().Err(err).Msg("Sheets mirror disabled")
		} else {
			workerLog := logging.Component(logger, "sheets")
			w := worker.NewSyncWorker(client, sheets, worker.RetryPolicy{
				MaxRetries:    3,
				InitialDelay:  2 * time.Second,
				MaxDelay:      30 * time.Second,
				BackoffFactor: 2,
			}, &workerLog)
			go w.Start(ctx)

			refresh := func(*events.Event) error { return w.EnqueueRefresh(ctx) }
			for _, eventType := range []string{
				events.EventBookingCreated,
				events.EventBookingUpdated,
				events.EventBookingDeleted,
			} {
				eventBus.Subscribe(eventType, refresh)
			}
		}
	}

	if cfg.Monitoring.HealthCheckPort != 0 {
		checks := map[string]ops.Check{
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
			"backend": func(ctx context.Context) error {
				return client.Ping(ctx)
			},
		}
		opsServer := ops.NewServer(cfg.Monitoring.HealthCheckPort, checks, logging.Component(logger, "ops"))
		go func() {
			if err := opsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Ops server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = opsServer.Shutdown(shutdownCtx)
		}()
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Telegram bot API")
	}
	api.Debug = cfg.Telegram.Debug

	tgService := service.NewTelegramService(bot.NewBotWrapper(api))

	botLog := logging.Component(logger, "bot")
	desk, err := bot.NewBot(
		tgService,
		cfg,
		stateService,
		client,
		client,
		actions,
		actionJournal,
		eventBus,
		auth,
		botMetrics,
		&botLog,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bot")
	}

	logger.Info().Str("env", cfg.App.Environment).Msg("Starting booking desk")
	desk.Start(ctx)

	tgService.StopReceivingUpdates()
	logger.Info().Msg("Shutdown complete")
}
