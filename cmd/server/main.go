package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"launchhub/internal/apperrors"
	"launchhub/internal/config"
	"launchhub/internal/export"
	"launchhub/internal/handler"
	"launchhub/internal/httpserver"
	"launchhub/internal/mqhandler"
	"launchhub/internal/repository"
	"launchhub/internal/service"
	"launchhub/internal/template"
	"launchhub/pkg/circuitbreaker"
	"launchhub/pkg/db"
	"launchhub/pkg/logger"
	"launchhub/pkg/mq"
	"launchhub/pkg/otel"
	"launchhub/pkg/outbox"
	"launchhub/pkg/redis"
	"launchhub/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.NewLogger(cfg.Log)
	defer log.Sync()

	log.Info("Starting launchhub...")

	shutdownTracing, err := otel.Init(cfg.Otel, log)
	if err != nil {
		log.Fatal("OpenTelemetry init failed", zap.Error(err))
	}
	defer shutdownTracing()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	dbConn, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer dbConn.Close()
	if err := repository.Migrate(ctx, dbConn); err != nil {
		log.Fatal("Schema migration failed", zap.Error(err))
	}
	log.Info("DB ready")

	// Redis
	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	// MQ
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Fatal("MQ publisher init failed", zap.Error(err))
	}
	defer publisher.Close()

	// 初始化 repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	progressRepo := repository.NewProgressRepository(dbConn)
	outboxRepo := outbox.NewRepository(dbConn)
	insightCache := repository.NewInsightCache(rdb, cfg.Cache.InsightTTL)
	analyticsRepo := repository.NewAnalyticsRepository(rdb)

	// 初始化 services
	retry := apperrors.RetryOptions{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}
	errLog := apperrors.NewErrorLogger(cfg.ErrorLog.MaxEntries, log)

	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	projectSvc := service.NewProjectService(projectRepo, retry, log).
		WithInsightInvalidator(insightCache)
	progressSvc := service.NewProgressService(projectRepo, progressRepo, retry, log).
		WithInsightInvalidator(insightCache)
	insightSvc := service.NewInsightService(projectRepo, progressRepo, insightCache, retry, log)
	exportSvc := service.NewExportService(projectRepo, progressRepo,
		export.NewExporter(cfg.Export.StakeholderSections), analyticsRepo, retry, log)
	recommendationSvc := service.NewRecommendationService()
	templateSvc := service.NewTemplateService(template.NewRegistry())
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)

	// 启动 outbox dispatcher
	breaker := circuitbreaker.NewCircuitBreaker(cfg.Breaker)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		log.Warn("Publisher circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithMaxRetries(cfg.Outbox.MaxRetries).
		WithInterval(cfg.Outbox.Interval).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithCircuitBreaker(breaker)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Start(ctx)
	}()

	// 启动 MQ consumers（每个 routing key 一个队列）
	eventHandler := mqhandler.NewEventHandler(
		insightSvc, analyticsSvc,
		util.NewDeduper(rdb, cfg.Cache.DedupTTL, log),
		util.NewRetryCounter(rdb, cfg.Cache.DedupTTL),
		publisher, cfg.Consumer.MaxRetries, log,
	)
	for _, rk := range cfg.Consumer.RoutingKeys {
		queue := cfg.Consumer.QueueName(rk)
		log.Info("Initializing MQ consumer...", zap.String("queue", queue), zap.String("routing_key", rk))
		consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, queue, rk, cfg.MQ.Prefetch, log)
		if err != nil {
			log.Fatal("Consumer init failed", zap.String("queue", queue), zap.Error(err))
		}
		defer consumer.Close()
		consumer.SetHandler(eventHandler.Handle)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.StartConsuming(ctx); err != nil {
				log.Error("Consumer stopped", zap.String("queue", queue), zap.Error(err))
			}
		}()
	}

	// HTTP
	errs := handler.NewErrorWriter(errLog)
	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:            handler.NewAuthHandler(authSvc, errs, log),
		Projects:        handler.NewProjectHandler(projectSvc, errs),
		Progress:        handler.NewProgressHandler(progressSvc, errs),
		Insights:        handler.NewInsightHandler(insightSvc, errs),
		Exports:         handler.NewExportHandler(exportSvc, errs),
		Recommendations: handler.NewRecommendationHandler(recommendationSvc, errs),
		Templates:       handler.NewTemplateHandler(templateSvc, errs),
		Analytics:       handler.NewAnalyticsHandler(analyticsSvc, errs),
		Admin:           handler.NewAdminHandler(outbox.NewReplayService(outboxRepo, publisher, log), errLog, errs, log),
	}, cfg.JWT.Secret, func(ctx context.Context) error {
		if err := dbConn.Ping(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down launchhub gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	cancel()
	wg.Wait()
	log.Info("launchhub shutdown complete")
}
