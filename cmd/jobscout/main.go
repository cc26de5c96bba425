package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/config"
	"github.com/jobscout/jobscout/internal/db"
	"github.com/jobscout/jobscout/internal/filestore"
	"github.com/jobscout/jobscout/internal/handler"
	cronjob "github.com/jobscout/jobscout/internal/job"
	"github.com/jobscout/jobscout/internal/middleware"
	"github.com/jobscout/jobscout/internal/queue"
	"github.com/jobscout/jobscout/internal/ratelimit"
	"github.com/jobscout/jobscout/internal/repo"
	"github.com/jobscout/jobscout/internal/schedule"
	"github.com/jobscout/jobscout/internal/service"
	"github.com/jobscout/jobscout/internal/source"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "jobscout",
		Short: "jobscout backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run jobscout server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	rootLogger := logutil.GetLogger(context.Background())
	rootLogger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.Bool("redis", cfg.Redis.URL != ""),
	)

	jobRepo := repo.NewJobRepo(conn)
	scrapeRepo := repo.NewScrapeRepo(conn)
	profileRepo := repo.NewProfileRepo(conn)

	var embedder *ai.Embedder
	var writer *ai.Writer
	if cfg.AI.Provider != "" {
		provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
		if err != nil {
			return fmt.Errorf("init ai provider: %w", err)
		}
		embedder = ai.NewEmbedder(provider, cfg.AI.EmbedModel, cfg.AI.MaxInputChars, cfg.AI.Timeout)
		writer = ai.NewWriter(provider, cfg.AI.GenModel, cfg.AI.Timeout)
	} else {
		rootLogger.Warn("no ai provider configured, search degrades to recency ordering")
	}

	client := &http.Client{Timeout: 15 * time.Second}
	sources := []source.Source{
		source.NewAdzunaSource(cfg.Sources.Adzuna.AppID, cfg.Sources.Adzuna.AppKey, cfg.Sources.Adzuna.Country, client),
	}
	if !cfg.Sources.Remotive.Disabled {
		sources = append(sources, source.NewRemotiveSource(client))
	}
	for _, feed := range cfg.Sources.RSSFeeds {
		sources = append(sources, source.NewRSSSource(feed.Name, feed.URL, client))
	}
	hnSource := source.NewHNHiringSource(client, cfg.Sources.HNHiring.MaxPages, cfg.Sources.HNHiring.PageDelayMS)
	deepSources := map[string]source.Source{
		hnSource.Name(): hnSource,
	}

	var limitStore ratelimit.Store
	var scrapeQueue queue.Queue
	var consumer queue.Consumer
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		limitStore = ratelimit.NewRedisStore(rdb)
		redisQueue := queue.NewRedisQueue(rdb, "")
		scrapeQueue = redisQueue
		consumer = redisQueue
	} else {
		rootLogger.Warn("redis not configured, using in-process rate limit store and queue")
		limitStore = ratelimit.NewMemoryStore()
		memQueue := queue.NewMemoryQueue(0)
		scrapeQueue = memQueue
		consumer = memQueue
	}

	tiers := make(map[string]ratelimit.TierLimit, len(cfg.RateLimit.Tiers))
	for name, tier := range cfg.RateLimit.Tiers {
		window, err := tier.WindowDuration()
		if err != nil {
			return fmt.Errorf("rate limit tier %s: %w", name, err)
		}
		tiers[name] = ratelimit.TierLimit{Max: tier.Max, Window: window}
	}
	limiter := ratelimit.NewLimiter(limitStore, tiers)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	mailSender := service.NewEmailSender(cfg.Mail)
	ingestService := service.NewIngestService(sources, jobRepo, embedder, cfg.Sources.FetchTimeout)
	jobService := service.NewJobService(jobRepo, embedder)
	profileService := service.NewProfileService(profileRepo, store)
	scrapeService := service.NewScrapeService(scrapeRepo, scrapeQueue, ingestService, deepSources, mailSender)
	assistService := service.NewAssistService(jobRepo, profileRepo, writer)

	deps := handler.RouterDeps{
		Jobs:      handler.NewJobHandler(ingestService, jobService, profileService),
		Scrapes:   handler.NewScrapeHandler(scrapeService),
		Profiles:  handler.NewProfileHandler(profileService),
		Assist:    handler.NewAssistHandler(assistService),
		Limiter:   limiter,
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go consumer.Consume(ctx, scrapeService.HandleTask)

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(cronjob.NewSweepJob(ingestService, cfg.Sources.Sweeps), cfg.Schedule.SweepSpec); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	if embedder != nil {
		if err := scheduler.AddJob(cronjob.NewEmbeddingBackfillJob(jobRepo, embedder), cfg.Schedule.BackfillSpec); err != nil {
			return fmt.Errorf("schedule backfill: %w", err)
		}
	}
	scheduler.Start(ctx)

	rootLogger.Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	rootLogger.Info("server stopping...")
	scheduler.Stop()
	return nil
}
