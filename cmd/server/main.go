package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/cmpocmkp/kptube-go/internal/config"
	"github.com/cmpocmkp/kptube-go/internal/db"
	"github.com/cmpocmkp/kptube-go/internal/handler"
	"github.com/cmpocmkp/kptube-go/internal/middleware"
	"github.com/cmpocmkp/kptube-go/internal/openai"
	"github.com/cmpocmkp/kptube-go/internal/pipeline"
	"github.com/cmpocmkp/kptube-go/internal/repository"
	"github.com/cmpocmkp/kptube-go/internal/router"
	"github.com/cmpocmkp/kptube-go/internal/service"
	"github.com/cmpocmkp/kptube-go/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "kptube-api")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	channelRepo := repository.NewChannelRepo(pool)
	videoRepo := repository.NewVideoRepo(pool)
	runRepo := repository.NewRunRepo(pool)

	// The Data API lister needs an API key; without one, fall back to the
	// public per-channel RSS feeds.
	var lister pipeline.Lister
	if cfg.YouTubeAPIKey != "" {
		lister = youtube.NewClient(cfg.YouTubeAPIKey)
	} else {
		log.Println("no YouTube API key configured, using RSS feed lister")
		lister = youtube.NewFeedLister()
	}

	ai := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	audio := youtube.NewAudioProcessor(cfg.TempDir, cfg.YtDlpPath, cfg.FFmpegPath)

	lookback := time.Duration(cfg.LookbackDays) * 24 * time.Hour
	pipe := pipeline.New(pipeline.Deps{
		Channels:    channelRepo,
		Videos:      videoRepo,
		Runs:        runRepo,
		Lister:      lister,
		Audio:       audio,
		Transcriber: ai,
		Classifier:  ai,
	}, lookback)

	pipeline.RegisterMetrics()
	handler.InitMetrics(pool)

	worker := service.NewPipelineWorker(pipe, cfg.PipelineInterval, cfg.PipelineOnStart)
	go worker.Start(ctx)
	defer worker.Stop()

	channelSvc := service.NewChannelService(channelRepo, cache)
	videoSvc := service.NewVideoService(videoRepo, channelRepo, cache)
	runSvc := service.NewRunService(runRepo, videoRepo, channelRepo)

	app := fiber.New(fiber.Config{
		AppName:      "KPTube API",
		ServerHeader: "KPTube",
	})

	router.Setup(app, &router.Handlers{
		Channel: handler.NewChannelHandler(channelSvc),
		Video:   handler.NewVideoHandler(videoSvc),
		Run:     handler.NewRunHandler(runSvc, worker),
		Stats:   handler.NewStatsHandler(runSvc),
		Export:  handler.NewExportHandler(cfg.ExportDir),
		Health:  handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	log.Printf("KPTube backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	log.Fatal(app.Listen(":" + cfg.Port))
}
