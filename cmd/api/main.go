package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/internal/api/handlers"
	rediscache "github.com/pathfinder-ai/backend/internal/cache/redis"
	"github.com/pathfinder-ai/backend/internal/compose"
	"github.com/pathfinder-ai/backend/internal/corpus"
	"github.com/pathfinder-ai/backend/internal/index"
	"github.com/pathfinder-ai/backend/internal/llm"
	"github.com/pathfinder-ai/backend/internal/metrics"
	"github.com/pathfinder-ai/backend/internal/middleware/ratelimit"
	"github.com/pathfinder-ai/backend/internal/moderation"
	"github.com/pathfinder-ai/backend/internal/pipeline"
	"github.com/pathfinder-ai/backend/internal/places"
	"github.com/pathfinder-ai/backend/internal/retriever"
	"github.com/pathfinder-ai/backend/internal/storage/sqlite"
	"github.com/pathfinder-ai/backend/internal/topics"
	"github.com/pathfinder-ai/backend/internal/translate"
	"github.com/pathfinder-ai/backend/pkg/config"
	appLogger "github.com/pathfinder-ai/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Pathfinder API Server")
	metrics.Init()

	if cfg.LLM.APIKey == "" {
		appLogger.Fatal("llm.apiKey is required")
	}

	records, err := corpus.Load(cfg.Dataset.Path)
	if err != nil {
		appLogger.Fatal("Failed to load dataset", zap.Error(err))
	}
	contentHash, err := corpus.Hash(cfg.Dataset.Path)
	if err != nil {
		appLogger.Fatal("Failed to hash dataset", zap.Error(err))
	}

	var cacheClient *rediscache.Client
	if cfg.Redis.Enabled {
		cacheClient, err = rediscache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer cacheClient.Close()
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	llmClient := llm.NewClient(cfg.LLM, cacheClient)

	ix, err := index.OpenOrBuild(context.Background(), llmClient, records, contentHash, cfg.Dataset.StoreDir)
	if err != nil {
		appLogger.Fatal("Failed to open embedding index", zap.Error(err))
	}
	metrics.IndexDocuments.Set(float64(len(records)))

	var translator translate.Translator
	if cfg.Translation.Enabled {
		translator = translate.NewGoogleClient(
			cfg.Translation.TargetLang,
			time.Duration(cfg.Translation.TimeoutSec)*time.Second,
		)
	}
	protector := translate.NewProtector(translator, cfg.Protected)

	filter := moderation.NewFilter(cfg.Profanity)
	extractor := topics.NewExtractor(cfg.Topics)
	search := retriever.New(ix, cfg.RAG, cfg.Responses)
	resolver := places.NewResolver(cfg.Places, cfg.Proximity.MaxDistanceKm)
	probe := compose.NewProbe(cfg.Internet)
	composer := compose.New(llmClient, probe, cfg.Offline)

	chatPipeline := pipeline.New(filter, protector, extractor, search, resolver, composer, cfg.RAG, cfg.Responses)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	chatHandler := handlers.NewChatHandler(chatPipeline, cacheClient, sqliteClient, cfg.Server.MaxPromptLength)
	placesHandler := handlers.NewPlacesHandler(resolver)
	routeHandler := handlers.NewRouteHandler()
	wsHandler := handlers.NewWebSocketHandler(chatPipeline, cfg.Server.MaxPromptLength)

	chatLimiter := ratelimit.New(cfg.RateLimit.ChatPerMinute)

	api := app.Group("/api/v1")

	api.Post("/chat", chatLimiter.Handler(), chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.HandleChatHistory)
	api.Get("/places", placesHandler.HandlePlaces)
	api.Post("/route-options", routeHandler.HandleRouteOptions)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"online": probe.Online(),
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
