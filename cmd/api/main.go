package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/config"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/handlers"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/logger"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/observability/metrics"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/repositories"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Server.Env != "development", cfg.Server.Env == "development")
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()
	sugar.Info("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		sugar.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	cacheRepo := repositories.NewAnalysisCacheRepository(db)
	sugar.Info("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		sugar.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	pipelineMetrics := metrics.NewPipelineMetrics()
	sugar.Info("✅ Services initialized successfully")

	// Initialize the external evaluator chain. Without a Gemini credential
	// the service still runs; every analysis then uses the keyword path.
	rateGate := services.NewRateGate(cfg.Analysis.DailyQuota, time.Now, sugar)

	var generator services.TextGenerator
	if cfg.Gemini.APIKey != "" {
		generator, err = services.NewGeminiGenerator(
			context.Background(),
			cfg.Gemini.APIKey,
			cfg.Gemini.Model,
			cfg.Analysis.RetryMaxAttempts,
			sugar,
		)
		if err != nil {
			sugar.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		sugar.Info("✅ Gemini AI initialized successfully")
	} else {
		sugar.Warn("⚠️ GEMINI_API_KEY not set, analyses will use keyword matching only")
	}

	externalEvaluator := services.NewExternalEvaluator(
		generator,
		rateGate,
		cfg.Analysis.TruncateLength,
		cfg.Analysis.EvaluateTimeout,
		sugar,
	)
	heuristicEvaluator := services.NewHeuristicEvaluator()
	engine := services.NewAnalysisEngine(externalEvaluator, heuristicEvaluator, pipelineMetrics, sugar)
	sugar.Info("✅ Analysis engine initialized")

	// Initialize worker
	processor := services.NewAnalysisProcessor(jobRepo, cacheRepo, engine, storageService, pipelineMetrics, sugar)
	worker := services.NewWorker(processor, cfg.Worker.Concurrency, cfg.Worker.QueueSize, sugar)

	ctx := context.Background()
	worker.Start(ctx)
	sugar.Info("✅ Worker started successfully")

	orchestrator := services.NewOrchestrator(
		jobRepo,
		cacheRepo,
		worker,
		cfg.Analysis.MaxTargetLength,
		pipelineMetrics,
		sugar,
	)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, cfg.Storage.MaxFileSize)
	analyzeHandler := handlers.NewAnalyzeHandler(docRepo, pdfParser, orchestrator)
	jobHandler := handlers.NewJobHandler(orchestrator)
	sugar.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Match Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/job/:jobId", jobHandler.HandleGetJob)

	// Metrics
	app.Get("/metrics", adaptor.HTTPHandler(pipelineMetrics.Handler()))

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Match Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/analyze",
				"GET /api/v1/job/:jobId",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		sugar.Info("🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			sugar.Errorf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	sugar.Infof("🚀 Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		sugar.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
