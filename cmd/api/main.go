package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level)
	log.Info("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize database")
	}

	resumeRepo := repositories.NewResumeRepository(db)
	log.Info("✅ Repositories initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize Gemini AI")
	}
	log.WithField("model", cfg.Gemini.Model).Info("✅ Gemini AI initialized successfully")

	invoker := services.NewRetryingInvoker(
		geminiService,
		cfg.Worker.RetryMaxAttempts,
		cfg.Worker.RetryInitialDelay,
		log,
	)

	analyzer := services.NewAnalyzerService(
		resumeRepo,
		services.NewPDFParserService(),
		invoker,
		log,
	)
	log.Info("✅ Analyzer service initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Similar-resume index is optional
	var (
		worker         services.Worker
		similarHandler *handlers.SimilarHandler
	)
	if cfg.Qdrant.Enabled() {
		qdrantService, err := services.NewQdrantService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			cfg.Qdrant.VectorSize,
			log,
		)
		if err != nil {
			log.WithError(err).Fatal("❌ Failed to initialize Qdrant")
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.WithError(err).Fatal("❌ Failed to initialize Qdrant collection")
		}
		log.Info("✅ Qdrant initialized successfully")

		indexer := services.NewResumeIndexer(geminiService, qdrantService)
		worker = services.NewWorker(resumeRepo, indexer, cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)
		worker.Start(ctx)
		similarHandler = handlers.NewSimilarHandler(resumeRepo, indexer, log)
	} else {
		log.Info("ℹ️ QDRANT_URL not set, similar-resume index disabled")
	}

	resumeHandler := handlers.NewResumeHandler(
		analyzer,
		resumeRepo,
		worker,
		cfg.Upload.MaxFileSize,
		log,
	)

	// The form carries some overhead on top of the file itself.
	app := handlers.NewApp(handlers.AppConfig{
		BodyLimit: int(cfg.Upload.MaxFileSize) + 1<<20,
		AccessLog: true,
	}, resumeHandler, similarHandler)
	log.Info("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("❌ Server forced to shutdown")
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.WithField("addr", addr).Info("🚀 Server starting")

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("❌ Failed to start server")
	}

	if worker != nil {
		worker.Stop()
	}
	cancel()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("✅ Server stopped")
}
