package main

import (
	"context"
	"os"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// Rebuilds the similar-resume index from every stored resume.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level)
	log.Info("🚀 Starting resume reindex...")

	if !cfg.Qdrant.Enabled() {
		log.Fatal("❌ QDRANT_URL is required for reindexing")
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize database")
	}
	resumeRepo := repositories.NewResumeRepository(db)

	geminiService, err := services.NewGeminiService(cfg.Gemini, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize Gemini")
	}

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

	ctx := context.Background()
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize collection")
	}

	indexer := services.NewResumeIndexer(geminiService, qdrantService)

	resumes, err := resumeRepo.ListAll(ctx)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to list resumes")
	}
	log.WithField("count", len(resumes)).Info("📋 Resumes to index")

	successCount := 0
	failCount := 0

	for i := range resumes {
		resume := &resumes[i]
		entry := log.WithField("resume_id", resume.ID)

		if err := indexer.Index(ctx, resume); err != nil {
			entry.WithError(err).Error("❌ Failed to index resume")
			failCount++
			continue
		}

		successCount++
		if successCount%25 == 0 || i == len(resumes)-1 {
			entry.WithField("progress", successCount+failCount).Info("📊 Progress")
		}
	}

	// Summary
	log.Info(strings.Repeat("=", 60))
	log.WithField("successful", successCount).WithField("failed", failCount).Info("📊 Reindex Summary")
	log.Info(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Warn("⚠️  Some resumes failed to index. Please check the logs above.")
		os.Exit(1)
	}

	log.Info("✅ All resumes indexed successfully!")
}
