package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

// ResumeAnalyzer runs the whole upload pipeline:
// extract -> prompt -> invoke -> parse -> assemble -> persist.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, doc models.UploadedDocument) (*models.Resume, error)
}

type analyzerService struct {
	resumeRepo    repositories.ResumeRepository
	pdfParser     PDFParserService
	promptBuilder *PromptBuilder
	invoker       AnalysisInvoker
	log           logrus.FieldLogger
}

func NewAnalyzerService(
	resumeRepo repositories.ResumeRepository,
	pdfParser PDFParserService,
	invoker AnalysisInvoker,
	log logrus.FieldLogger,
) ResumeAnalyzer {
	return &analyzerService{
		resumeRepo:    resumeRepo,
		pdfParser:     pdfParser,
		promptBuilder: NewPromptBuilder(),
		invoker:       invoker,
		log:           log,
	}
}

// Analyze implements ResumeAnalyzer. Nothing is stored unless every stage
// succeeded; failures come back as *StageError.
func (a *analyzerService) Analyze(ctx context.Context, doc models.UploadedDocument) (*models.Resume, error) {
	log := a.log.WithFields(logrus.Fields{
		"file_name":  doc.FileName,
		"media_type": doc.MediaType,
		"size_bytes": len(doc.Data),
	})

	fail := func(stage string, err error) error {
		log.WithField("stage", stage).WithError(err).Error("❌ Resume analysis failed")
		return &StageError{Stage: stage, FileName: doc.FileName, Err: err}
	}

	// Step 1: Extract text
	log.Info("📄 Extracting resume text...")
	text, err := a.pdfParser.ExtractText(doc.Data)
	if err != nil {
		return nil, fail(StageExtract, err)
	}
	if text == "" {
		log.Warn("⚠️ No extractable text in PDF, analyzing empty resume")
	}

	// Step 2: Build prompt
	prompt := a.promptBuilder.BuildResumeAnalysisPrompt(text)

	// Step 3: Ask the model
	log.WithField("text_chars", len(text)).Info("🤖 Analyzing resume with LLM...")
	response, err := a.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, fail(StageInvoke, err)
	}

	// Step 4: Parse and coerce
	analysis, err := ParseAnalysis(response)
	if err != nil {
		return nil, fail(StageParse, err)
	}

	// Step 5: Persist
	record := AssembleRecord(*analysis, doc.FileName)
	stored, err := a.resumeRepo.Create(ctx, record)
	if err != nil {
		return nil, fail(StagePersist, err)
	}

	log.WithField("resume_id", stored.ID).Info("✅ Resume analysis stored")
	return stored, nil
}
