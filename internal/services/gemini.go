package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"alfredoptarigan/resume-analyzer/internal/config"
)

// AnalysisInvoker sends a prompt to a generative model and returns its raw
// reply. Failures are ErrModelUnavailable, ErrModelTimeout or ErrModelRefusal.
type AnalysisInvoker interface {
	Invoke(ctx context.Context, prompt Prompt) (string, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	AnalysisInvoker
	Embedder
}

type geminiService struct {
	client          *genai.Client
	modelName       string
	embedModel      string
	timeout         time.Duration
	temperature     float32
	maxOutputTokens int32
	log             logrus.FieldLogger
}

func NewGeminiService(cfg config.GeminiConfig, log logrus.FieldLogger) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &geminiService{
		client:          client,
		modelName:       cfg.Model,
		embedModel:      cfg.EmbedModel,
		timeout:         timeout,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		log:             log,
	}, nil
}

// Invoke implements AnalysisInvoker. The instructions travel as the system
// instruction and only the fenced resume text is sent as user content.
func (g *geminiService) Invoke(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   g.maxOutputTokens,
		ResponseMIMEType:  "application/json",
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt.User), genConfig)
	if err != nil {
		classified := classifyGeminiError(ctx, err)
		g.log.WithFields(logrus.Fields{
			"model":      g.modelName,
			"latency_ms": time.Since(start).Milliseconds(),
		}).WithError(classified).Warn("❌ Gemini request failed")
		return "", classified
	}

	text, err := responseText(resp)
	if err != nil {
		g.log.WithField("model", g.modelName).WithError(err).Warn("⚠️ Gemini returned no usable answer")
		return "", err
	}

	g.log.WithFields(logrus.Fields{
		"model":         g.modelName,
		"latency_ms":    time.Since(start).Milliseconds(),
		"response_size": len(text),
	}).Debug("📊 Gemini response received")

	return text, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateUTF8(text, maxEmbedBytes)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", classifyGeminiError(ctx, err))
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Truncate text if too long (max ~10000 tokens for embedding)
const maxEmbedBytes = 40000

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrModelRefusal)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrModelRefusal, fb.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrModelRefusal)
	}

	switch reason := resp.Candidates[0].FinishReason; reason {
	case genai.FinishReasonSafety,
		genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII:
		return "", fmt.Errorf("%w: finish reason %s", ErrModelRefusal, reason)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrModelRefusal)
	}

	return text, nil
}

func classifyGeminiError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrModelTimeout, err)
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	case errors.As(err, &apiErr):
		code = apiErr.Code
	}

	if code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout {
		return fmt.Errorf("%w: %v", ErrModelTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
}
