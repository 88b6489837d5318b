package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type fakeAnalyzer struct {
	mu     sync.Mutex
	docs   []models.UploadedDocument
	result *models.Resume
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, doc models.UploadedDocument) (*models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	out.FileName = doc.FileName
	return &out, nil
}

type fakeRepo struct {
	rows []models.Resume
	err  error
}

func (f *fakeRepo) Create(context.Context, *models.Resume) (*models.Resume, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeRepo) ListAll(context.Context) ([]models.Resume, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Resume, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uint64) (*models.Resume, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			row := r
			return &row, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", repositories.ErrNotFound, id)
}

func (f *fakeRepo) FindByIDs(ctx context.Context, ids []uint64) ([]models.Resume, error) {
	out := make([]models.Resume, 0, len(ids))
	for _, id := range ids {
		if r, err := f.GetByID(ctx, id); err == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeWorker struct {
	mu  sync.Mutex
	ids []uint64
}

func (f *fakeWorker) Start(context.Context) {}
func (f *fakeWorker) Stop()                 {}

func (f *fakeWorker) EnqueueJob(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
}

type fakeIndexer struct {
	results []services.SearchResult
	err     error
	limits  []int
}

func (f *fakeIndexer) Index(context.Context, *models.Resume) error { return nil }

func (f *fakeIndexer) FindSimilar(_ context.Context, _ *models.Resume, limit int) ([]services.SearchResult, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func strPtr(s string) *string { return &s }

func storedResume(id uint64, fileName string) models.Resume {
	return models.Resume{
		ID:         id,
		FileName:   fileName,
		Name:       strPtr("Jane Doe"),
		UploadedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
}

func newTestApp(analyzer services.ResumeAnalyzer, repo repositories.ResumeRepository, worker services.Worker, indexer services.ResumeIndexer) *fiber.App {
	log := logger.Discard()
	var similar *SimilarHandler
	if indexer != nil {
		similar = NewSimilarHandler(repo, indexer, log)
	}
	return NewApp(
		AppConfig{BodyLimit: 4 << 20},
		NewResumeHandler(analyzer, repo, worker, 1<<20, log),
		similar,
	)
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if field != "" {
		part, err := mw.CreateFormFile(field, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	} else if err := mw.WriteField("note", "no file here"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	return doRequest(t, app, httptest.NewRequest(http.MethodGet, path, nil))
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}
