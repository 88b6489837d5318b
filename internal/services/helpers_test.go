package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

// buildPDF writes a minimal PDF with one text line per page. An empty string
// gives a page that only draws a rectangle.
func buildPDF(pages ...string) []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)

	for i, text := range pages {
		content := "0 0 100 100 re f"
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return buf.Bytes()
}

type memoryRepo struct {
	mu      sync.Mutex
	rows    []models.Resume
	nextID  uint64
	clock   time.Time
	failErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memoryRepo) Create(_ context.Context, resume *models.Resume) (*models.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	record := *resume
	record.ID = m.nextID
	record.UploadedAt = m.clock
	m.rows = append(m.rows, record)
	return &record, nil
}

func (m *memoryRepo) ListAll(context.Context) ([]models.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Resume, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uint64) (*models.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			row := r
			return &row, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", repositories.ErrNotFound, id)
}

func (m *memoryRepo) FindByIDs(ctx context.Context, ids []uint64) ([]models.Resume, error) {
	var out []models.Resume
	for _, id := range ids {
		if r, err := m.GetByID(ctx, id); err == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type stubInvoker struct {
	mu       sync.Mutex
	calls    int
	prompts  []Prompt
	response string
	errs     []error
}

func (s *stubInvoker) Invoke(_ context.Context, prompt Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return s.response, nil
}

type stubParser struct {
	text string
	err  error
}

func (s stubParser) ExtractText([]byte) (string, error) {
	return s.text, s.err
}
