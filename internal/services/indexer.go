package services

import (
	"context"
	"fmt"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// ResumeIndexer keeps the similar-resume index in sync with stored resumes.
type ResumeIndexer interface {
	Index(ctx context.Context, resume *models.Resume) error
	FindSimilar(ctx context.Context, resume *models.Resume, limit int) ([]SearchResult, error)
}

type resumeIndexer struct {
	embedder Embedder
	store    QdrantService
}

func NewResumeIndexer(embedder Embedder, store QdrantService) ResumeIndexer {
	return &resumeIndexer{embedder: embedder, store: store}
}

// Index implements ResumeIndexer.
func (i *resumeIndexer) Index(ctx context.Context, resume *models.Resume) error {
	embedding, err := i.embedder.GenerateEmbedding(ctx, ProfileText(resume))
	if err != nil {
		return fmt.Errorf("failed to embed resume %d: %w", resume.ID, err)
	}

	if err := i.store.UpsertResume(ctx, resume.ID, resume.FileName, embedding); err != nil {
		return fmt.Errorf("failed to index resume %d: %w", resume.ID, err)
	}

	return nil
}

// FindSimilar implements ResumeIndexer. The resume itself is never returned.
func (i *resumeIndexer) FindSimilar(ctx context.Context, resume *models.Resume, limit int) ([]SearchResult, error) {
	embedding, err := i.embedder.GenerateEmbedding(ctx, ProfileText(resume))
	if err != nil {
		return nil, fmt.Errorf("failed to embed resume %d: %w", resume.ID, err)
	}

	results, err := i.store.SearchSimilar(ctx, embedding, resume.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar resumes: %w", err)
	}

	return results, nil
}

// ProfileText renders the stored analysis as the text that gets embedded.
// It only uses analysis fields, never the original document.
func ProfileText(resume *models.Resume) string {
	var parts []string

	if resume.Summary != nil {
		parts = append(parts, "Summary: "+*resume.Summary)
	}

	var roles []string
	for _, w := range resume.WorkExperience {
		switch {
		case w.Role != "" && w.Company != "":
			roles = append(roles, w.Role+" at "+w.Company)
		case w.Role != "":
			roles = append(roles, w.Role)
		}
	}
	if len(roles) > 0 {
		parts = append(parts, "Roles: "+strings.Join(roles, "; "))
	}

	if len(resume.TechnicalSkills) > 0 {
		parts = append(parts, "Technical skills: "+strings.Join(resume.TechnicalSkills, ", "))
	}
	if len(resume.SoftSkills) > 0 {
		parts = append(parts, "Soft skills: "+strings.Join(resume.SoftSkills, ", "))
	}

	var projects []string
	for _, p := range resume.Projects {
		if p.Name != "" {
			projects = append(projects, p.Name)
		}
	}
	if len(projects) > 0 {
		parts = append(parts, "Projects: "+strings.Join(projects, ", "))
	}

	if len(resume.Certifications) > 0 {
		parts = append(parts, "Certifications: "+strings.Join(resume.Certifications, ", "))
	}

	if len(parts) == 0 {
		return resume.FileName
	}
	return strings.Join(parts, "\n")
}
