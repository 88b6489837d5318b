package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

type SimilarHandler struct {
	resumeRepo repositories.ResumeRepository
	indexer    services.ResumeIndexer
	log        logrus.FieldLogger
}

func NewSimilarHandler(
	resumeRepo repositories.ResumeRepository,
	indexer services.ResumeIndexer,
	log logrus.FieldLogger,
) *SimilarHandler {
	return &SimilarHandler{
		resumeRepo: resumeRepo,
		indexer:    indexer,
		log:        log,
	}
}

// HandleSimilar handles GET /api/resumes/:id/similar
func (h *SimilarHandler) HandleSimilar(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Not found"})
	}

	limit := c.QueryInt("limit", defaultSimilarLimit)
	if limit < 1 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	log := h.log.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"resume_id":  id,
	})

	resume, err := h.resumeRepo.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Not found"})
		}
		log.WithError(err).Error("❌ Failed to fetch resume")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to fetch resume",
		})
	}

	matches, err := h.indexer.FindSimilar(c.UserContext(), resume, limit)
	if err != nil {
		log.WithError(err).Error("❌ Similar resume search failed")
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error: "Failed to search similar resumes",
		})
	}

	ids := make([]uint64, 0, len(matches))
	scores := make(map[uint64]float32, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ResumeID)
		scores[m.ResumeID] = m.Score
	}

	resumes, err := h.resumeRepo.FindByIDs(c.UserContext(), ids)
	if err != nil {
		log.WithError(err).Error("❌ Failed to load similar resumes")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to fetch resumes",
		})
	}

	response := make([]models.SimilarResume, 0, len(resumes))
	for _, r := range resumes {
		response = append(response, models.SimilarResume{
			Score:  scores[r.ID],
			Resume: r,
		})
	}

	return c.JSON(response)
}
