package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// UploadField is the multipart field the upload endpoint reads first.
const UploadField = "resume"

type ResumeHandler struct {
	analyzer    services.ResumeAnalyzer
	resumeRepo  repositories.ResumeRepository
	worker      services.Worker
	maxFileSize int64
	log         logrus.FieldLogger
}

// NewResumeHandler builds the resume endpoints. worker may be nil when the
// similar-resume index is disabled.
func NewResumeHandler(
	analyzer services.ResumeAnalyzer,
	resumeRepo repositories.ResumeRepository,
	worker services.Worker,
	maxFileSize int64,
	log logrus.FieldLogger,
) *ResumeHandler {
	return &ResumeHandler{
		analyzer:    analyzer,
		resumeRepo:  resumeRepo,
		worker:      worker,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleUpload handles POST /api/resumes/upload
func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader := uploadedFile(c)
	if fileHeader == nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "No file uploaded",
		})
	}

	log := h.log.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"file_name":  fileHeader.Filename,
	})

	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	data, err := readFile(fileHeader)
	if err != nil {
		log.WithError(err).Error("❌ Failed to read uploaded file")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to analyze resume",
		})
	}

	resume, err := h.analyzer.Analyze(c.UserContext(), models.UploadedDocument{
		Data:      data,
		FileName:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get(fiber.HeaderContentType),
	})
	if err != nil {
		var stageErr *services.StageError
		if errors.As(err, &stageErr) {
			log = log.WithField("stage", stageErr.Stage)
		}
		log.WithError(err).Error("❌ Upload failed")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to analyze resume",
		})
	}

	if h.worker != nil {
		h.worker.EnqueueJob(resume.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(resume)
}

// HandleList handles GET /api/resumes
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	resumes, err := h.resumeRepo.ListAll(c.UserContext())
	if err != nil {
		h.log.WithField("request_id", requestID(c)).WithError(err).Error("❌ Failed to list resumes")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to fetch resumes",
		})
	}

	return c.JSON(resumes)
}

// HandleGet handles GET /api/resumes/:id
func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := resumeID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Not found"})
	}

	resume, err := h.resumeRepo.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Not found"})
		}
		h.log.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"resume_id":  id,
		}).WithError(err).Error("❌ Failed to fetch resume")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to fetch resume",
		})
	}

	return c.JSON(resume)
}

// uploadedFile prefers the "resume" field and falls back to any single file
// in the form.
func uploadedFile(c *fiber.Ctx) *multipart.FileHeader {
	if fh, err := c.FormFile(UploadField); err == nil {
		return fh
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	for _, files := range form.File {
		if len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func resumeID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
