package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

var (
	ErrNotFound           = errors.New("resume not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) (*models.Resume, error)
	ListAll(ctx context.Context) ([]models.Resume, error)
	GetByID(ctx context.Context, id uint64) (*models.Resume, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]models.Resume, error)
}

type resumeRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db, now: time.Now}
}

// Create implements ResumeRepository. The id comes from the table's
// auto-increment column. uploaded_at never goes backwards: inserts are
// serialized and a clock behind the newest row is moved just past it.
func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) (*models.Resume, error) {
	record := *resume
	record.ID = 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("LOCK TABLE resumes IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		var latest []models.Resume
		if err := tx.Select("uploaded_at").Order("uploaded_at DESC").Limit(1).Find(&latest).Error; err != nil {
			return err
		}

		record.UploadedAt = r.now().UTC().Truncate(time.Microsecond)
		if len(latest) > 0 {
			if floor := latest[0].UploadedAt.UTC(); !record.UploadedAt.After(floor) {
				record.UploadedAt = floor.Add(time.Microsecond)
			}
		}

		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create resume: %w", ErrStorageUnavailable, err)
	}

	return &record, nil
}

// ListAll implements ResumeRepository.
func (r *resumeRepository) ListAll(ctx context.Context) ([]models.Resume, error) {
	resumes := make([]models.Resume, 0)
	err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&resumes).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list resumes: %w", ErrStorageUnavailable, err)
	}
	if resumes == nil {
		resumes = []models.Resume{}
	}

	return resumes, nil
}

// GetByID implements ResumeRepository.
func (r *resumeRepository) GetByID(ctx context.Context, id uint64) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to find resume: %w", ErrStorageUnavailable, err)
	}

	return &resume, nil
}

// FindByIDs implements ResumeRepository. Rows come back in the order of ids;
// ids without a row are skipped.
func (r *resumeRepository) FindByIDs(ctx context.Context, ids []uint64) ([]models.Resume, error) {
	if len(ids) == 0 {
		return []models.Resume{}, nil
	}

	var rows []models.Resume
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to find resumes: %w", ErrStorageUnavailable, err)
	}

	byID := make(map[uint64]models.Resume, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	resumes := make([]models.Resume, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			resumes = append(resumes, row)
		}
	}

	return resumes, nil
}
