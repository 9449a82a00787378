package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
)

var ErrJobNotFound = errors.New("analysis job not found")

// JobRepository persists analysis job lifecycle records. A job is created
// pending, transitioned to exactly one terminal state, and deleted when a
// terminal state is observed.
type JobRepository interface {
	Create(job *models.AnalysisJob) error
	FindByID(id uuid.UUID) (*models.AnalysisJob, error)
	MarkCompleted(id uuid.UUID, result *models.MatchReport) error
	MarkFailed(id uuid.UUID, errorMsg string) error
	Delete(id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.AnalysisJob) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create analysis job: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(id uuid.UUID) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find analysis job: %w", err)
	}
	return &job, nil
}

// MarkCompleted uses struct-based Updates so the jsonb serializer applies to
// the result column.
func (r *jobRepository) MarkCompleted(id uuid.UUID, report *models.MatchReport) error {
	result := r.db.Model(&models.AnalysisJob{}).
		Where("id = ?", id).
		Updates(models.AnalysisJob{
			Status: models.StatusCompleted,
			Result: report,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark job completed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

func (r *jobRepository) MarkFailed(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.AnalysisJob{}).
		Where("id = ?", id).
		Updates(models.AnalysisJob{
			Status:       models.StatusFailed,
			ErrorMessage: &errorMsg,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark job failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

func (r *jobRepository) Delete(id uuid.UUID) error {
	if err := r.db.Where("id = ?", id).Delete(&models.AnalysisJob{}).Error; err != nil {
		return fmt.Errorf("failed to delete analysis job: %w", err)
	}
	return nil
}
