package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
)

var ErrCacheMiss = errors.New("no cached analysis for fingerprint")

// AnalysisCacheRepository is the content-addressed result cache. Store is a
// no-op when an entry already exists for the fingerprint (ON CONFLICT DO
// NOTHING): the first stored result wins and is treated as stable.
type AnalysisCacheRepository interface {
	Lookup(fingerprint string) (*models.MatchReport, error)
	Store(fingerprint string, report *models.MatchReport) error
}

type analysisCacheRepository struct {
	db *gorm.DB
}

func NewAnalysisCacheRepository(db *gorm.DB) AnalysisCacheRepository {
	return &analysisCacheRepository{db: db}
}

func (r *analysisCacheRepository) Lookup(fingerprint string) (*models.MatchReport, error) {
	var entry models.AnalysisCache
	if err := r.db.Where("fingerprint = ?", fingerprint).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to look up cached analysis: %w", err)
	}

	if entry.Result == nil {
		return nil, fmt.Errorf("cached analysis for %s has no result payload", fingerprint)
	}

	return entry.Result, nil
}

func (r *analysisCacheRepository) Store(fingerprint string, report *models.MatchReport) error {
	entry := models.AnalysisCache{
		Fingerprint: fingerprint,
		Result:      report,
	}

	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to store cached analysis: %w", err)
	}

	return nil
}
