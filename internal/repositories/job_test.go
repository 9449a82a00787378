package repositories

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	return db, mock
}

func sampleReport(t *testing.T) (*models.MatchReport, []byte) {
	t.Helper()

	report := &models.MatchReport{
		Scores: models.CategoryScores{SkillsMatch: 80, ExperienceMatch: 70, EducationMatch: 60},
		Strengths: models.CategoryFindings{
			Skills: []string{"Strong Go background"},
		},
	}
	report.Normalize()

	payload, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("failed to marshal report: %v", err)
	}
	return report, payload
}

func jobColumns() []string {
	return []string{"id", "status", "result", "error_message", "created_at", "updated_at"}
}

func TestJobCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "analysis_jobs"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &models.AnalysisJob{ID: uuid.New(), Status: models.StatusPending}
	if err := repo.Create(job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestJobFindByIDCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	jobID := uuid.New()
	report, payload := sampleReport(t)

	rows := sqlmock.NewRows(jobColumns()).
		AddRow(jobID.String(), "completed", payload, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "analysis_jobs" WHERE id =`)).
		WillReturnRows(rows)

	job, err := repo.FindByID(jobID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	if job.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
	if job.Result == nil {
		t.Fatal("result column not deserialized")
	}
	if job.Result.Scores.Overall != report.Scores.Overall {
		t.Errorf("overall = %d, want %d", job.Result.Scores.Overall, report.Scores.Overall)
	}
	if len(job.Result.Strengths.Skills) != 1 {
		t.Errorf("strengths not round-tripped: %+v", job.Result.Strengths)
	}
}

func TestJobFindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "analysis_jobs" WHERE id =`)).
		WillReturnRows(sqlmock.NewRows(jobColumns()))

	_, err := repo.FindByID(uuid.New())
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("error = %v, want ErrJobNotFound", err)
	}
}

func TestJobMarkCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	report, _ := sampleReport(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "analysis_jobs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkCompleted(uuid.New(), report); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestJobMarkCompletedMissingJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	report, _ := sampleReport(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "analysis_jobs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkCompleted(uuid.New(), report)
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("error = %v, want ErrJobNotFound", err)
	}
}

func TestJobMarkFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "analysis_jobs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkFailed(uuid.New(), "both evaluators unavailable"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
}

func TestJobMarkFailedMissingJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "analysis_jobs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkFailed(uuid.New(), "boom"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("error = %v, want ErrJobNotFound", err)
	}
}

func TestJobDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "analysis_jobs"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(uuid.New()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
