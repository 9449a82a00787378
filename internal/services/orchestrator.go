package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/observability/metrics"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/repositories"
)

// SubmitInput is the immutable analysis request after the document reference
// has been resolved to text.
type SubmitInput struct {
	DocumentText      string
	TargetDescription string
	CleanupPath       string
}

// SubmitOutcome is either an immediate cached report or a job handle to poll.
type SubmitOutcome struct {
	CachedReport *models.MatchReport
	JobID        uuid.UUID
}

type StatusOutcome struct {
	Status       models.JobStatus
	Report       *models.MatchReport
	ErrorMessage string
}

// Orchestrator is the public entry point of the analysis pipeline: it checks
// the cache, creates jobs, hands them to the worker pool and answers polls.
type Orchestrator interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitOutcome, error)
	QueryStatus(ctx context.Context, jobID uuid.UUID) (*StatusOutcome, error)
}

type orchestrator struct {
	jobRepo      repositories.JobRepository
	cacheRepo    repositories.AnalysisCacheRepository
	worker       Worker
	maxTargetLen int
	metrics      *metrics.PipelineMetrics
	logger       *zap.SugaredLogger
}

func NewOrchestrator(
	jobRepo repositories.JobRepository,
	cacheRepo repositories.AnalysisCacheRepository,
	worker Worker,
	maxTargetLen int,
	m *metrics.PipelineMetrics,
	logger *zap.SugaredLogger,
) Orchestrator {
	return &orchestrator{
		jobRepo:      jobRepo,
		cacheRepo:    cacheRepo,
		worker:       worker,
		maxTargetLen: maxTargetLen,
		metrics:      m,
		logger:       logger,
	}
}

// Fingerprint derives the deterministic cache key of a request. Two requests
// with the same fingerprint are the same unit of work and are never charged
// twice against the external quota once a result exists.
func Fingerprint(documentText, targetDescription string) string {
	h := sha256.New()
	h.Write([]byte(documentText))
	h.Write([]byte{0})
	h.Write([]byte(targetDescription))
	return hex.EncodeToString(h.Sum(nil))
}

// Submit implements Orchestrator. On a cache hit it returns the stored
// report synchronously without creating a job; otherwise it persists a
// pending job, enqueues the analysis and returns the job id immediately.
func (o *orchestrator) Submit(ctx context.Context, input SubmitInput) (*SubmitOutcome, error) {
	if err := o.validate(input); err != nil {
		return nil, err
	}
	o.metrics.Submission()

	fingerprint := Fingerprint(input.DocumentText, input.TargetDescription)

	report, err := o.cacheRepo.Lookup(fingerprint)
	if err == nil {
		o.logger.Infof("🎯 Returning cached analysis for fingerprint %.12s", fingerprint)
		o.metrics.CacheHit()
		return &SubmitOutcome{CachedReport: report}, nil
	}
	if !errors.Is(err, repositories.ErrCacheMiss) {
		// A broken cache should not block fresh analyses.
		o.logger.Warnf("⚠️ Cache lookup failed, proceeding without cache: %v", err)
	}

	job := &models.AnalysisJob{
		ID:     uuid.New(),
		Status: models.StatusPending,
	}
	if err := o.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create analysis job: %w", err)
	}

	o.worker.Enqueue(Task{
		JobID:             job.ID,
		Fingerprint:       fingerprint,
		DocumentText:      input.DocumentText,
		TargetDescription: input.TargetDescription,
		CleanupPath:       input.CleanupPath,
	})

	return &SubmitOutcome{JobID: job.ID}, nil
}

func (o *orchestrator) validate(input SubmitInput) error {
	if input.DocumentText == "" {
		return fmt.Errorf("%w: document text is empty", ErrValidation)
	}
	if input.TargetDescription == "" {
		return fmt.Errorf("%w: job description is required", ErrValidation)
	}
	if length := utf8.RuneCountInString(input.TargetDescription); length > o.maxTargetLen {
		return fmt.Errorf("%w: job description exceeds %d character limit", ErrValidation, o.maxTargetLen)
	}
	return nil
}

// QueryStatus implements Orchestrator. A terminal state is observable
// exactly once: the job record is deleted in the same call that returns it,
// so a repeat query answers not-found. Pending jobs are left untouched.
func (o *orchestrator) QueryStatus(ctx context.Context, jobID uuid.UUID) (*StatusOutcome, error) {
	job, err := o.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to query job status: %w", err)
	}

	switch job.Status {
	case models.StatusCompleted:
		o.consume(job.ID)
		return &StatusOutcome{Status: models.StatusCompleted, Report: job.Result}, nil
	case models.StatusFailed:
		o.consume(job.ID)
		message := "analysis failed"
		if job.ErrorMessage != nil {
			message = *job.ErrorMessage
		}
		return &StatusOutcome{Status: models.StatusFailed, ErrorMessage: message}, nil
	default:
		return &StatusOutcome{Status: models.StatusPending}, nil
	}
}

func (o *orchestrator) consume(jobID uuid.UUID) {
	if err := o.jobRepo.Delete(jobID); err != nil {
		o.logger.Warnf("⚠️ Failed to delete observed job %s: %v", jobID, err)
	}
}
