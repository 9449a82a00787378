package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/observability/metrics"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/repositories"
)

// ArtifactCleaner removes a transient input artifact the background task was
// given ownership of.
type ArtifactCleaner interface {
	Remove(path string) error
}

// analysisProcessor is the error boundary of a background analysis task.
// Whatever happens inside it — evaluator failure, persistence failure, even
// a panic — ends up on the job record, never escapes to the caller.
type analysisProcessor struct {
	jobRepo   repositories.JobRepository
	cacheRepo repositories.AnalysisCacheRepository
	engine    AnalysisEngine
	cleaner   ArtifactCleaner
	metrics   *metrics.PipelineMetrics
	logger    *zap.SugaredLogger
}

func NewAnalysisProcessor(
	jobRepo repositories.JobRepository,
	cacheRepo repositories.AnalysisCacheRepository,
	engine AnalysisEngine,
	cleaner ArtifactCleaner,
	m *metrics.PipelineMetrics,
	logger *zap.SugaredLogger,
) TaskProcessor {
	return &analysisProcessor{
		jobRepo:   jobRepo,
		cacheRepo: cacheRepo,
		engine:    engine,
		cleaner:   cleaner,
		metrics:   m,
		logger:    logger,
	}
}

// Process implements TaskProcessor.
func (p *analysisProcessor) Process(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf("❌ Analysis panicked for job %s: %v", task.JobID, r)
			p.fail(task.JobID, fmt.Sprintf("analysis panicked: %v", r))
		}
	}()
	defer p.cleanup(task.CleanupPath)

	report, err := p.engine.Analyze(ctx, task.DocumentText, task.TargetDescription)
	if err != nil {
		p.logger.Errorf("❌ Analysis failed for job %s: %v", task.JobID, err)
		p.fail(task.JobID, err.Error())
		return
	}

	// An unsaved result is indistinguishable from one that never ran, so a
	// cache write failure fails the job instead of being dropped.
	if err := p.cacheRepo.Store(task.Fingerprint, report); err != nil {
		p.logger.Errorf("❌ Failed to cache result for job %s: %v", task.JobID, err)
		p.fail(task.JobID, fmt.Sprintf("%v: %v", ErrPersistence, err))
		return
	}

	if err := p.jobRepo.MarkCompleted(task.JobID, report); err != nil {
		p.logger.Errorf("❌ Failed to complete job %s: %v", task.JobID, err)
		p.metrics.JobFinished(string(models.StatusFailed))
		return
	}

	p.metrics.JobFinished(string(models.StatusCompleted))
	p.logger.Infof("✅ Analysis completed for job %s", task.JobID)
}

func (p *analysisProcessor) fail(jobID uuid.UUID, message string) {
	if err := p.jobRepo.MarkFailed(jobID, message); err != nil {
		p.logger.Errorf("❌ Failed to record failure for job %s: %v", jobID, err)
	}
	p.metrics.JobFinished(string(models.StatusFailed))
}

// cleanup is best-effort: a leftover upload is logged, never escalated.
func (p *analysisProcessor) cleanup(path string) {
	if path == "" || p.cleaner == nil {
		return
	}
	if err := p.cleaner.Remove(path); err != nil {
		p.logger.Warnf("⚠️ Failed to delete resume file %s: %v", path, err)
		return
	}
	p.logger.Infof("🧹 Deleted resume file %s", path)
}
