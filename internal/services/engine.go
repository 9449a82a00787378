package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/observability/metrics"
)

// AnalysisEngine selects between the external and the heuristic evaluator
// and normalizes the outcome into a canonical report.
type AnalysisEngine interface {
	Analyze(ctx context.Context, documentText, targetDescription string) (*models.MatchReport, error)
}

type analysisEngine struct {
	external  Evaluator
	heuristic Evaluator
	metrics   *metrics.PipelineMetrics
	logger    *zap.SugaredLogger
}

func NewAnalysisEngine(
	external Evaluator,
	heuristic Evaluator,
	m *metrics.PipelineMetrics,
	logger *zap.SugaredLogger,
) AnalysisEngine {
	return &analysisEngine{
		external:  external,
		heuristic: heuristic,
		metrics:   m,
		logger:    logger,
	}
}

// Analyze tries the external evaluator first and falls back to the keyword
// evaluator on any failure. The fallback is unconditional: an external
// quota, config, upstream or timeout failure never reaches the caller as
// long as the heuristic path succeeds.
func (e *analysisEngine) Analyze(ctx context.Context, documentText, targetDescription string) (*models.MatchReport, error) {
	report, err := e.external.Evaluate(ctx, documentText, targetDescription)
	if err != nil {
		e.logger.Warnf("⚠️ External evaluation failed, falling back to keyword analysis: %v", err)
		e.metrics.Fallback()
		if errors.Is(err, ErrQuotaExceeded) {
			e.metrics.QuotaDenied()
		}

		report, err = e.heuristic.Evaluate(ctx, documentText, targetDescription)
		if err != nil {
			return nil, fmt.Errorf("%w: keyword analysis: %v", ErrAnalysisFailed, err)
		}
	}

	report.Normalize()
	return report, nil
}
