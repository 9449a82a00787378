package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/observability/metrics"
)

type fakeEvaluator struct {
	report *models.MatchReport
	err    error
	calls  int
}

func (f *fakeEvaluator) Evaluate(context.Context, string, string) (*models.MatchReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func reportWithScores(skills, experience, education int) *models.MatchReport {
	report := &models.MatchReport{
		Scores: models.CategoryScores{
			SkillsMatch:     skills,
			ExperienceMatch: experience,
			EducationMatch:  education,
		},
	}
	report.Normalize()
	return report
}

func newTestEngine(external, heuristic Evaluator) AnalysisEngine {
	return NewAnalysisEngine(external, heuristic, metrics.NewPipelineMetrics(), zap.NewNop().Sugar())
}

func TestAnalyzeUsesExternalResult(t *testing.T) {
	external := &fakeEvaluator{report: reportWithScores(90, 80, 70)}
	heuristic := &fakeEvaluator{report: reportWithScores(10, 10, 10)}
	engine := newTestEngine(external, heuristic)

	report, err := engine.Analyze(context.Background(), "resume", "job")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Scores.SkillsMatch != 90 {
		t.Errorf("skills = %d, want external evaluator's 90", report.Scores.SkillsMatch)
	}
	if heuristic.calls != 0 {
		t.Errorf("heuristic invoked %d times despite external success", heuristic.calls)
	}
}

func TestAnalyzeFallsBackOnAnyExternalFailure(t *testing.T) {
	failures := []error{
		fmt.Errorf("%w: 6 attempts today", ErrQuotaExceeded),
		fmt.Errorf("%w: missing API credential", ErrConfig),
		fmt.Errorf("%w: malformed payload", ErrUpstream),
		fmt.Errorf("%w after 30s", ErrTimeout),
	}

	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			external := &fakeEvaluator{err: failure}
			heuristic := &fakeEvaluator{report: reportWithScores(40, 50, 60)}
			engine := newTestEngine(external, heuristic)

			report, err := engine.Analyze(context.Background(), "resume", "job")
			if err != nil {
				t.Fatalf("Analyze() error = %v, fallback must absorb external failures", err)
			}

			if heuristic.calls != 1 {
				t.Fatalf("heuristic invoked %d times, want 1", heuristic.calls)
			}
			if report.Scores.SkillsMatch != 40 {
				t.Errorf("skills = %d, want heuristic's 40", report.Scores.SkillsMatch)
			}
			if report.Scores.Overall != 50 {
				t.Errorf("overall = %d, want 50", report.Scores.Overall)
			}
		})
	}
}

func TestAnalyzeFailsOnlyWhenBothEvaluatorsFail(t *testing.T) {
	external := &fakeEvaluator{err: fmt.Errorf("%w: unreachable", ErrUpstream)}
	heuristic := &fakeEvaluator{err: errors.New("boom")}
	engine := newTestEngine(external, heuristic)

	_, err := engine.Analyze(context.Background(), "resume", "job")
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("error = %v, want ErrAnalysisFailed", err)
	}
}
