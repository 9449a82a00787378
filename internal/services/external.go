package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
)

// Evaluator produces a match report for a document against a target
// description. Both the LLM-backed and the keyword-based implementations
// return the same canonical shape.
type Evaluator interface {
	Evaluate(ctx context.Context, documentText, targetDescription string) (*models.MatchReport, error)
}

type externalEvaluator struct {
	generator     TextGenerator
	gate          *RateGate
	promptBuilder *PromptBuilder
	truncateLen   int
	timeout       time.Duration
	logger        *zap.SugaredLogger
}

// NewExternalEvaluator wires the quota-gated LLM evaluator. A nil generator
// means no credential was configured; every Evaluate then fails with
// ErrConfig and the engine falls through to the keyword path.
func NewExternalEvaluator(
	generator TextGenerator,
	gate *RateGate,
	truncateLen int,
	timeout time.Duration,
	logger *zap.SugaredLogger,
) Evaluator {
	return &externalEvaluator{
		generator:     generator,
		gate:          gate,
		promptBuilder: NewPromptBuilder(),
		truncateLen:   truncateLen,
		timeout:       timeout,
		logger:        logger,
	}
}

// llmScores uses pointers so a response missing a required score field is
// distinguishable from a zero score.
type llmScores struct {
	SkillsMatch     *float64 `json:"skillsMatch"`
	ExperienceMatch *float64 `json:"experienceMatch"`
	EducationMatch  *float64 `json:"educationMatch"`
	Overall         *float64 `json:"overall"`
}

type llmPayload struct {
	Scores     *llmScores              `json:"scores"`
	Strengths  models.CategoryFindings `json:"strengths"`
	Weaknesses models.CategoryFindings `json:"weaknesses"`
}

func (e *externalEvaluator) Evaluate(ctx context.Context, documentText, targetDescription string) (*models.MatchReport, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("%w: missing API credential", ErrConfig)
	}

	if err := e.gate.TryConsume(); err != nil {
		return nil, err
	}

	// Truncation bounds cost and latency; long inputs are approximated.
	resumeText := truncateText(documentText, e.truncateLen)
	jobDescription := truncateText(targetDescription, e.truncateLen)

	prompt := e.promptBuilder.BuildMatchAnalysisPrompt(resumeText, jobDescription)
	e.logger.Infof("📝 Match analysis prompt length: %d characters", len(prompt))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	response, err := e.generator.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, e.timeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	report, err := parseMatchResponse(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return report, nil
}

// parseMatchResponse extracts the structured payload from the LLM response.
// A parse failure or a missing score field is an upstream error, never
// silently substituted with zeroes. The overall score is recomputed rather
// than trusted verbatim.
func parseMatchResponse(response string) (*models.MatchReport, error) {
	var payload llmPayload
	if err := json.Unmarshal([]byte(extractJSON(response)), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation payload: %v", err)
	}

	if payload.Scores == nil {
		return nil, fmt.Errorf("evaluation payload has no scores object")
	}
	if payload.Scores.SkillsMatch == nil || payload.Scores.ExperienceMatch == nil || payload.Scores.EducationMatch == nil {
		return nil, fmt.Errorf("evaluation payload is missing required score fields")
	}

	report := &models.MatchReport{
		Scores: models.CategoryScores{
			SkillsMatch:     int(math.Round(*payload.Scores.SkillsMatch)),
			ExperienceMatch: int(math.Round(*payload.Scores.ExperienceMatch)),
			EducationMatch:  int(math.Round(*payload.Scores.EducationMatch)),
		},
		Strengths:  payload.Strengths,
		Weaknesses: payload.Weaknesses,
	}
	report.Normalize()

	return report, nil
}
