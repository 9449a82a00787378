package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeGenerator struct {
	fn      func(ctx context.Context, prompt string) (string, error)
	prompts []string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, _ float32) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.fn(ctx, prompt)
}

func staticResponse(response string) *fakeGenerator {
	return &fakeGenerator{fn: func(context.Context, string) (string, error) {
		return response, nil
	}}
}

func openGate() *RateGate {
	return NewRateGate(1000, time.Now, zap.NewNop().Sugar())
}

func newTestExternal(generator TextGenerator, gate *RateGate) Evaluator {
	return NewExternalEvaluator(generator, gate, 1000, 30*time.Second, zap.NewNop().Sugar())
}

const validLLMResponse = "```json\n" + `{
  "scores": {
    "skillsMatch": 72.4,
    "experienceMatch": 85,
    "educationMatch": 60,
    "overall": 10
  },
  "strengths": {
    "skills": ["Knows Go and Postgres"],
    "experience": [],
    "education": [],
    "overall": ["Good overall fit"]
  },
  "weaknesses": {
    "skills": ["No Kubernetes exposure"],
    "experience": [],
    "education": [],
    "overall": []
  }
}` + "\n```"

func TestEvaluateParsesStructuredResponse(t *testing.T) {
	evaluator := newTestExternal(staticResponse(validLLMResponse), openGate())

	report, err := evaluator.Evaluate(context.Background(), "resume text", "job description")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if report.Scores.SkillsMatch != 72 {
		t.Errorf("skills = %d, want 72", report.Scores.SkillsMatch)
	}
	if report.Scores.ExperienceMatch != 85 {
		t.Errorf("experience = %d, want 85", report.Scores.ExperienceMatch)
	}
	// The overall score from the payload is never trusted verbatim.
	if report.Scores.Overall != 72 {
		t.Errorf("overall = %d, want recomputed 72", report.Scores.Overall)
	}
	if len(report.Strengths.Skills) != 1 || report.Strengths.Skills[0] != "Knows Go and Postgres" {
		t.Errorf("unexpected skill strengths: %v", report.Strengths.Skills)
	}
	if report.Raw == "" {
		t.Error("raw summary not rendered")
	}
}

func TestEvaluateMissingCredential(t *testing.T) {
	evaluator := newTestExternal(nil, openGate())

	_, err := evaluator.Evaluate(context.Background(), "resume", "job")
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("error = %v, want ErrConfig", err)
	}
}

func TestEvaluateQuotaDeniedSkipsTransport(t *testing.T) {
	generator := staticResponse(validLLMResponse)
	exhausted := NewRateGate(0, time.Now, zap.NewNop().Sugar())
	evaluator := newTestExternal(generator, exhausted)

	_, err := evaluator.Evaluate(context.Background(), "resume", "job")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}
	if len(generator.prompts) != 0 {
		t.Fatalf("transport invoked %d times despite quota denial", len(generator.prompts))
	}
}

func TestEvaluateMapsTransportFailureToUpstream(t *testing.T) {
	generator := &fakeGenerator{fn: func(context.Context, string) (string, error) {
		return "", fmt.Errorf("connection refused")
	}}
	evaluator := newTestExternal(generator, openGate())

	_, err := evaluator.Evaluate(context.Background(), "resume", "job")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestEvaluateMapsUnparseablePayloadToUpstream(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"plain prose", "I think this resume is quite good overall."},
		{"missing scores object", `{"strengths": {}, "weaknesses": {}}`},
		{"missing score field", `{"scores": {"skillsMatch": 50, "experienceMatch": 60}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evaluator := newTestExternal(staticResponse(tc.response), openGate())

			_, err := evaluator.Evaluate(context.Background(), "resume", "job")
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("error = %v, want ErrUpstream", err)
			}
		})
	}
}

func TestEvaluateMapsDeadlineToTimeout(t *testing.T) {
	generator := &fakeGenerator{fn: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	evaluator := NewExternalEvaluator(generator, openGate(), 1000, 20*time.Millisecond, zap.NewNop().Sugar())

	_, err := evaluator.Evaluate(context.Background(), "resume", "job")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

func TestEvaluateTruncatesLongInputs(t *testing.T) {
	generator := staticResponse(validLLMResponse)
	evaluator := NewExternalEvaluator(generator, openGate(), 100, 30*time.Second, zap.NewNop().Sugar())

	longResume := strings.Repeat("x", 500)
	if _, err := evaluator.Evaluate(context.Background(), longResume, "short description"); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if len(generator.prompts) != 1 {
		t.Fatalf("expected one transport call, got %d", len(generator.prompts))
	}
	prompt := generator.prompts[0]
	if strings.Contains(prompt, longResume) {
		t.Error("prompt contains the untruncated resume")
	}
	if !strings.Contains(prompt, "... [truncated]") {
		t.Error("prompt missing truncation marker")
	}
	if !strings.Contains(prompt, "short description") {
		t.Error("prompt missing the job description")
	}
}
