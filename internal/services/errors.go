package services

import "errors"

// Error taxonomy of the analysis pipeline. Quota, config, upstream and
// timeout errors stay internal to the evaluator chain and are absorbed by the
// engine's fallback; validation and not-found errors surface synchronously
// from the orchestrator.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrQuotaExceeded  = errors.New("daily evaluator quota exceeded")
	ErrConfig         = errors.New("external evaluator not configured")
	ErrUpstream       = errors.New("external evaluator failure")
	ErrTimeout        = errors.New("external evaluator timed out")
	ErrAnalysisFailed = errors.New("analysis failed")
	ErrPersistence    = errors.New("failed to persist analysis result")
)
