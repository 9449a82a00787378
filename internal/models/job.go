package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// AnalysisJob is the lifecycle record for a submitted analysis. It is created
// in pending state, moved to exactly one terminal state by the background
// task that owns it, and deleted the first time a caller observes a terminal
// state.
type AnalysisJob struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Status       JobStatus    `gorm:"not null;default:'pending'" json:"status"`
	Result       *MatchReport `gorm:"type:jsonb;serializer:json" json:"result,omitempty"`
	ErrorMessage *string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}
