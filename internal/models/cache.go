package models

import "time"

// AnalysisCache stores one finished report per content fingerprint. Entries
// are written once on the first successful analysis and never updated; a
// matching fingerprint on submission short-circuits the whole pipeline.
type AnalysisCache struct {
	Fingerprint string       `gorm:"type:text;primary_key" json:"fingerprint"`
	Result      *MatchReport `gorm:"type:jsonb;serializer:json" json:"result"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (AnalysisCache) TableName() string {
	return "analysis_cache"
}
