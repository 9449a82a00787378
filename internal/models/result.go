package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
}

type AnalyzeRequest struct {
	DocumentID     string `json:"document_id" validate:"required,uuid"`
	JobDescription string `json:"job_description" validate:"required"`
}

type AnalyzeResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type JobStatusResponse struct {
	Status   string       `json:"status"`
	Analysis *MatchReport `json:"analysis,omitempty"`
	Error    *string      `json:"error,omitempty"`
}
