package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/services"
)

type JobHandler struct {
	orchestrator services.Orchestrator
}

func NewJobHandler(orchestrator services.Orchestrator) *JobHandler {
	return &JobHandler{
		orchestrator: orchestrator,
	}
}

// HandleGetJob handles GET /job/:jobId. Observing a terminal state consumes
// the job: the next poll for the same id answers 404.
func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	outcome, err := h.orchestrator.QueryStatus(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve job status",
		})
	}

	switch outcome.Status {
	case models.StatusCompleted:
		return c.JSON(models.JobStatusResponse{
			Status:   string(models.StatusCompleted),
			Analysis: outcome.Report,
		})
	case models.StatusFailed:
		return c.Status(fiber.StatusInternalServerError).JSON(models.JobStatusResponse{
			Status: string(models.StatusFailed),
			Error:  &outcome.ErrorMessage,
		})
	default:
		return c.JSON(models.JobStatusResponse{
			Status: string(models.StatusPending),
		})
	}
}
