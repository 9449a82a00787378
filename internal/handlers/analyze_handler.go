package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/repositories"
	"github.com/alfredoptarigan/resume-match-analyzer/internal/services"
)

type AnalyzeHandler struct {
	docRepo      repositories.DocumentRepository
	pdfParser    services.PDFParserService
	orchestrator services.Orchestrator
}

func NewAnalyzeHandler(
	docRepo repositories.DocumentRepository,
	pdfParser services.PDFParserService,
	orchestrator services.Orchestrator,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		docRepo:      docRepo,
		pdfParser:    pdfParser,
		orchestrator: orchestrator,
	}
}

// HandleAnalyze handles POST /analyze. The caller either gets a cached
// analysis right away or a job id to poll; analysis work never blocks this
// request.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.DocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document_id is required",
		})
	}

	if req.JobDescription == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description is required",
		})
	}

	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document_id format",
		})
	}

	doc, err := h.docRepo.FindByID(docID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resume document not found",
		})
	}

	documentText, err := h.pdfParser.ExtractText(doc.FilePath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse resume file. Only readable PDF files are supported.",
		})
	}

	outcome, err := h.orchestrator.Submit(c.Context(), services.SubmitInput{
		DocumentText:      documentText,
		TargetDescription: req.JobDescription,
		CleanupPath:       doc.FilePath,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initiate analysis",
		})
	}

	if outcome.CachedReport != nil {
		return c.JSON(models.JobStatusResponse{
			Status:   string(models.StatusCompleted),
			Analysis: outcome.CachedReport,
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		JobID:  outcome.JobID.String(),
		Status: string(models.StatusPending),
	})
}
