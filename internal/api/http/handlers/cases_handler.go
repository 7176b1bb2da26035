package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/caseflow/triage-service/internal/api/dto"
	"github.com/caseflow/triage-service/internal/domain"
	"github.com/caseflow/triage-service/internal/repository"
	"github.com/caseflow/triage-service/internal/service"
	apperrors "github.com/caseflow/triage-service/pkg/util"
)

// CasesHandler serves case intake and lifecycle endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// Classify POST /classify-case.
func (h *CasesHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.service.Classify(c.UserContext(), service.ClassifyInput{
		Description: req.Description,
		Email:       req.Email,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.ClassifyCaseResponse{
		Category:        created.Category,
		Status:          created.Status,
		EscalationLevel: created.EscalationLevel,
	})
}

// List GET /cases.
func (h *CasesHandler) List(c *fiber.Ctx) error {
	cases, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCaseListResponse(cases))
}

// Filter GET /cases/filter.
func (h *CasesHandler) Filter(c *fiber.Ctx) error {
	filter := repository.CaseFilter{
		Status:   domain.CaseStatus(strings.TrimSpace(c.Query("status"))),
		Priority: domain.CasePriority(strings.TrimSpace(c.Query("priority"))),
		Category: domain.CaseCategory(strings.TrimSpace(c.Query("category"))),
	}
	cases, err := h.service.Filter(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCaseListResponse(cases))
}

// Stats GET /cases/stats.
func (h *CasesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCaseStatsResponse(stats))
}

// Insights GET /cases/insights.
func (h *CasesHandler) Insights(c *fiber.Ctx) error {
	insights, err := h.service.Insights(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCaseInsightsResponse(insights))
}

// Get GET /cases/:id.
func (h *CasesHandler) Get(c *fiber.Ctx) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	found, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCaseResponse(found))
}

// Resolve PATCH /cases/:id/resolve.
func (h *CasesHandler) Resolve(c *fiber.Ctx) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	resolved, err := h.service.Resolve(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCaseResponse(resolved))
}

// Escalate PATCH /cases/:id/escalate.
func (h *CasesHandler) Escalate(c *fiber.Ctx) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	escalated, err := h.service.Escalate(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.EscalateCaseResponse{
		Message:         "Case escalated",
		EscalationLevel: escalated.EscalationLevel,
	})
}

// Verify POST /cases/:id/verify.
func (h *CasesHandler) Verify(c *fiber.Ctx) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	verified, err := h.service.Verify(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.VerifyCaseResponse{
		Message: "Verification requested",
		Status:  verified.Status,
	})
}

func caseID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid case id", map[string]any{"id": c.Params("id")})
	}
	return int64(id), nil
}
