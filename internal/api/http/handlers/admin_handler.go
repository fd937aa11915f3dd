package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruiting-service/internal/api/dto"
	"github.com/spec-kit/recruiting-service/internal/auth"
	"github.com/spec-kit/recruiting-service/internal/service"
	apperrors "github.com/spec-kit/recruiting-service/pkg/util/errorutil"
)

// AdminHandler exposes the authenticated review endpoints.
type AdminHandler struct {
	service *service.CandidateService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(candidateService *service.CandidateService) *AdminHandler {
	return &AdminHandler{service: candidateService}
}

// List GET /api/admin/candidates.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	input := service.ListInput{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 20),
	}
	if department := c.Query("department"); department != "" {
		input.Department = &department
	}

	candidates, err := h.service.List(c.Context(), input)
	if err != nil {
		return err
	}
	items := make([]dto.CandidateSummary, 0, len(candidates))
	for i := range candidates {
		items = append(items, CandidateSummaryResponse(&candidates[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"page": fiber.Map{
			"page":      input.Page,
			"page_size": input.PageSize,
		},
	})
}

// Detail GET /api/admin/candidates/:id.
func (h *AdminHandler) Detail(c *fiber.Ctx) error {
	snapshot, err := h.service.GetSnapshot(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": CandidateDetail(snapshot)})
}

// UpdateStatus PATCH /api/admin/candidates/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	actor := auth.ActorFromContext(c)
	snapshot, err := h.service.Transition(c.Context(), c.Params("id"), req.Status, req.Feedback, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Status updated successfully",
		"data":    CandidateDetail(snapshot),
	})
}

// DownloadResume GET /api/admin/candidates/:id/resume.
func (h *AdminHandler) DownloadResume(c *fiber.Ctx) error {
	download, err := h.service.DownloadResume(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, download.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", download.Filename))
	return c.SendStream(download.Content)
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
