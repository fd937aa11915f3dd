package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recruiting-service/internal/api/dto"
	"github.com/spec-kit/recruiting-service/internal/domain"
	"github.com/spec-kit/recruiting-service/internal/service"
	apperrors "github.com/spec-kit/recruiting-service/pkg/util/errorutil"
)

// CandidatesHandler exposes the public endpoints: registration and the
// status check by application id.
type CandidatesHandler struct {
	service *service.CandidateService
}

// NewCandidatesHandler constructs handler.
func NewCandidatesHandler(candidateService *service.CandidateService) *CandidatesHandler {
	return &CandidatesHandler{service: candidateService}
}

// Register POST /api/candidates/register.
func (h *CandidatesHandler) Register(c *fiber.Ctx) error {
	input := service.RegisterInput{
		FullName:          c.FormValue("full_name"),
		Email:             c.FormValue("email"),
		DateOfBirth:       c.FormValue("date_of_birth"),
		YearsOfExperience: c.FormValue("years_of_experience"),
		Department:        c.FormValue("department"),
	}

	fileHeader, err := c.FormFile("resume")
	if err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return apperrors.NewValidationError("invalid registration payload",
				map[string]any{"resume": "resume file could not be read"})
		}
		defer file.Close()
		input.Resume = &service.ResumeUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		}
	}

	snapshot, err := h.service.Register(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.RegisterResponse{
		ID:            snapshot.Candidate.ID,
		CurrentStatus: snapshot.Candidate.CurrentStatus,
		CreatedAt:     snapshot.Candidate.CreatedAt,
	}})
}

// Status GET /api/candidates/:id/status.
func (h *CandidatesHandler) Status(c *fiber.Ctx) error {
	snapshot, err := h.service.GetSnapshot(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": CandidateDetail(snapshot)})
}

// CandidateDetail maps a snapshot to its response shape. Shared with
// the admin handler.
func CandidateDetail(snapshot *service.CandidateSnapshot) dto.CandidateDetailResponse {
	candidate := snapshot.Candidate
	changes := make([]dto.StatusChangeResponse, 0, len(snapshot.History))
	for _, change := range snapshot.History {
		changes = append(changes, dto.StatusChangeResponse{
			ID:             change.ID,
			PreviousStatus: change.PreviousStatus,
			NewStatus:      change.NewStatus,
			Feedback:       change.Feedback,
			Actor:          change.Actor,
			CreatedAt:      change.CreatedAt,
		})
	}
	return dto.CandidateDetailResponse{
		ID:                   candidate.ID,
		FullName:             candidate.FullName,
		Email:                candidate.Email,
		DateOfBirth:          candidate.DateOfBirth.Format("2006-01-02"),
		YearsOfExperience:    candidate.YearsOfExperience,
		Department:           candidate.Department,
		DepartmentDisplay:    candidate.Department.Display(),
		CurrentStatus:        candidate.CurrentStatus,
		CurrentStatusDisplay: candidate.CurrentStatus.Display(),
		HasResume:            candidate.HasResume(),
		CreatedAt:            candidate.CreatedAt,
		UpdatedAt:            candidate.UpdatedAt,
		StatusChanges:        changes,
	}
}

// CandidateSummaryResponse maps a candidate to its list row.
func CandidateSummaryResponse(candidate *domain.Candidate) dto.CandidateSummary {
	return dto.CandidateSummary{
		ID:                   candidate.ID,
		FullName:             candidate.FullName,
		DateOfBirth:          candidate.DateOfBirth.Format("2006-01-02"),
		YearsOfExperience:    candidate.YearsOfExperience,
		Department:           candidate.Department,
		DepartmentDisplay:    candidate.Department.Display(),
		CurrentStatus:        candidate.CurrentStatus,
		CurrentStatusDisplay: candidate.CurrentStatus.Display(),
		CreatedAt:            candidate.CreatedAt,
	}
}
