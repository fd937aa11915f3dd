package dto

import (
	"time"

	"github.com/spec-kit/recruiting-service/internal/domain"
)

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

// RegisterResponse returns the public lookup token for a new candidate.
type RegisterResponse struct {
	ID            string                   `json:"id"`
	CurrentStatus domain.ApplicationStatus `json:"current_status"`
	CreatedAt     time.Time                `json:"created_at"`
}

// StatusChangeResponse is one audit entry.
type StatusChangeResponse struct {
	ID             string                    `json:"id"`
	PreviousStatus *domain.ApplicationStatus `json:"previous_status"`
	NewStatus      domain.ApplicationStatus  `json:"new_status"`
	Feedback       string                    `json:"feedback"`
	Actor          string                    `json:"actor"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// CandidateSummary is the admin list row.
type CandidateSummary struct {
	ID                   string                   `json:"id"`
	FullName             string                   `json:"full_name"`
	DateOfBirth          string                   `json:"date_of_birth"`
	YearsOfExperience    int                      `json:"years_of_experience"`
	Department           domain.Department        `json:"department"`
	DepartmentDisplay    string                   `json:"department_display"`
	CurrentStatus        domain.ApplicationStatus `json:"current_status"`
	CurrentStatusDisplay string                   `json:"current_status_display"`
	CreatedAt            time.Time                `json:"created_at"`
}

// CandidateDetailResponse includes the full audit history.
type CandidateDetailResponse struct {
	ID                   string                   `json:"id"`
	FullName             string                   `json:"full_name"`
	Email                string                   `json:"email"`
	DateOfBirth          string                   `json:"date_of_birth"`
	YearsOfExperience    int                      `json:"years_of_experience"`
	Department           domain.Department        `json:"department"`
	DepartmentDisplay    string                   `json:"department_display"`
	CurrentStatus        domain.ApplicationStatus `json:"current_status"`
	CurrentStatusDisplay string                   `json:"current_status_display"`
	HasResume            bool                     `json:"has_resume"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
	StatusChanges        []StatusChangeResponse   `json:"status_changes"`
}
