package events

import (
	"time"

	"github.com/spec-kit/recruiting-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCandidateRegistered    EventType = "candidate_registered"
	EventCandidateStatusChanged EventType = "candidate_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	CandidateID string      `json:"candidate_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// CandidateRegisteredPayload payload.
type CandidateRegisteredPayload struct {
	FullName   string            `json:"full_name"`
	Email      string            `json:"email"`
	Department domain.Department `json:"department"`
}

// CandidateStatusChangedPayload payload.
type CandidateStatusChangedPayload struct {
	Email          string                    `json:"email"`
	PreviousStatus *domain.ApplicationStatus `json:"previous_status,omitempty"`
	NewStatus      domain.ApplicationStatus  `json:"new_status"`
	Feedback       string                    `json:"feedback,omitempty"`
	Actor          string                    `json:"actor"`
}
