package domain

import "time"

// SystemActor attributes audit entries created by the service itself,
// such as the entry written at registration.
const SystemActor = "system"

// DefaultAdminActor is used when an admin transition carries no
// attribution header.
const DefaultAdminActor = "Admin"

// StatusChange is an immutable audit entry for one status transition.
// Entries are append-only: once written they are never updated or
// deleted, and the most recent entry for a candidate is authoritative
// for that candidate's current state.
type StatusChange struct {
	ID          string
	CandidateID string
	// PreviousStatus is nil only for the entry created at registration.
	PreviousStatus *ApplicationStatus
	NewStatus      ApplicationStatus
	Feedback       string
	Actor          string
	CreatedAt      time.Time
}
