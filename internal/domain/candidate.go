package domain

import "time"

// Department enumerates the hiring departments. The set is closed; no
// custom values are accepted.
type Department string

const (
	DepartmentIT      Department = "IT"
	DepartmentHR      Department = "HR"
	DepartmentFinance Department = "FINANCE"
)

// Departments lists all valid members in declaration order.
func Departments() []Department {
	return []Department{DepartmentIT, DepartmentHR, DepartmentFinance}
}

// Valid reports whether d is a member of the closed set.
func (d Department) Valid() bool {
	switch d {
	case DepartmentIT, DepartmentHR, DepartmentFinance:
		return true
	default:
		return false
	}
}

// Display returns the human readable label.
func (d Department) Display() string {
	if d == DepartmentFinance {
		return "Finance"
	}
	return string(d)
}

// ApplicationStatus enumerates lifecycle states for an application.
// Any member may be requested as the next state regardless of the
// current one; only membership is enforced.
type ApplicationStatus string

const (
	StatusSubmitted          ApplicationStatus = "SUBMITTED"
	StatusUnderReview        ApplicationStatus = "UNDER_REVIEW"
	StatusInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	StatusAccepted           ApplicationStatus = "ACCEPTED"
	StatusRejected           ApplicationStatus = "REJECTED"
)

// ApplicationStatuses lists all valid members in lifecycle order.
func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusSubmitted,
		StatusUnderReview,
		StatusInterviewScheduled,
		StatusAccepted,
		StatusRejected,
	}
}

// Valid reports whether s is a member of the closed set.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusInterviewScheduled, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// Display returns the human readable label.
func (s ApplicationStatus) Display() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusUnderReview:
		return "Under Review"
	case StatusInterviewScheduled:
		return "Interview Scheduled"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// Candidate is the aggregate for a job application. The ID doubles as
// the public status-lookup token, so it must never be sequential.
type Candidate struct {
	ID                string
	FullName          string
	Email             string
	DateOfBirth       time.Time
	YearsOfExperience int
	Department        Department
	ResumeKey         string
	ResumeFilename    string
	CurrentStatus     ApplicationStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasResume reports whether a stored resume is referenced.
func (c *Candidate) HasResume() bool {
	return c != nil && c.ResumeKey != ""
}
