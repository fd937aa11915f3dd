package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/recruiting-service/internal/domain"
	"github.com/spec-kit/recruiting-service/internal/events"
	"github.com/spec-kit/recruiting-service/internal/repository"
	"github.com/spec-kit/recruiting-service/internal/storage"
	apperrors "github.com/spec-kit/recruiting-service/pkg/util/errorutil"
)

const registrationFeedback = "Application submitted successfully."

const dateLayout = "2006-01-02"

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// CandidateService coordinates registration and the status lifecycle.
// Every status write goes through here so the candidate row and its
// audit trail can never diverge.
type CandidateService struct {
	candidates    repository.CandidateRepository
	history       repository.StatusChangeRepository
	files         storage.FileStore
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	maxResumeSize int64
}

// CandidateDependencies bundles collaborators for the service.
type CandidateDependencies struct {
	CandidateRepo    repository.CandidateRepository
	StatusChangeRepo repository.StatusChangeRepository
	FileStore        storage.FileStore
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	MaxResumeSize    int64
}

// NewCandidateService constructs the service.
func NewCandidateService(deps CandidateDependencies) *CandidateService {
	return &CandidateService{
		candidates:    deps.CandidateRepo,
		history:       deps.StatusChangeRepo,
		files:         deps.FileStore,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		maxResumeSize: deps.MaxResumeSize,
	}
}

// RegisterInput carries the submitted form fields. Date and experience
// arrive as raw strings so every violation lands in one validation
// response instead of failing field by field.
type RegisterInput struct {
	FullName          string
	Email             string
	DateOfBirth       string
	YearsOfExperience string
	Department        string
	Resume            *ResumeUpload
}

// ResumeUpload describes the uploaded resume file.
type ResumeUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// CandidateSnapshot pairs a candidate with its full audit history,
// newest entry first.
type CandidateSnapshot struct {
	Candidate *domain.Candidate
	History   []domain.StatusChange
}

// ListInput captures admin listing parameters.
type ListInput struct {
	Department *string
	Page       int
	PageSize   int
}

// ResumeDownload is a streamed resume file.
type ResumeDownload struct {
	Filename    string
	ContentType string
	Content     io.ReadCloser
}

// Register validates the submission, stores the resume, and creates the
// candidate together with the initial SUBMITTED audit entry in one
// transaction.
func (s *CandidateService) Register(ctx context.Context, input RegisterInput) (*CandidateSnapshot, error) {
	fieldErrs := map[string]any{}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		fieldErrs["full_name"] = "full name is required"
	}

	email := strings.TrimSpace(input.Email)
	switch {
	case email == "":
		fieldErrs["email"] = "email is required"
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			fieldErrs["email"] = "email is not a valid address"
		} else {
			exists, err := s.candidates.EmailExists(ctx, email)
			if err != nil {
				return nil, apperrors.NewInternalError(err)
			}
			if exists {
				fieldErrs["email"] = "email already registered"
			}
		}
	}

	var dateOfBirth time.Time
	if strings.TrimSpace(input.DateOfBirth) == "" {
		fieldErrs["date_of_birth"] = "date of birth is required"
	} else {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(input.DateOfBirth))
		if err != nil {
			fieldErrs["date_of_birth"] = "date of birth must be formatted as YYYY-MM-DD"
		} else {
			dateOfBirth = parsed
		}
	}

	years := 0
	if strings.TrimSpace(input.YearsOfExperience) == "" {
		fieldErrs["years_of_experience"] = "years of experience is required"
	} else {
		parsed, err := strconv.Atoi(strings.TrimSpace(input.YearsOfExperience))
		switch {
		case err != nil:
			fieldErrs["years_of_experience"] = "years of experience must be an integer"
		case parsed < 0:
			fieldErrs["years_of_experience"] = "years of experience cannot be negative"
		default:
			years = parsed
		}
	}

	department := domain.Department(strings.TrimSpace(input.Department))
	if !department.Valid() {
		fieldErrs["department"] = "department must be one of: " + joinDepartments()
	}

	ext := ""
	if input.Resume == nil {
		fieldErrs["resume"] = "resume file is required"
	} else {
		ext = strings.ToLower(filepath.Ext(input.Resume.Filename))
		if _, ok := resumeContentTypes[ext]; !ok {
			fieldErrs["resume"] = "resume must be a pdf or docx file"
		} else if s.maxResumeSize > 0 && input.Resume.Size > s.maxResumeSize {
			fieldErrs["resume"] = fmt.Sprintf("resume exceeds the %d byte limit", s.maxResumeSize)
		}
	}

	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError("invalid registration payload", fieldErrs)
	}

	// The storage key is namespaced under a fresh random folder because
	// the database identity does not exist yet.
	key := fmt.Sprintf("resumes/%s/%s%s", uuid.NewString(), uuid.NewString(), ext)
	storedKey, err := s.files.Store(ctx, key, input.Resume.Content, input.Resume.Size, resumeContentTypes[ext])
	if err != nil {
		s.logger.Error("resume upload failed", zap.String("email", email), zap.Error(err))
		return nil, apperrors.NewStorageError(err)
	}

	candidate := &domain.Candidate{
		FullName:          fullName,
		Email:             email,
		DateOfBirth:       dateOfBirth,
		YearsOfExperience: years,
		Department:        department,
		ResumeKey:         storedKey,
		ResumeFilename:    input.Resume.Filename,
		CurrentStatus:     domain.StatusSubmitted,
	}
	initial := &domain.StatusChange{
		NewStatus: domain.StatusSubmitted,
		Feedback:  registrationFeedback,
		Actor:     domain.SystemActor,
	}

	if err := s.candidates.CreateWithInitialStatus(ctx, candidate, initial); err != nil {
		s.cleanupResume(ctx, storedKey)
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewValidationError("invalid registration payload",
				map[string]any{"email": "email already registered"})
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("candidate registered",
		zap.String("candidate_id", candidate.ID),
		zap.String("department", string(candidate.Department)),
	)
	s.publishEvent(ctx, events.Event{
		Type:        events.EventCandidateRegistered,
		CandidateID: candidate.ID,
		Payload: events.CandidateRegisteredPayload{
			FullName:   candidate.FullName,
			Email:      candidate.Email,
			Department: candidate.Department,
		},
	})

	return &CandidateSnapshot{
		Candidate: candidate,
		History:   []domain.StatusChange{*initial},
	}, nil
}

// Transition moves the candidate to the requested status. The audit
// entry and the candidate update commit together or not at all.
func (s *CandidateService) Transition(ctx context.Context, candidateID, requestedStatus, feedback, actor string) (*CandidateSnapshot, error) {
	if _, err := uuid.Parse(candidateID); err != nil {
		return nil, apperrors.NewNotFound("candidate", nil)
	}

	status := domain.ApplicationStatus(strings.TrimSpace(requestedStatus))
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status payload",
			map[string]any{"status": "status must be one of: " + joinStatuses()})
	}

	if strings.TrimSpace(actor) == "" {
		actor = domain.DefaultAdminActor
	}

	change := &domain.StatusChange{
		NewStatus: status,
		Feedback:  feedback,
		Actor:     actor,
	}
	candidate, err := s.candidates.TransitionStatus(ctx, candidateID, change)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("candidate", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	history, err := s.history.ListForCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("candidate status updated",
		zap.String("candidate_id", candidate.ID),
		zap.String("new_status", string(status)),
		zap.String("actor", actor),
	)
	s.publishEvent(ctx, events.Event{
		Type:        events.EventCandidateStatusChanged,
		CandidateID: candidate.ID,
		Payload: events.CandidateStatusChangedPayload{
			Email:          candidate.Email,
			PreviousStatus: change.PreviousStatus,
			NewStatus:      change.NewStatus,
			Feedback:       change.Feedback,
			Actor:          change.Actor,
		},
	})

	return &CandidateSnapshot{Candidate: candidate, History: history}, nil
}

// GetSnapshot returns a candidate with its full history. Used by both
// the public status check and the admin detail view.
func (s *CandidateService) GetSnapshot(ctx context.Context, candidateID string) (*CandidateSnapshot, error) {
	if _, err := uuid.Parse(candidateID); err != nil {
		return nil, apperrors.NewNotFound("candidate", nil)
	}
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("candidate", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	history, err := s.history.ListForCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &CandidateSnapshot{Candidate: candidate, History: history}, nil
}

// List returns candidates newest-first with optional department filter.
func (s *CandidateService) List(ctx context.Context, input ListInput) ([]domain.Candidate, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	filter := repository.CandidateFilter{
		Department: input.Department,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	candidates, err := s.candidates.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return candidates, nil
}

// DownloadResume streams the stored resume. A candidate without a
// resume reference and a reference whose object is gone from storage
// both surface as NotFound.
func (s *CandidateService) DownloadResume(ctx context.Context, candidateID string) (*ResumeDownload, error) {
	if _, err := uuid.Parse(candidateID); err != nil {
		return nil, apperrors.NewNotFound("candidate", nil)
	}
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("candidate", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !candidate.HasResume() {
		return nil, apperrors.NewNotFound("resume", nil)
	}

	content, err := s.files.Open(ctx, candidate.ResumeKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NewNotFound("resume", nil)
		}
		s.logger.Error("resume read failed",
			zap.String("candidate_id", candidate.ID),
			zap.String("resume_key", candidate.ResumeKey),
			zap.Error(err),
		)
		return nil, apperrors.NewStorageError(err)
	}

	return &ResumeDownload{
		Filename:    candidate.ResumeFilename,
		ContentType: contentTypeForFilename(candidate.ResumeFilename),
		Content:     content,
	}, nil
}

func (s *CandidateService) cleanupResume(ctx context.Context, key string) {
	// Orphan cleanup is best-effort; a leftover file is acceptable debt.
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warn("orphaned resume cleanup failed", zap.String("resume_key", key), zap.Error(err))
	}
}

func (s *CandidateService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func contentTypeForFilename(filename string) string {
	if ct, ok := resumeContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func joinDepartments() string {
	parts := make([]string, 0, len(domain.Departments()))
	for _, d := range domain.Departments() {
		parts = append(parts, string(d))
	}
	return strings.Join(parts, ", ")
}

func joinStatuses() string {
	parts := make([]string, 0, len(domain.ApplicationStatuses()))
	for _, s := range domain.ApplicationStatuses() {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}
