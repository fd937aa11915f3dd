package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
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

type fakeStore struct {
	mu         sync.Mutex
	candidates map[string]*domain.Candidate
	history    map[string][]domain.StatusChange
	clock      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: make(map[string]*domain.Candidate),
		history:    make(map[string][]domain.StatusChange),
		clock:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) CreateWithInitialStatus(ctx context.Context, candidate *domain.Candidate, initial *domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.candidates {
		if existing.Email == candidate.Email {
			return repository.ErrDuplicateEmail
		}
	}
	now := s.tick()
	candidate.ID = uuid.NewString()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	stored := *candidate
	s.candidates[candidate.ID] = &stored

	initial.ID = uuid.NewString()
	initial.CandidateID = candidate.ID
	initial.CreatedAt = now
	s.history[candidate.ID] = append(s.history[candidate.ID], *initial)
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *candidate
	return &copied, nil
}

func (s *fakeStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.candidates {
		if existing.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) List(ctx context.Context, filter repository.CandidateFilter) ([]domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Candidate
	for _, candidate := range s.candidates {
		if filter.Department != nil && string(candidate.Department) != *filter.Department {
			continue
		}
		result = append(result, *candidate)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *fakeStore) TransitionStatus(ctx context.Context, id string, change *domain.StatusChange) (*domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	previous := candidate.CurrentStatus
	now := s.tick()

	change.ID = uuid.NewString()
	change.CandidateID = id
	change.PreviousStatus = &previous
	change.CreatedAt = now
	s.history[id] = append(s.history[id], *change)

	candidate.CurrentStatus = change.NewStatus
	candidate.UpdatedAt = now
	copied := *candidate
	return &copied, nil
}

func (s *fakeStore) ListForCandidate(ctx context.Context, candidateID string) ([]domain.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.history[candidateID]
	result := make([]domain.StatusChange, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		result = append(result, entries[i])
	}
	return result, nil
}

type fakeFileStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: make(map[string][]byte)}
}

func (f *fakeFileStore) Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return key, nil
}

func (f *fakeFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFileStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeFileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeFileStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func newTestService(t *testing.T) (*CandidateService, *fakeStore, *fakeFileStore) {
	t.Helper()
	store := newFakeStore()
	files := newFakeFileStore()
	svc := NewCandidateService(CandidateDependencies{
		CandidateRepo:    store,
		StatusChangeRepo: store,
		FileStore:        files,
		Dispatcher:       events.NewInMemoryDispatcher(),
		Logger:           zap.NewNop(),
		MaxResumeSize:    1 << 20,
	})
	return svc, store, files
}

func validRegisterInput(email string) RegisterInput {
	return RegisterInput{
		FullName:          "Dana Smith",
		Email:             email,
		DateOfBirth:       "1990-04-12",
		YearsOfExperience: "5",
		Department:        "IT",
		Resume: &ResumeUpload{
			Filename: "resume.pdf",
			Size:     4,
			Content:  strings.NewReader("%PDF"),
		},
	}
}

func asDomainError(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr
}

func TestRegisterCreatesCandidateWithInitialAudit(t *testing.T) {
	svc, store, files := newTestService(t)

	snapshot, err := svc.Register(context.Background(), validRegisterInput("dana@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	candidate := snapshot.Candidate
	if candidate.ID == "" {
		t.Fatal("expected generated candidate id")
	}
	if candidate.CurrentStatus != domain.StatusSubmitted {
		t.Fatalf("current status = %s, want SUBMITTED", candidate.CurrentStatus)
	}
	if len(snapshot.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(snapshot.History))
	}
	initial := snapshot.History[0]
	if initial.PreviousStatus != nil {
		t.Fatalf("initial previous status = %v, want nil", *initial.PreviousStatus)
	}
	if initial.NewStatus != domain.StatusSubmitted {
		t.Fatalf("initial new status = %s, want SUBMITTED", initial.NewStatus)
	}
	if initial.Actor != domain.SystemActor {
		t.Fatalf("initial actor = %q, want system", initial.Actor)
	}
	if initial.Feedback != "Application submitted successfully." {
		t.Fatalf("unexpected initial feedback: %q", initial.Feedback)
	}

	if len(store.candidates) != 1 {
		t.Fatalf("stored candidates = %d, want 1", len(store.candidates))
	}
	if files.count() != 1 {
		t.Fatalf("stored files = %d, want 1", files.count())
	}
	if candidate.ResumeKey == "" || !strings.HasPrefix(candidate.ResumeKey, "resumes/") {
		t.Fatalf("unexpected resume key: %q", candidate.ResumeKey)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, store, files := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput("dana@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, validRegisterInput("dana@example.com"))
	domainErr := asDomainError(t, err)
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", domainErr.Code)
	}
	if _, ok := domainErr.Details["email"]; !ok {
		t.Fatalf("expected email detail, got %v", domainErr.Details)
	}

	if len(store.candidates) != 1 {
		t.Fatalf("stored candidates = %d, want 1", len(store.candidates))
	}
	if total := len(store.history); total != 1 {
		t.Fatalf("candidates with history = %d, want 1", total)
	}
	if files.count() != 1 {
		t.Fatalf("stored files = %d, want 1 (duplicate must not persist a file)", files.count())
	}
}

func TestRegisterRejectsBadResumeExtension(t *testing.T) {
	svc, store, files := newTestService(t)

	input := validRegisterInput("dana@example.com")
	input.Resume.Filename = "resume.exe"

	_, err := svc.Register(context.Background(), input)
	domainErr := asDomainError(t, err)
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", domainErr.Code)
	}
	if _, ok := domainErr.Details["resume"]; !ok {
		t.Fatalf("expected resume detail, got %v", domainErr.Details)
	}
	if files.count() != 0 {
		t.Fatal("no file may be persisted for a rejected registration")
	}
	if len(store.candidates) != 0 {
		t.Fatal("no candidate may be created for a rejected registration")
	}
}

func TestRegisterCollectsAllViolations(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := RegisterInput{
		Email:             "not-an-email",
		DateOfBirth:       "12/04/1990",
		YearsOfExperience: "-3",
		Department:        "LEGAL",
	}

	_, err := svc.Register(context.Background(), input)
	domainErr := asDomainError(t, err)

	for _, field := range []string{"full_name", "email", "date_of_birth", "years_of_experience", "department", "resume"} {
		if _, ok := domainErr.Details[field]; !ok {
			t.Errorf("missing violation for %s: %v", field, domainErr.Details)
		}
	}
}

func TestRegisterRejectsOversizeResume(t *testing.T) {
	svc, _, files := newTestService(t)

	input := validRegisterInput("dana@example.com")
	input.Resume.Size = 2 << 20

	_, err := svc.Register(context.Background(), input)
	domainErr := asDomainError(t, err)
	if _, ok := domainErr.Details["resume"]; !ok {
		t.Fatalf("expected resume detail, got %v", domainErr.Details)
	}
	if files.count() != 0 {
		t.Fatal("oversize resume must not be persisted")
	}
}

func TestTransitionAppendsAuditEntry(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterInput("dana@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	snapshot, err := svc.Transition(ctx, registered.Candidate.ID, "UNDER_REVIEW", "looks good", "reviewer@corp")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}

	if snapshot.Candidate.CurrentStatus != domain.StatusUnderReview {
		t.Fatalf("current status = %s, want UNDER_REVIEW", snapshot.Candidate.CurrentStatus)
	}
	if len(snapshot.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(snapshot.History))
	}

	latest := snapshot.History[0]
	if latest.NewStatus != domain.StatusUnderReview {
		t.Fatalf("latest new status = %s, want UNDER_REVIEW", latest.NewStatus)
	}
	if latest.PreviousStatus == nil || *latest.PreviousStatus != domain.StatusSubmitted {
		t.Fatalf("latest previous status = %v, want SUBMITTED", latest.PreviousStatus)
	}
	if latest.Feedback != "looks good" {
		t.Fatalf("feedback = %q", latest.Feedback)
	}
	if latest.Actor != "reviewer@corp" {
		t.Fatalf("actor = %q", latest.Actor)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterInput("dana@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.Transition(ctx, registered.Candidate.ID, "ON_HOLD", "", "")
	domainErr := asDomainError(t, err)
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", domainErr.Code)
	}

	candidate, err := store.GetByID(ctx, registered.Candidate.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if candidate.CurrentStatus != domain.StatusSubmitted {
		t.Fatalf("status changed to %s on rejected transition", candidate.CurrentStatus)
	}
	if entries := store.history[candidate.ID]; len(entries) != 1 {
		t.Fatalf("audit log length = %d, want 1", len(entries))
	}
}

func TestTransitionUnknownCandidate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Transition(context.Background(), uuid.NewString(), "ACCEPTED", "", "")
	domainErr := asDomainError(t, err)
	if domainErr.Code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND", domainErr.Code)
	}

	_, err = svc.Transition(context.Background(), "not-a-uuid", "ACCEPTED", "", "")
	domainErr = asDomainError(t, err)
	if domainErr.Code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND for malformed id", domainErr.Code)
	}
}

func TestTransitionSequenceKeepsAuditConsistent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterInput("dana@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := registered.Candidate.ID

	sequence := []domain.ApplicationStatus{
		domain.StatusUnderReview,
		domain.StatusInterviewScheduled,
		domain.StatusRejected,
		// Arbitrary transitions are allowed; only membership is checked.
		domain.StatusSubmitted,
		domain.StatusAccepted,
	}

	var snapshot *CandidateSnapshot
	for _, status := range sequence {
		snapshot, err = svc.Transition(ctx, id, string(status), "", "")
		if err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	if len(snapshot.History) != len(sequence)+1 {
		t.Fatalf("audit log length = %d, want %d", len(snapshot.History), len(sequence)+1)
	}
	if snapshot.Candidate.CurrentStatus != snapshot.History[0].NewStatus {
		t.Fatalf("current status %s diverges from latest audit entry %s",
			snapshot.Candidate.CurrentStatus, snapshot.History[0].NewStatus)
	}
	if snapshot.Candidate.CurrentStatus != domain.StatusAccepted {
		t.Fatalf("current status = %s, want ACCEPTED", snapshot.Candidate.CurrentStatus)
	}
}

func TestDownloadResume(t *testing.T) {
	svc, store, files := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterInput("dana@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	download, err := svc.DownloadResume(ctx, registered.Candidate.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer download.Content.Close()
	if download.Filename != "resume.pdf" {
		t.Fatalf("filename = %q", download.Filename)
	}
	if download.ContentType != "application/pdf" {
		t.Fatalf("content type = %q", download.ContentType)
	}
	data, err := io.ReadAll(download.Content)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF" {
		t.Fatalf("unexpected content: %q", data)
	}

	// Object missing from storage must surface as NotFound, not a 500.
	if err := files.Delete(ctx, registered.Candidate.ResumeKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.DownloadResume(ctx, registered.Candidate.ID)
	domainErr := asDomainError(t, err)
	if domainErr.Code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND for missing object", domainErr.Code)
	}

	// A candidate without a resume reference is also NotFound.
	bare := &domain.Candidate{
		FullName:      "No Resume",
		Email:         "bare@example.com",
		Department:    domain.DepartmentHR,
		CurrentStatus: domain.StatusSubmitted,
	}
	initial := &domain.StatusChange{NewStatus: domain.StatusSubmitted, Actor: domain.SystemActor}
	if err := store.CreateWithInitialStatus(ctx, bare, initial); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err = svc.DownloadResume(ctx, bare.ID)
	domainErr = asDomainError(t, err)
	if domainErr.Code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND for absent reference", domainErr.Code)
	}
}

func TestListFiltersByDepartmentNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	departments := []string{"FINANCE", "IT", "FINANCE", "HR", "FINANCE"}
	for i, dept := range departments {
		input := validRegisterInput(fmt.Sprintf("candidate%d@example.com", i))
		input.Department = dept
		if _, err := svc.Register(ctx, input); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	finance := "FINANCE"
	candidates, err := svc.List(ctx, ListInput{Department: &finance})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("finance candidates = %d, want 3", len(candidates))
	}
	for i := range candidates {
		if candidates[i].Department != domain.DepartmentFinance {
			t.Fatalf("candidate %d department = %s", i, candidates[i].Department)
		}
		if i > 0 && candidates[i].CreatedAt.After(candidates[i-1].CreatedAt) {
			t.Fatal("list is not ordered newest-first")
		}
	}
}
