package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/recruiting-service/internal/domain"
)

// ErrDuplicateEmail signals a unique constraint violation on the email
// column.
var ErrDuplicateEmail = errors.New("email already registered")

const pgUniqueViolation = "23505"

// CandidateFilter captures admin listing parameters.
type CandidateFilter struct {
	Department *string
	Limit      int
	Offset     int
}

// CandidateRepository encapsulates candidate persistence. Status writes
// happen only through CreateWithInitialStatus and TransitionStatus, each
// of which pairs the candidate mutation with its audit entry in a single
// transaction.
type CandidateRepository interface {
	CreateWithInitialStatus(ctx context.Context, candidate *domain.Candidate, initial *domain.StatusChange) error
	GetByID(ctx context.Context, id string) (*domain.Candidate, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter CandidateFilter) ([]domain.Candidate, error)
	TransitionStatus(ctx context.Context, id string, change *domain.StatusChange) (*domain.Candidate, error)
}

type candidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository instantiates repository.
func NewCandidateRepository(pool *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{pool: pool}
}

const candidateColumns = `id, full_name, email, date_of_birth, years_of_experience, department,
               resume_key, resume_filename, current_status, created_at, updated_at`

func (r *candidateRepository) CreateWithInitialStatus(ctx context.Context, candidate *domain.Candidate, initial *domain.StatusChange) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        INSERT INTO candidates (full_name, email, date_of_birth, years_of_experience, department, resume_key, resume_filename, current_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, query,
			candidate.FullName,
			candidate.Email,
			candidate.DateOfBirth,
			candidate.YearsOfExperience,
			candidate.Department,
			candidate.ResumeKey,
			candidate.ResumeFilename,
			candidate.CurrentStatus,
		).Scan(&candidate.ID, &candidate.CreatedAt, &candidate.UpdatedAt); err != nil {
			return err
		}

		initial.CandidateID = candidate.ID
		return appendStatusChange(ctx, tx, initial)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE id=$1`, candidateColumns)
	return scanCandidateRow(r.pool.QueryRow(ctx, query, id))
}

func (r *candidateRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM candidates WHERE email=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *candidateRepository) List(ctx context.Context, filter CandidateFilter) ([]domain.Candidate, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil && strings.TrimSpace(*filter.Department) != "" {
		args = append(args, strings.TrimSpace(*filter.Department))
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		candidateColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

// TransitionStatus atomically appends the audit entry and moves the
// candidate to change.NewStatus. The candidate row is locked for the
// duration of the transaction so concurrent transitions on the same
// candidate serialize instead of computing the same previous status.
func (r *candidateRepository) TransitionStatus(ctx context.Context, id string, change *domain.StatusChange) (*domain.Candidate, error) {
	var candidate *domain.Candidate
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM candidates WHERE id=$1 FOR UPDATE`, candidateColumns)
		current, err := scanCandidateRow(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}

		previous := current.CurrentStatus
		change.CandidateID = current.ID
		change.PreviousStatus = &previous
		if err := appendStatusChange(ctx, tx, change); err != nil {
			return err
		}

		const update = `UPDATE candidates SET current_status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`
		if err := tx.QueryRow(ctx, update, change.NewStatus, current.ID).Scan(&current.UpdatedAt); err != nil {
			return err
		}
		current.CurrentStatus = change.NewStatus
		candidate = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

func scanCandidateRow(row pgx.Row) (*domain.Candidate, error) {
	var candidate domain.Candidate
	if err := row.Scan(
		&candidate.ID,
		&candidate.FullName,
		&candidate.Email,
		&candidate.DateOfBirth,
		&candidate.YearsOfExperience,
		&candidate.Department,
		&candidate.ResumeKey,
		&candidate.ResumeFilename,
		&candidate.CurrentStatus,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &candidate, nil
}

func scanCandidates(rows pgx.Rows) ([]domain.Candidate, error) {
	var result []domain.Candidate
	for rows.Next() {
		candidate, err := scanCandidateRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *candidate)
	}
	return result, rows.Err()
}
