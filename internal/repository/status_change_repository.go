package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/recruiting-service/internal/domain"
)

// StatusChangeRepository reads the append-only audit trail. Appends go
// through appendStatusChange inside the candidate transactions; no
// update or delete operations exist.
type StatusChangeRepository interface {
	ListForCandidate(ctx context.Context, candidateID string) ([]domain.StatusChange, error)
}

type statusChangeRepository struct {
	pool *pgxpool.Pool
}

// NewStatusChangeRepository builds repository.
func NewStatusChangeRepository(pool *pgxpool.Pool) StatusChangeRepository {
	return &statusChangeRepository{pool: pool}
}

func (r *statusChangeRepository) ListForCandidate(ctx context.Context, candidateID string) ([]domain.StatusChange, error) {
	const query = `
        SELECT id, candidate_id, previous_status, new_status, feedback, actor, created_at
        FROM status_changes WHERE candidate_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		var previous *string
		if err := rows.Scan(
			&change.ID,
			&change.CandidateID,
			&previous,
			&change.NewStatus,
			&change.Feedback,
			&change.Actor,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		if previous != nil {
			status := domain.ApplicationStatus(*previous)
			change.PreviousStatus = &status
		}
		result = append(result, change)
	}
	return result, rows.Err()
}

// appendStatusChange inserts one audit entry on the given querier,
// typically the transaction wrapping the paired candidate write.
func appendStatusChange(ctx context.Context, q Querier, change *domain.StatusChange) error {
	const query = `
        INSERT INTO status_changes (candidate_id, previous_status, new_status, feedback, actor)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	var previous *string
	if change.PreviousStatus != nil {
		value := string(*change.PreviousStatus)
		previous = &value
	}
	return q.QueryRow(ctx, query,
		change.CandidateID,
		previous,
		change.NewStatus,
		change.Feedback,
		change.Actor,
	).Scan(&change.ID, &change.CreatedAt)
}
