package repository

import (
	"context"
	"errors"
	"fmt"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantRepository interface {
	Exists(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.EventParticipant, error)
	ListUserIDsByEventID(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, eventID, userID uuid.UUID) (*model.EventParticipant, error)
	Delete(ctx context.Context, tx pgx.Tx, eventID, userID uuid.UUID) error
	CountByEventID(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (int, error)
}

const (
	foreignKeyViolation = "23503"
	participantUserFK   = "event_participants_user_id_fkey"
)

type ParticipantRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) ParticipantRepository {
	return &ParticipantRepositoryImpl{
		pool: pool,
	}
}

func (r *ParticipantRepositoryImpl) Exists(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM event_participants
			WHERE event_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ParticipantRepositoryImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.EventParticipant, error) {
	query := `
		SELECT id, event_id, user_id, joined_at
		FROM event_participants
		WHERE event_id = $1
		ORDER BY joined_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*model.EventParticipant, 0)
	for rows.Next() {
		var p model.EventParticipant
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *ParticipantRepositoryImpl) ListUserIDsByEventID(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM event_participants WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// Create 重複參加時不寫入，回傳 ErrAlreadyParticipant；使用者沒有 profile 時回傳 ErrProfileNotFound
func (r *ParticipantRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, eventID, userID uuid.UUID) (*model.EventParticipant, error) {
	query := `
		INSERT INTO event_participants (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id, event_id, user_id, joined_at
	`

	var p model.EventParticipant
	err := tx.QueryRow(ctx, query, eventID, userID).Scan(&p.ID, &p.EventID, &p.UserID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAlreadyParticipant
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			// 有 token 但尚未建立 profile
			if pgErr.ConstraintName == participantUserFK {
				return nil, apperrors.ErrProfileNotFound
			}
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	return &p, nil
}

func (r *ParticipantRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, eventID, userID uuid.UUID) error {
	query := `
		DELETE FROM event_participants
		WHERE event_id = $1 AND user_id = $2
	`

	result, err := tx.Exec(ctx, query, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotParticipant
	}

	return nil
}

func (r *ParticipantRepositoryImpl) CountByEventID(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM event_participants WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
