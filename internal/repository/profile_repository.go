package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateProfileParams) (*model.Profile, error)
}

type ProfileRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &ProfileRepositoryImpl{
		pool: pool,
	}
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var profile model.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) Create(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	query := `
		INSERT INTO profiles (id, email, full_name, avatar_url, bio)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, full_name, avatar_url, bio, created_at, updated_at
	`

	created, err := scanProfile(r.pool.QueryRow(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.AvatarURL, profile.Bio,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return created, nil
}

func (r *ProfileRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, email, full_name, avatar_url, bio, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *ProfileRepositoryImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateProfileParams) (*model.Profile, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.FullName != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", argPos))
		args = append(args, *params.FullName)
		argPos++
	}

	if params.AvatarURL != nil {
		sets = append(sets, fmt.Sprintf("avatar_url = $%d", argPos))
		args = append(args, *params.AvatarURL)
		argPos++
	}

	if params.Bio != nil {
		sets = append(sets, fmt.Sprintf("bio = $%d", argPos))
		args = append(args, *params.Bio)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE profiles
		SET %s
		WHERE id = $%d
		RETURNING id, email, full_name, avatar_url, bio, created_at, updated_at
	`, strings.Join(sets, ", "), argPos)

	return scanProfile(r.pool.QueryRow(ctx, query, args...))
}
