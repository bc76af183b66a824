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
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter) ([]*model.Event, error)
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]*model.Event, error)
	ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error)

	// Transaction methods
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Event, error)
	IncrementParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error)
	DecrementParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error)
	SetParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID, count int) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `
	id, title, description, to_char(date, 'YYYY-MM-DD'), time, location,
	max_participants, current_participants, image_url, created_by,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.MaxParticipants,
		&event.CurrentParticipants,
		&event.ImageURL,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (
			title, description, date, time, location,
			max_participants, current_participants, image_url, created_by)
		VALUES ($1, $2, $3::date, $4, $5, $6, 0, $7, $8)
		RETURNING ` + eventColumns

	created, err := scanEvent(r.pool.QueryRow(ctx, query,
		event.Title, event.Description, event.Date, event.Time, event.Location,
		event.MaxParticipants, event.ImageURL, event.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// escapeLike 跳脫 LIKE 特殊字元
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func (r *EventRepositoryImpl) List(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	where := []string{}
	args := []interface{}{}
	argPos := 1
	order := "date DESC, time DESC"

	switch filter.Scope {
	case model.EventScopeUpcoming:
		where = append(where, fmt.Sprintf("date >= $%d::date", argPos))
		args = append(args, filter.Today)
		argPos++
		order = "date ASC, time ASC"
	case model.EventScopePast:
		where = append(where, fmt.Sprintf("date < $%d::date", argPos))
		args = append(args, filter.Today)
		argPos++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf(
			"(title ILIKE $%[1]d OR description ILIKE $%[1]d OR location ILIKE $%[1]d)", argPos))
		args = append(args, "%"+escapeLike(search)+"%")
		argPos++
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + order
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *EventRepositoryImpl) ListByCreator(ctx context.Context, userID uuid.UUID) ([]*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE created_by = $1
		ORDER BY date ASC, time ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *EventRepositoryImpl) ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id IN (SELECT event_id FROM event_participants WHERE user_id = $1)
		ORDER BY date ASC, time ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return scanEvent(tx.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value interface{}, cast string) {
		sets = append(sets, fmt.Sprintf("%s = $%d%s", column, argPos, cast))
		args = append(args, value)
		argPos++
	}

	if params.Title != nil {
		add("title", *params.Title, "")
	}
	if params.Description != nil {
		add("description", *params.Description, "")
	}
	if params.Date != nil {
		add("date", *params.Date, "::date")
	}
	if params.Time != nil {
		add("time", *params.Time, "")
	}
	if params.Location != nil {
		add("location", *params.Location, "")
	}
	guard := ""
	if params.MaxParticipants != nil {
		add("max_participants", *params.MaxParticipants, "")
		// 以同一筆 UPDATE 檢查，避免與參加交易交錯後容量低於人數
		guard = fmt.Sprintf(" AND $%d >= current_participants", argPos-1)
	}
	if params.ImageURL != nil {
		add("image_url", *params.ImageURL, "")
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	add("updated_at", time.Now().UTC(), "")

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d%s
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, guard, eventColumns)

	updated, err := scanEvent(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, apperrors.ErrEventNotFound) && guard != "" {
		// 區分活動不存在與容量低於目前人數
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, fmt.Errorf("%w: max_participants below current participants", apperrors.ErrInvalidInput)
		}
	}
	return updated, err
}

// IncrementParticipants 只有在未滿時才會 +1，回傳新的計數
func (r *EventRepositoryImpl) IncrementParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error) {
	query := `
		UPDATE events
		SET current_participants = current_participants + 1, updated_at = $1
		WHERE id = $2 AND current_participants < max_participants
		RETURNING current_participants
	`

	var current int
	err := tx.QueryRow(ctx, query, time.Now().UTC(), id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrEventFull
		}
		return 0, err
	}
	return current, nil
}

// DecrementParticipants -1，最低為 0
func (r *EventRepositoryImpl) DecrementParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error) {
	query := `
		UPDATE events
		SET current_participants = GREATEST(current_participants - 1, 0), updated_at = $1
		WHERE id = $2
		RETURNING current_participants
	`

	var current int
	err := tx.QueryRow(ctx, query, time.Now().UTC(), id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrEventNotFound
		}
		return 0, err
	}
	return current, nil
}

func (r *EventRepositoryImpl) SetParticipants(ctx context.Context, tx pgx.Tx, id uuid.UUID, count int) error {
	if count < 0 {
		return apperrors.ErrInvalidInput
	}

	query := `
		UPDATE events
		SET current_participants = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, count, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}
