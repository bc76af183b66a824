package model

import (
	"time"

	"github.com/google/uuid"
)

// EventParticipant (event_id, user_id) 由 unique constraint 保證唯一
type EventParticipant struct {
	ID       uuid.UUID `json:"id" db:"id"`
	EventID  uuid.UUID `json:"event_id" db:"event_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// ParticipationState 參加/退出後回傳給前端同步的狀態
type ParticipationState struct {
	EventID             uuid.UUID `json:"event_id"`
	UserID              uuid.UUID `json:"user_id"`
	IsParticipant       bool      `json:"is_participant"`
	CurrentParticipants int       `json:"current_participants"`
	MaxParticipants     int       `json:"max_participants"`
	AvailableSeats      int       `json:"available_seats"`
}

func NewParticipationState(event *Event, userID uuid.UUID, isParticipant bool) *ParticipationState {
	return &ParticipationState{
		EventID:             event.ID,
		UserID:              userID,
		IsParticipant:       isParticipant,
		CurrentParticipants: event.CurrentParticipants,
		MaxParticipants:     event.MaxParticipants,
		AvailableSeats:      event.AvailableSeats(),
	}
}

type ParticipationAction string

const (
	ParticipationActionJoin  ParticipationAction = "join"
	ParticipationActionLeave ParticipationAction = "leave"
)

// ParticipationChange 已提交的參加/退出紀錄，經由 queue 交給 reconcile worker
type ParticipationChange struct {
	RequestID  string              `json:"request_id"`
	EventID    uuid.UUID           `json:"event_id"`
	UserID     uuid.UUID           `json:"user_id"`
	Action     ParticipationAction `json:"action"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// ReconcileResult 計數校正結果
type ReconcileResult struct {
	EventID uuid.UUID `json:"event_id"`
	Before  int       `json:"before"`
	After   int       `json:"after"`
	Drifted bool      `json:"drifted"`
}
