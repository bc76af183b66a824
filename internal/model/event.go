package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event 活動模型，current_participants 為冗餘計數，與 event_participants 同交易更新
type Event struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	Title               string    `json:"title" db:"title"`
	Description         string    `json:"description" db:"description"`
	Date                string    `json:"date" db:"date"`
	Time                string    `json:"time" db:"time"`
	Location            string    `json:"location" db:"location"`
	MaxParticipants     int       `json:"max_participants" db:"max_participants"`
	CurrentParticipants int       `json:"current_participants" db:"current_participants"`
	ImageURL            *string   `json:"image_url" db:"image_url"`
	CreatedBy           uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// StartsAt 合併日期與時間，loc 為 nil 時視為 UTC
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event start: %w", err)
	}
	return t, nil
}

// IsUpcoming 活動開始時間是否在 now 之後，無法解析的日期視為已過
func (e *Event) IsUpcoming(now time.Time) bool {
	start, err := e.StartsAt(now.Location())
	if err != nil {
		return false
	}
	return start.After(now)
}

func (e *Event) IsFull() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

func (e *Event) AvailableSeats() int {
	if e.IsFull() {
		return 0
	}
	return e.MaxParticipants - e.CurrentParticipants
}

func (e *Event) IsOwnedBy(userID uuid.UUID) bool {
	return e.CreatedBy == userID
}

// EventScope 列表篩選範圍
type EventScope string

const (
	EventScopeAll      EventScope = "all"
	EventScopeUpcoming EventScope = "upcoming"
	EventScopePast     EventScope = "past"
)

func (s EventScope) IsValid() bool {
	switch s {
	case EventScopeAll, EventScopeUpcoming, EventScopePast:
		return true
	}
	return false
}

// EventFilter Today 以 YYYY-MM-DD 表示，與 date 欄位比較；Limit 為 0 表示不限
type EventFilter struct {
	Scope  EventScope
	Search string
	Today  string
	Limit  int
}

type CreateEventParams struct {
	Title           string
	Description     string
	Date            string
	Time            string
	Location        string
	MaxParticipants int
	ImageURL        *string
}

// Validate 檢查必填欄位與日期格式，日期不可早於 now 的當天
func (p CreateEventParams) Validate(now time.Time) error {
	if p.Title == "" || p.Description == "" || p.Location == "" {
		return fmt.Errorf("title, description and location are required")
	}
	if p.MaxParticipants <= 0 {
		return fmt.Errorf("max_participants must be positive")
	}
	date, err := time.ParseInLocation(DateLayout, p.Date, now.Location())
	if err != nil {
		return fmt.Errorf("invalid date %q", p.Date)
	}
	if _, err := time.Parse(TimeLayout, p.Time); err != nil {
		return fmt.Errorf("invalid time %q", p.Time)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return fmt.Errorf("date %q is in the past", p.Date)
	}
	return nil
}

type UpdateEventParams struct {
	Title           *string
	Description     *string
	Date            *string
	Time            *string
	Location        *string
	MaxParticipants *int
	ImageURL        *string
}

func (p UpdateEventParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil &&
		p.Location == nil && p.MaxParticipants == nil && p.ImageURL == nil
}

func (p UpdateEventParams) Validate() error {
	if p.Date != nil {
		if _, err := time.Parse(DateLayout, *p.Date); err != nil {
			return fmt.Errorf("invalid date %q", *p.Date)
		}
	}
	if p.Time != nil {
		if _, err := time.Parse(TimeLayout, *p.Time); err != nil {
			return fmt.Errorf("invalid time %q", *p.Time)
		}
	}
	if p.MaxParticipants != nil && *p.MaxParticipants <= 0 {
		return fmt.Errorf("max_participants must be positive")
	}
	for _, s := range []*string{p.Title, p.Description, p.Location} {
		if s != nil && *s == "" {
			return fmt.Errorf("title, description and location cannot be empty")
		}
	}
	return nil
}

// EventDetail 活動詳情頁所需資料
type EventDetail struct {
	Event          *Event   `json:"event"`
	Organizer      *Profile `json:"organizer"`
	IsParticipant  bool     `json:"is_participant"`
	IsOrganizer    bool     `json:"is_organizer"`
	IsUpcoming     bool     `json:"is_upcoming"`
	IsFull         bool     `json:"is_full"`
	AvailableSeats int      `json:"available_seats"`
}
