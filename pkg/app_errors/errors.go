package apperrors

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")

	ErrEventFull              = errors.New("event is full")
	ErrAlreadyParticipant     = errors.New("already a participant")
	ErrNotParticipant         = errors.New("not a participant")
	ErrOwnerCannotParticipate = errors.New("organizer cannot join own event")
	ErrEventNotUpcoming       = errors.New("event has already started")

	// ErrSeatsNotWarmed Redis 尚未預熱該活動的座位資訊
	ErrSeatsNotWarmed = errors.New("event seats not warmed up")

	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)
