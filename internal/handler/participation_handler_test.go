package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"go-gin-meetup/internal/model"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJoinEvent(t *testing.T) {
	eventID := uuid.New()
	userID := uuid.New()
	url := "/api/v1/events/" + eventID.String() + "/participation"

	t.Run("Success", func(t *testing.T) {
		s := setupTestServer(t)
		s.participation.On("Join", mock.Anything, sessionOf(userID), eventID).Return(&model.ParticipationState{
			EventID:             eventID,
			UserID:              userID,
			IsParticipant:       true,
			CurrentParticipants: 3,
			MaxParticipants:     10,
			AvailableSeats:      7,
		}, nil).Once()

		w := s.do(http.MethodPut, url, nil, s.token(t, userID))

		require.Equal(t, http.StatusOK, w.Code)
		var state model.ParticipationState
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		assert.True(t, state.IsParticipant)
		assert.Equal(t, 3, state.CurrentParticipants)
	})

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"Full", apperrors.ErrEventFull, http.StatusConflict},
		{"Duplicate", apperrors.ErrAlreadyParticipant, http.StatusConflict},
		{"Owner", apperrors.ErrOwnerCannotParticipate, http.StatusForbidden},
		{"Past", apperrors.ErrEventNotUpcoming, http.StatusConflict},
		{"NotFound", apperrors.ErrEventNotFound, http.StatusNotFound},
		{"NoProfile", apperrors.ErrProfileNotFound, http.StatusNotFound},
		{"Unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run("Failed - "+tc.name, func(t *testing.T) {
			s := setupTestServer(t)
			s.participation.On("Join", mock.Anything, mock.Anything, eventID).Return(nil, tc.err).Once()

			w := s.do(http.MethodPut, url, nil, s.token(t, userID))

			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}

	t.Run("Failed - No Token", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.do(http.MethodPut, url, nil, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Failed - Bad Token", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.do(http.MethodPut, url, nil, "not-a-jwt")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Failed - Invalid Event ID", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.do(http.MethodPut, "/api/v1/events/42/participation", nil, s.token(t, userID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeaveEvent(t *testing.T) {
	eventID := uuid.New()
	userID := uuid.New()
	url := "/api/v1/events/" + eventID.String() + "/participation"

	t.Run("Success", func(t *testing.T) {
		s := setupTestServer(t)
		s.participation.On("Leave", mock.Anything, sessionOf(userID), eventID).
			Return(&model.ParticipationState{EventID: eventID, CurrentParticipants: 0, MaxParticipants: 5, AvailableSeats: 5}, nil).Once()

		w := s.do(http.MethodDelete, url, nil, s.token(t, userID))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - NotParticipant", func(t *testing.T) {
		s := setupTestServer(t)
		s.participation.On("Leave", mock.Anything, mock.Anything, eventID).Return(nil, apperrors.ErrNotParticipant).Once()

		w := s.do(http.MethodDelete, url, nil, s.token(t, userID))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestToggleAndStatus(t *testing.T) {
	eventID := uuid.New()
	userID := uuid.New()
	base := "/api/v1/events/" + eventID.String() + "/participation"

	t.Run("Toggle", func(t *testing.T) {
		s := setupTestServer(t)
		s.participation.On("Toggle", mock.Anything, sessionOf(userID), eventID).
			Return(&model.ParticipationState{EventID: eventID, IsParticipant: true}, nil).Once()

		w := s.do(http.MethodPost, base+"/toggle", nil, s.token(t, userID))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Status", func(t *testing.T) {
		s := setupTestServer(t)
		s.participation.On("Status", mock.Anything, sessionOf(userID), eventID).
			Return(&model.ParticipationState{EventID: eventID}, nil).Once()

		w := s.do(http.MethodGet, base, nil, s.token(t, userID))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
