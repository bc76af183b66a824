package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-gin-meetup/config"
	"go-gin-meetup/internal/auth"
	"go-gin-meetup/internal/handler"
	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var InvalidJSON = `{"invalid": json}`

type testServer struct {
	router        *gin.Engine
	verifier      *auth.Verifier
	events        *mocks.MockEventService
	participation *mocks.MockParticipationService
	profiles      *mocks.MockProfileService
	dashboard     *mocks.MockDashboardService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewVerifier(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "meetup-test"})
	require.NoError(t, err)

	s := &testServer{
		verifier:      verifier,
		events:        mocks.NewMockEventService(t),
		participation: mocks.NewMockParticipationService(t),
		profiles:      mocks.NewMockProfileService(t),
		dashboard:     mocks.NewMockDashboardService(t),
	}
	s.router = handler.NewRouter(handler.Handlers{
		Event:         handler.NewEventHandler(s.events),
		Participation: handler.NewParticipationHandler(s.participation),
		Profile:       handler.NewProfileHandler(s.profiles),
		Dashboard:     handler.NewDashboardHandler(s.dashboard),
	}, handler.NewAuthMiddleware(verifier))
	return s
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := s.verifier.Sign(userID, "user@test.com", time.Hour)
	require.NoError(t, err)
	return token
}

// do 發送請求，token 為空時不帶 Authorization
func (s *testServer) do(method, url string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = bytes.NewBuffer(nil)
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		buf = bytes.NewBuffer(data)
	}
	req, _ := http.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sessionOf(userID uuid.UUID) interface{} {
	return mock.MatchedBy(func(s *model.Session) bool {
		return s != nil && s.UserID == userID
	})
}
