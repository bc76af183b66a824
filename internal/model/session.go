package model

import (
	"time"

	"github.com/google/uuid"
)

// Session 由 bearer token 解析而來，明確傳入每個 service 呼叫
type Session struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}
