package handler

import (
	"net/http"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionKey      = "session"
	requestIDHeader = "X-Request-ID"
)

// SessionParser 由 auth.Verifier 實作
type SessionParser interface {
	ParseBearer(header string) (*model.Session, error)
}

type AuthMiddleware struct {
	parser SessionParser
}

func NewAuthMiddleware(parser SessionParser) *AuthMiddleware {
	return &AuthMiddleware{parser: parser}
}

// RequireSession 沒有合法 token 時回 401
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.parser.ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			logger.WithComponent("auth").Debug("rejected request", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// OptionalSession 有 Authorization header 才解析，格式錯誤仍回 401
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		session, err := m.parser.ParseBearer(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom 未登入時回傳 nil
func SessionFrom(c *gin.Context) *model.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*model.Session)
	return session
}

// RequestLogger 以 zap 記錄每個請求
func RequestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if session := SessionFrom(c); session != nil {
			fields = append(fields, zap.String("user_id", session.UserID.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
