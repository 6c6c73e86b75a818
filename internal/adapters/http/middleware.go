package httpadapter

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
	ctxUserID       = "paceful.user_id"
)

// requestContext assigns a request id and stores it in the request context.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

// requestLogger logs every request once it is served.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		log := observability.LoggerFromContext(c.Request.Context())
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case status >= 500:
			log.Errorw("HTTP request", fields...)
		case status >= 400:
			log.Warnw("HTTP request", fields...)
		default:
			log.Infow("HTTP request", fields...)
		}
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", headerRequestID, headerUserID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// authenticator resolves the calling user. With a secret it requires an HS256
// bearer token whose subject is the user id. Without one, and only when
// trustHeader is set (local mode), the X-User-ID header is accepted.
type authenticator struct {
	secret      []byte
	trustHeader bool
}

var errUnauthenticated = errors.New("missing or invalid credentials")

func (a authenticator) userFrom(c *gin.Context) (domain.UserID, error) {
	if len(a.secret) > 0 {
		return a.userFromToken(c.GetHeader("Authorization"))
	}
	if a.trustHeader {
		if u := strings.TrimSpace(c.GetHeader(headerUserID)); u != "" {
			return domain.UserID(u), nil
		}
	}
	return "", errUnauthenticated
}

func (a authenticator) userFromToken(header string) (domain.UserID, error) {
	if len(header) <= 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", errUnauthenticated
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(header[7:], claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errUnauthenticated
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errUnauthenticated
	}
	return domain.UserID(claims.Subject), nil
}

func (a authenticator) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := a.userFrom(c)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(ctxUserID, userID)
		c.Request = c.Request.WithContext(observability.WithUserID(c.Request.Context(), string(userID)))
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.UserID {
	v, _ := c.Get(ctxUserID)
	u, _ := v.(domain.UserID)
	return u
}
