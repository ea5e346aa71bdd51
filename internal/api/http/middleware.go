package http

import (
	"context"
	"net"
	"net/http"
	"strings"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/logger"
	"teamspace-backend/internal/security"

	"github.com/google/uuid"
)

// AuthMiddleware resolves the authenticated principal from a bearer
// token. Authentication itself is the identity collaborator's job; this
// middleware only verifies the token and extracts the user ID.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeErrorStatus(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.tokenManager.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeErrorStatus(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID tags every request with a fresh ID for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		logger.WithRequest(requestID).Debug("request received", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestMeta captures the best-effort network metadata recorded on join
// audit entries.
func requestMeta(r *http.Request) domain.RequestMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// First hop of the forwarding chain.
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		ip = strings.TrimSpace(ip)
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return domain.RequestMeta{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
