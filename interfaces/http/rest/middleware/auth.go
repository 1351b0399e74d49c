package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"teamsqa-backend/pkg/auth"
	"teamsqa-backend/pkg/common"
	apperrors "teamsqa-backend/pkg/errors"
)

// Authenticate validates the bearer token and attaches the user to the
// request context. Admin routes sit behind this.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				common.RespondAppError(w, apperrors.NewUnauthorized("missing bearer token"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Warn("token rejected",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("ip", ClientIP(r)),
				)
				switch err {
				case auth.ErrExpiredToken:
					common.RespondAppError(w, apperrors.NewUnauthorized("token expired"))
				case auth.ErrInvalidSignature:
					common.RespondAppError(w, apperrors.NewUnauthorized("invalid token signature"))
				default:
					common.RespondAppError(w, apperrors.NewUnauthorized("invalid token"))
				}
				return
			}

			user := common.AuthenticatedUser{
				ID:    claims.UserID,
				Email: claims.Email,
				Role:  claims.Role,
			}
			next.ServeHTTP(w, common.RequestWithUser(r, user))
		})
	}
}

// RequireRole rejects authenticated users whose role is not in the allowed
// set. Apply after Authenticate.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := common.GetUser(r.Context())
			if !ok {
				common.RespondAppError(w, apperrors.NewUnauthorized("not authenticated"))
				return
			}
			if !allowed[user.Role] {
				common.RespondAppError(w, apperrors.NewForbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ThrottleByIP limits requests per client IP. It fronts the public form
// endpoints, which accept unauthenticated traffic.
func ThrottleByIP(limiter *auth.SlidingWindowLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow("ip:" + ClientIP(r)) {
				common.RespondAppError(w, &apperrors.AppError{
					Type:    apperrors.ErrorTypeRateLimit,
					Message: "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// ClientIP extracts the caller's IP, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
