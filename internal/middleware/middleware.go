package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/MainePadFinder/padfinder/internal/utils"
	"github.com/go-chi/cors"
)

// SessionCookieName is the cookie that carries the opaque session token.
const SessionCookieName = "token"

// unauthorizedMessage is shared by every authentication failure so callers
// cannot tell an unknown token from an expired one.
const unauthorizedMessage = "Unauthorized"

type SessionFetcher interface {
	FindSessionByToken(ctx context.Context, token string) (utils.SessionData, error)
}

type RoleResolver interface {
	ResolveRole(ctx context.Context, userID uint) (utils.Role, error)
}

func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				utils.WriteError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			session, err := fetcher.FindSessionByToken(r.Context(), cookie.Value)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			if !time.Now().Before(session.ExpiresAt) {
				utils.WriteError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			ctx := utils.WithUserID(r.Context(), session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware resolves the caller's role once and stores it in the context
// for every downstream handler. Must run after SessionMiddleware.
func RoleMiddleware(resolver RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			role, err := resolver.ResolveRole(r.Context(), userID)
			if err != nil {
				log.Printf("[auth] resolve role for user %d: %v", userID, err)
				utils.WriteError(w, http.StatusInternalServerError, "Failed to resolve role")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithRole(r.Context(), role)))
		})
	}
}

// RequireRole rejects callers whose resolved role differs with a 403.
func RequireRole(role utils.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}
			if got != role {
				utils.WriteError(w, http.StatusForbidden, "Forbidden: "+string(role)+" access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows exactly one frontend origin, with credentials.
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Server-Timing"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
