package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenParser resolves a bearer token to the user id it was issued for.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

// UserLookup loads users by id. It returns nil, nil when the user does not exist.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Authenticate resolves the caller from an "Authorization: Bearer" header or,
// failing that, the session cookie, and stores the user in the request context.
func Authenticate(tokens TokenParser, users UserLookup, cookieName string, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					token = c.Value
				}
			}

			if token == "" {
				logger.Debug().Str("path", r.URL.Path).Msg("missing token")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "token not provided")
				return
			}

			userID, err := tokens.Parse(token)
			if err != nil {
				message := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "token expired"
				}
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("rejected token")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthenticated, message)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to look up user")
				writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				return
			}

			if user == nil {
				logger.Warn().Str("user_id", userID.String()).Msg("token subject no longer exists")
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					HttpOnly: true,
				})
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "user not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects callers that are not administrators.
// It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil {
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "user is not authenticated")
			return
		}
		if !user.IsAdmin {
			writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
