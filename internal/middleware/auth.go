// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/user"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "session_token"
)

type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*user.User, error)
}

// Authenticator rejects requests without a live session. mapErr turns a
// verification failure into the error written to the client.
func Authenticator(
	verifier SessionVerifier,
	mapErr func(error) error,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			u, err := verifier.VerifySession(r.Context(), token)
			if err != nil {
				core.JSONError(w, mapErr(err))
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, u)
			ctx = context.WithValue(ctx, TokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func GetUser(ctx context.Context) *user.User {
	if u, ok := ctx.Value(UserKey).(*user.User); ok {
		return u
	}
	return nil
}

func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}

func GetUserTier(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Tier
	}
	return ""
}
