// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/session"
	"github.com/qhub-dev/qhub/internal/user"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Username string `json:"username" validate:"omitempty,min=1,max=64"`
}

// ClientInfo describes the device a session was opened from.
type ClientInfo struct {
	DeviceInfo string
	IPAddress  string
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthResponse is returned by register and login. Token is the raw session
// token; only its hash is stored.
type AuthResponse struct {
	User      *user.User `json:"-"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"-"`
}

type authResponseBody struct {
	User   user.Response `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

func (r *AuthResponse) body(now time.Time) authResponseBody {
	return authResponseBody{
		User: user.ToResponse(r.User),
		Tokens: TokenResponse{
			AccessToken: r.Token,
			TokenType:   "Bearer",
			ExpiresIn:   int(r.ExpiresAt.Sub(now).Seconds()),
			ExpiresAt:   r.ExpiresAt,
		},
	}
}

type SessionInfo struct {
	ID           string    `json:"id"`
	DeviceInfo   string    `json:"device_info,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsCurrent    bool      `json:"is_current"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

func toSessionInfo(s session.Session, currentToken string) SessionInfo {
	info := SessionInfo{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
		IsCurrent:    core.CompareTokenHash(currentToken, s.TokenHash),
	}
	if s.DeviceInfo != nil {
		info.DeviceInfo = *s.DeviceInfo
	}
	if s.IPAddress != nil {
		info.IPAddress = *s.IPAddress
	}
	return info
}
