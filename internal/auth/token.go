// AngelaMos | 2026
// token.go

package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/user"
)

// Claims is the verified payload of a session token.
type Claims struct {
	ID        string
	UserID    string
	Email     string
	Tier      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 session tokens with a secret
// fixed for the life of the process.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg config.JWTConfig, opts ...TokenOption) *TokenService {
	secret := cfg.Secret
	if cfg.UsingDevSecret() {
		slog.Warn("JWT_SECRET not set, signing tokens with the development secret",
			"action", "set JWT_SECRET before deploying")
		secret = config.DevJWTSecret
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    cfg.TTL(),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for u and its expiry.
func (s *TokenService) Issue(u *user.User) (string, time.Time, error) {
	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	builder := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Subject(u.ID).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("email", u.Email).
		Claim("tier", u.Tier)
	if s.issuer != "" {
		builder = builder.Issuer(s.issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w: %w", core.ErrSigning, err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w: %w", core.ErrSigning, err)
	}

	return string(signed), expiresAt, nil
}

// Verify checks signature and expiry with no clock skew allowance.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256(), s.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
		jwt.WithAcceptableSkew(0),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("verify token: missing subject: %w", core.ErrTokenInvalid)
	}

	claims := &Claims{UserID: subject}

	if err := token.Get("email", &claims.Email); err != nil {
		return nil, fmt.Errorf("verify token: missing email claim: %w", core.ErrTokenInvalid)
	}
	if err := token.Get("tier", &claims.Tier); err != nil {
		return nil, fmt.Errorf("verify token: missing tier claim: %w", core.ErrTokenInvalid)
	}

	exp, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf("verify token: missing exp: %w", core.ErrTokenInvalid)
	}
	claims.ExpiresAt = exp

	if iat, ok := token.IssuedAt(); ok {
		claims.IssuedAt = iat
	}
	if jti, ok := token.JwtID(); ok {
		claims.ID = jti
	}

	return claims, nil
}

func isTokenExpiredError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
