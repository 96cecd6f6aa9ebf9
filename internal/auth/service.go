// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/session"
	"github.com/qhub-dev/qhub/internal/user"
)

// Service composes hashing, tokens and the user and session stores into
// the register, login, logout and verify flows.
type Service struct {
	users    user.Repository
	sessions session.Repository
	tokens   *TokenService
	hasher   *core.PasswordHasher
	validate *validator.Validate
	now      func() time.Time
}

func NewService(
	users user.Repository,
	sessions session.Repository,
	tokens *TokenService,
	hasher *core.PasswordHasher,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      tokens.now,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	client ClientInfo,
) (resp *AuthResponse, err error) {
	ctx, span := core.StartSpan(ctx, "auth.Register")
	defer func() { core.EndSpan(span, err) }()

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.storageFailure(ctx, "register", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: &passwordHash,
		Tier:         user.TierFree,
		IsActive:     true,
	}
	if req.Username != "" {
		u.Username = &req.Username
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, s.storageFailure(ctx, "register", err)
	}

	span.SetAttributes(attribute.String("user.id", u.ID))
	slog.InfoContext(ctx, "user registered", "user_id", u.ID)

	return s.openSession(ctx, u, client)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	client ClientInfo,
) (resp *AuthResponse, err error) {
	ctx, span := core.StartSpan(ctx, "auth.Login")
	defer func() { core.EndSpan(span, err) }()

	req.Email = strings.TrimSpace(req.Email)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // equalizes timing with the wrong-password path
			_, _, _ = s.hasher.VerifyTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, s.storageFailure(ctx, "login", err)
	}

	valid, newHash, err := s.hasher.VerifyTimingSafe(req.Password, u.PasswordHash)
	if err != nil {
		slog.ErrorContext(ctx, "stored password hash unreadable",
			"user_id", u.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrAccountDeactivated
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, s.storageFailure(ctx, "login", err)
	}
	u.LastLoginAt = &now

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, u.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash not saved",
				"user_id", u.ID, "error", err)
		}
	}

	span.SetAttributes(attribute.String("user.id", u.ID))

	return s.openSession(ctx, u, client)
}

// Logout removes the session for token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) (err error) {
	ctx, span := core.StartSpan(ctx, "auth.Logout")
	defer func() { core.EndSpan(span, err) }()

	if err := s.sessions.Delete(ctx, core.HashToken(token)); err != nil {
		return s.storageFailure(ctx, "logout", err)
	}
	return nil
}

// LogoutAll removes every session of userID and returns how many there were.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, s.storageFailure(ctx, "logout all", err)
	}
	return n, nil
}

// VerifySession resolves token to its current user, refreshing the
// session's last activity.
func (s *Service) VerifySession(
	ctx context.Context,
	token string,
) (u *user.User, err error) {
	ctx, span := core.StartSpan(ctx, "auth.VerifySession")
	defer func() { core.EndSpan(span, err) }()

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	now := s.now()

	sess, err := s.sessions.FindActive(ctx, core.HashToken(token), now)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, s.storageFailure(ctx, "verify session", err)
	}

	if sess.UserID != claims.UserID {
		slog.WarnContext(ctx, "session subject mismatch",
			"session_id", sess.ID, "subject", claims.UserID)
		return nil, ErrInvalidSession
	}

	if err := s.sessions.Touch(ctx, sess.ID, now); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, s.storageFailure(ctx, "verify session", err)
	}

	u, err = s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, s.storageFailure(ctx, "verify session", err)
	}

	if !u.IsActive {
		return nil, ErrAccountDeactivated
	}

	return u, nil
}

func (s *Service) ListSessions(
	ctx context.Context,
	userID string,
) ([]session.Session, error) {
	sessions, err := s.sessions.ListActiveForUser(ctx, userID, s.now())
	if err != nil {
		return nil, s.storageFailure(ctx, "list sessions", err)
	}
	return sessions, nil
}

// SweepExpiredSessions deletes sessions past their expiry.
func (s *Service) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, s.storageFailure(ctx, "sweep sessions", err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}

// openSession issues a token for u and stores its hash. If the session
// insert fails the user row stays; the caller may simply log in again.
func (s *Service) openSession(
	ctx context.Context,
	u *user.User,
	client ClientInfo,
) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	sess := &session.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: core.HashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	if client.DeviceInfo != "" {
		sess.DeviceInfo = &client.DeviceInfo
	}
	if client.IPAddress != "" {
		sess.IPAddress = &client.IPAddress
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, s.storageFailure(ctx, "create session", err)
	}

	return &AuthResponse{
		User:      u,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return fmt.Errorf("%w: %s", ErrValidation, fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func (s *Service) storageFailure(ctx context.Context, op string, err error) error {
	slog.ErrorContext(ctx, "auth storage failure", "op", op, "error", err)
	if errors.Is(err, core.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return core.StorageError(op, err)
}
