// AngelaMos | 2026
// state.go

package auth

import (
	"sync"
	"time"

	"github.com/qhub-dev/qhub/internal/user"
)

type Phase int

const (
	Anonymous Phase = iota
	Authenticating
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Identity is what the client remembers about the signed-in user.
type Identity struct {
	UserID    string
	Email     string
	Tier      string
	Token     string
	ExpiresAt time.Time
}

// State tracks the client side of authentication:
// Anonymous -> Authenticating -> Authenticated, or back to Anonymous on
// failure or logout. It is safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	phase    Phase
	identity *Identity
}

func NewState() *State {
	return &State{}
}

// Begin moves to Authenticating. It fails while another attempt is in
// flight; an authenticated client may begin a fresh login.
func (s *State) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Authenticating {
		return ErrAuthBusy
	}
	s.phase = Authenticating
	return nil
}

// Succeed records resp and moves to Authenticated.
func (s *State) Succeed(resp *AuthResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = Authenticated
	s.identity = &Identity{
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
		Tier:      resp.User.Tier,
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
	}
}

// Refresh updates the cached profile after a successful verification.
func (s *State) Refresh(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil || s.identity.UserID != u.ID {
		return
	}
	s.identity.Email = u.Email
	s.identity.Tier = u.Tier
}

// Fail abandons an attempt and clears any identity.
func (s *State) Fail() {
	s.Reset()
}

func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = Anonymous
	s.identity = nil
}

func (s *State) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Identity returns a copy of the current identity, or nil.
func (s *State) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return ""
	}
	return s.identity.Token
}
