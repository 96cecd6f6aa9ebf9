// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
)

// Service exposes account administration used by the CLI.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Lookup(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}

func (s *Service) Deactivate(ctx context.Context, email string) (*User, error) {
	return s.setActive(ctx, email, false)
}

func (s *Service) Activate(ctx context.Context, email string) (*User, error) {
	return s.setActive(ctx, email, true)
}

func (s *Service) setActive(
	ctx context.Context,
	email string,
	active bool,
) (*User, error) {
	u, err := s.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, u.ID, active); err != nil {
		return nil, err
	}

	u.IsActive = active
	return u, nil
}

func (s *Service) SetTier(
	ctx context.Context,
	email, tier string,
) (*User, error) {
	if !ValidTier(tier) {
		return nil, fmt.Errorf("unknown tier %q", tier)
	}

	u, err := s.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTier(ctx, u.ID, tier); err != nil {
		return nil, err
	}

	u.Tier = tier
	return u, nil
}
