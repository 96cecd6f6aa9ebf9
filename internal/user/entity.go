// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// User is an account row. PasswordHash is nil for accounts provisioned by
// an external identity provider.
type User struct {
	ID            string     `db:"id"`
	Email         string     `db:"email"`
	Username      *string    `db:"username"`
	DisplayName   *string    `db:"display_name"`
	PasswordHash  *string    `db:"password_hash"`
	Tier          string     `db:"tier"`
	IsActive      bool       `db:"is_active"`
	EmailVerified bool       `db:"email_verified"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	LastLoginAt   *time.Time `db:"last_login_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) Name() string {
	switch {
	case u.DisplayName != nil && *u.DisplayName != "":
		return *u.DisplayName
	case u.Username != nil && *u.Username != "":
		return *u.Username
	default:
		return u.Email
	}
}

const (
	TierFree       = "free"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

func ValidTier(tier string) bool {
	switch tier {
	case TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}
