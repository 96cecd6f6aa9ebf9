// AngelaMos | 2026
// entity.go

package session

import (
	"time"
)

// Session is one logged-in device. Only the sha256 hash of the token is
// kept; the raw token lives with the client.
type Session struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	TokenHash    string    `db:"token_hash"`
	DeviceInfo   *string   `db:"device_info"`
	IPAddress    *string   `db:"ip_address"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
	LastActiveAt time.Time `db:"last_active_at"`
}
