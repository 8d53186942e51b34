package domain

import "time"

// User represents a campaign creator account.
// Corresponds to the users table in PostgreSQL.
type User struct {
	ID             string // PRIMARY KEY, uuid
	WalletAddress  string
	Username       string
	AvatarURL      string
	XHandle        string
	TelegramHandle string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // nil means active
}

// Active reports whether the user has not been soft-deleted.
func (u *User) Active() bool {
	return u.DeletedAt == nil
}
