package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Username     string     `json:"username" db:"username" example:"nguyenvana"`
	Email        string     `json:"email" db:"email" example:"a.nguyen@fit.edu.vn"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         RoleType   `json:"role" db:"role" example:"alumni"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanModify reports whether u may edit or delete a resource owned by ownerID
func (u *User) CanModify(ownerID int64) bool {
	return u != nil && (u.ID == ownerID || u.Role == RoleAdmin)
}

// UserFilter narrows the admin user listing
type UserFilter struct {
	Search string
	Role   RoleType
	Page   Page
}

// Session is the server-side record behind a login
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UserAgent string    `json:"-" db:"user_agent"`
	IP        string    `json:"-" db:"ip"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// PasswordResetToken is a one-time token mailed on password reset requests
type PasswordResetToken struct {
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	Used       bool      `db:"used"`
}
