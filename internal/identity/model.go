package identity

import (
	"github.com/intern-assistant/platform/internal/shared/auth"
)

// User is an identity record. Accounts are created at startup (seed)
// or administratively; they are never deleted in normal operation.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName  string    `gorm:"not null" json:"display_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         auth.Role `gorm:"default:intern" json:"role"`
}

// TableName pins the table name regardless of gorm pluralization rules.
func (User) TableName() string { return "users" }

// LoginRequest is the credential exchange payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}
