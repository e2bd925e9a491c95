package users

import (
	"strings"
	"time"
)

// User is one person who may have authorized calendar access.
type User struct {
	SlackUserID  string    `json:"slack_user_id"`
	SlackEmail   string    `json:"slack_email"`
	GoogleEmail  string    `json:"google_email,omitempty"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry,omitzero"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// Authorized reports whether the user holds a calendar credential and is eligible for polling.
func (u User) Authorized() bool {
	return strings.TrimSpace(u.RefreshToken) != ""
}

// SaveCredentialRequest carries the result of a completed calendar authorization.
type SaveCredentialRequest struct {
	SlackUserID  string
	SlackEmail   string
	GoogleEmail  string
	RefreshToken string
	TokenExpiry  time.Time
}
