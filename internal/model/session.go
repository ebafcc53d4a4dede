package model

import "time"

// SessionData is what the session store keeps for an issued token.
// It only names the account; the guard re-reads the account on every call.
type SessionData struct {
	AccountID int64     `json:"account_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
