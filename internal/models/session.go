package models

import "time"

// Session is one issued bearer token. ID doubles as the JWT jti claim;
// logout revokes the row, which kills the token before its exp.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
