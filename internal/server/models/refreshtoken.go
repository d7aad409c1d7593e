package models

import "time"

// RefreshToken is a server-stored long-lived credential used to mint new
// access tokens.
type RefreshToken struct {
	Token   string
	UserID  string
	Expires time.Time
}
