package model

import "time"

// Token is the opaque credential bound to exactly one user
type Token struct {
	Key     string    `json:"-"`
	UserID  int64     `json:"-"`
	Created time.Time `json:"-"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token   string
	Profile *Profile
}
