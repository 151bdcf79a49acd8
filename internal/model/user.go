package model

import "time"

// User represents an account identified by email
type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // Empty means the account has no usable password
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	IsPropertyOwner bool       `json:"is_property_owner"`
	IsAdmin         bool       `json:"is_admin"`
	IsStaff         bool       `json:"-"`
	IsActive        bool       `json:"-"`
	LastLogin       *time.Time `json:"-"`
	DateJoined      time.Time  `json:"-"`
}

// CanManage reports whether u may modify resources owned by ownerID
func (u *User) CanManage(ownerID int64) bool {
	return u.ID == ownerID || u.IsPrivileged()
}

// IsPrivileged reports whether u has admin or staff rights
func (u *User) IsPrivileged() bool {
	return u.IsAdmin || u.IsStaff
}

// HasUsablePassword reports whether the account can log in with a password
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}

// LoginInput is the payload of the login and legacy token endpoints
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SuperuserInput is accepted by the createsuperuser command
type SuperuserInput struct {
	Email       string  `json:"email" validate:"required,email,max=254"`
	Password    string  `json:"password" validate:"required"`
	FirstName   string  `json:"first_name" validate:"max=150,letters"`
	LastName    string  `json:"last_name" validate:"max=150,letters"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
}
