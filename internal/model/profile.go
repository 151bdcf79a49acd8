package model

import "time"

// Profile is the one-to-one extension of a User
type Profile struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"-"`
	User           User      `json:"user"`
	Photo          *string   `json:"-"` // Storage key of the photo asset
	PhoneNumber    *string   `json:"phone_number"`
	AdditionalInfo string    `json:"additional_info"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
}

// Upload is an uploaded file held in memory
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProfileInput carries the profile part of a registration
type ProfileInput struct {
	PhoneNumber    string  `json:"phone_number" validate:"required,max=20"`
	AdditionalInfo string  `json:"additional_info"`
	Photo          *Upload `json:"-"`
}

// RegistrationInput is the payload of the register endpoint
type RegistrationInput struct {
	Email     string       `json:"email" validate:"required,email,max=254"`
	FirstName string       `json:"first_name" validate:"max=150,letters"`
	LastName  string       `json:"last_name" validate:"max=150,letters"`
	Password  string       `json:"password" validate:"required"`
	Password2 string       `json:"password2" validate:"required"`
	Profile   ProfileInput `json:"profile"`
}

// ProfileUserInput is the nested user object accepted by admin profile creation
type ProfileUserInput struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	FirstName       string `json:"first_name" validate:"max=150,letters"`
	LastName        string `json:"last_name" validate:"max=150,letters"`
	IsPropertyOwner bool   `json:"is_property_owner"`
	IsAdmin         bool   `json:"is_admin"`
}

// ProfileCreateInput is the payload of POST /api/profiles/
type ProfileCreateInput struct {
	User           ProfileUserInput `json:"user"`
	PhoneNumber    *string          `json:"phone_number" validate:"omitempty,max=20"`
	AdditionalInfo string           `json:"additional_info"`
}

// ProfileUserUpdate holds the user fields a profile update may touch
type ProfileUserUpdate struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=150,letters"`
	LastName        *string `json:"last_name" validate:"omitempty,max=150,letters"`
	IsPropertyOwner *bool   `json:"is_property_owner"`
	IsAdmin         *bool   `json:"is_admin"`
}

// ProfileUpdateInput is the payload of PUT/PATCH /api/profiles/:id.
// Nil fields are left untouched by PATCH and cleared by PUT.
type ProfileUpdateInput struct {
	User           *ProfileUserUpdate `json:"user"`
	PhoneNumber    *string            `json:"phone_number" validate:"omitempty,max=20"`
	AdditionalInfo *string            `json:"additional_info"`
	Photo          *Upload            `json:"-"`
}

// ProfileFilters contains filter parameters for profile listing
type ProfileFilters struct {
	Email       *string
	PhoneNumber *string
	Search      *string
	Ordering    string // One of ProfileOrderings keys, empty for default
}

// ProfileOrderings maps accepted ordering parameters to SQL
var ProfileOrderings = map[string]string{
	"created_at":   "p.created_at ASC",
	"-created_at":  "p.created_at DESC",
	"modified_at":  "p.modified_at ASC",
	"-modified_at": "p.modified_at DESC",
}
