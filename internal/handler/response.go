package handler

import (
	"time"

	"user_auth/internal/model"
	"user_auth/internal/storage"
)

type userResponse struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	IsPropertyOwner bool   `json:"is_property_owner"`
	IsAdmin         bool   `json:"is_admin"`
}

type profileResponse struct {
	ID             int64        `json:"id"`
	User           userResponse `json:"user"`
	Photo          *string      `json:"photo"`
	PhoneNumber    *string      `json:"phone_number"`
	AdditionalInfo string       `json:"additional_info"`
	CreatedAt      time.Time    `json:"created_at"`
	ModifiedAt     time.Time    `json:"modified_at"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  profileResponse `json:"user"`
}

// newProfileResponse renders a profile with its photo as a public URL
func newProfileResponse(p *model.Profile, media storage.Storage) profileResponse {
	resp := profileResponse{
		ID: p.ID,
		User: userResponse{
			ID:              p.User.ID,
			Email:           p.User.Email,
			FirstName:       p.User.FirstName,
			LastName:        p.User.LastName,
			IsPropertyOwner: p.User.IsPropertyOwner,
			IsAdmin:         p.User.IsAdmin,
		},
		PhoneNumber:    p.PhoneNumber,
		AdditionalInfo: p.AdditionalInfo,
		CreatedAt:      p.CreatedAt,
		ModifiedAt:     p.ModifiedAt,
	}
	if p.Photo != nil && *p.Photo != "" {
		url := media.URL(*p.Photo)
		resp.Photo = &url
	}
	return resp
}

func newProfileListResponse(profiles []model.Profile, media storage.Storage) []profileResponse {
	out := make([]profileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, newProfileResponse(&profiles[i], media))
	}
	return out
}
