package repository

import (
	"testing"
	"time"

	"user_auth/internal/model"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

var userCols = []string{"id", "email", "password_hash", "first_name", "last_name", "is_property_owner", "is_admin", "is_staff", "is_active", "last_login", "date_joined"}

var profileCols = append([]string{"id", "user_id", "photo", "phone_number", "additional_info", "created_at", "modified_at"}, userCols...)

func userRow(u model.User) []any {
	return []any{u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsPropertyOwner, u.IsAdmin, u.IsStaff, u.IsActive, u.LastLogin, u.DateJoined}
}

func profileRow(p model.Profile) []any {
	return append([]any{p.ID, p.UserID, p.Photo, p.PhoneNumber, p.AdditionalInfo, p.CreatedAt, p.ModifiedAt}, userRow(p.User)...)
}

func sampleProfile(id, userID int64) model.Profile {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	phone := "+14155552671"
	return model.Profile{
		ID:             id,
		UserID:         userID,
		Photo:          (*string)(nil),
		PhoneNumber:    &phone,
		AdditionalInfo: "notes",
		CreatedAt:      now,
		ModifiedAt:     now,
		User: model.User{
			ID:         userID,
			Email:      "a@x.com",
			IsActive:   true,
			LastLogin:  (*time.Time)(nil),
			DateJoined: now,
		},
	}
}
