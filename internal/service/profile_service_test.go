package service

import (
	"context"
	"errors"
	"testing"

	"user_auth/internal/model"
	"user_auth/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func (e *testEnv) admin(t *testing.T) *model.User {
	t.Helper()
	u, err := e.auth.CreateSuperuser(context.Background(), &model.SuperuserInput{Email: "root@x.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) user(t *testing.T, id int64) *model.User {
	t.Helper()
	u, err := e.store.Users().FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func TestProfileCreate_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "a@x.com", "+14155552671")
	owner := env.user(t, reg.Profile.UserID)

	in := &model.ProfileCreateInput{
		User:        model.ProfileUserInput{Email: "new@x.com", FirstName: "Ann", IsPropertyOwner: true},
		PhoneNumber: strPtr("+14155550101"),
	}
	_, err := env.profiles.Create(ctx, owner, in)
	assert.ErrorIs(t, err, ErrForbidden)

	profile, err := env.profiles.Create(ctx, env.admin(t), in)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", profile.User.Email)
	assert.True(t, profile.User.IsPropertyOwner)
	assert.False(t, env.user(t, profile.UserID).HasUsablePassword())

	_, err = env.auth.Login(ctx, &model.LoginInput{Email: "new@x.com", Password: "Anything1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfileCreate_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "+14155552671")

	_, err := env.profiles.Create(context.Background(), env.admin(t), &model.ProfileCreateInput{
		User: model.ProfileUserInput{Email: "a@x.com"},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Fields.Has("user.email", validator.CodeDuplicateEmail))
}

func TestProfileGetAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com", "+14155552671")
	env.register(t, "b@x.com", "+14155550101")

	got, err := env.profiles.Get(ctx, a.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.User.Email)

	_, err = env.profiles.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	all, err := env.profiles.List(ctx, model.ProfileFilters{Ordering: "bogus"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byPhone, err := env.profiles.List(ctx, model.ProfileFilters{PhoneNumber: strPtr("+1 (415) 555-2671")})
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, a.Profile.ID, byPhone[0].ID)

	byEmail, err := env.profiles.List(ctx, model.ProfileFilters{Email: strPtr("B@X.COM")})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "b@x.com", byEmail[0].User.Email)
}

func TestProfileUpdate_PatchAndPut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "a@x.com", "+14155552671")
	owner := env.user(t, reg.Profile.UserID)

	patched, err := env.profiles.Update(ctx, owner, reg.Profile.ID, &model.ProfileUpdateInput{
		User:           &model.ProfileUserUpdate{FirstName: strPtr("Ann")},
		AdditionalInfo: strPtr("notes"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "Ann", patched.User.FirstName)
	assert.Equal(t, "notes", patched.AdditionalInfo)
	require.NotNil(t, patched.PhoneNumber)
	assert.Equal(t, "+14155552671", *patched.PhoneNumber)
	assert.Equal(t, "Ann", env.user(t, owner.ID).FirstName)

	put, err := env.profiles.Update(ctx, owner, reg.Profile.ID, &model.ProfileUpdateInput{}, false)
	require.NoError(t, err)
	assert.Nil(t, put.PhoneNumber)
	assert.Equal(t, "", put.AdditionalInfo)
	assert.Equal(t, "Ann", put.User.FirstName)
}

func TestProfileUpdate_Permissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com", "+14155552671")
	b := env.register(t, "b@x.com", "+14155550101")
	userA := env.user(t, a.Profile.UserID)

	_, err := env.profiles.Update(ctx, userA, b.Profile.ID, &model.ProfileUpdateInput{AdditionalInfo: strPtr("x")}, true)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.profiles.Update(ctx, userA, a.Profile.ID, &model.ProfileUpdateInput{
		User: &model.ProfileUserUpdate{IsAdmin: boolPtr(true)},
	}, true)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := env.profiles.Update(ctx, env.admin(t), a.Profile.ID, &model.ProfileUpdateInput{
		User: &model.ProfileUserUpdate{IsAdmin: boolPtr(true)},
	}, true)
	require.NoError(t, err)
	assert.True(t, updated.User.IsAdmin)

	_, err = env.profiles.Update(ctx, userA, 999, &model.ProfileUpdateInput{}, true)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileUpdate_DuplicatePhone(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "a@x.com", "+14155552671")
	env.register(t, "b@x.com", "+14155550101")

	_, err := env.profiles.Update(context.Background(), env.user(t, a.Profile.UserID), a.Profile.ID,
		&model.ProfileUpdateInput{PhoneNumber: strPtr("+14155550101")}, true)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Fields.Has("phone_number", validator.CodeDuplicatePhone))
}

func TestProfileUpdate_ReplacesPhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := registration("a@x.com", "+14155552671")
	in.Profile.Photo = &model.Upload{Data: testPNG(t, 50, 50)}
	reg, err := env.auth.Register(ctx, in)
	require.NoError(t, err)
	oldKey := *reg.Profile.Photo

	updated, err := env.profiles.Update(ctx, env.user(t, reg.Profile.UserID), reg.Profile.ID,
		&model.ProfileUpdateInput{Photo: &model.Upload{Data: testPNG(t, 60, 60)}}, true)
	require.NoError(t, err)
	require.NotNil(t, updated.Photo)
	assert.NotEqual(t, oldKey, *updated.Photo)
	assert.NotContains(t, env.media.objects, oldKey)
	assert.Contains(t, env.media.objects, *updated.Photo)
}

func TestProfileDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := registration("a@x.com", "+14155552671")
	in.Profile.Photo = &model.Upload{Data: testPNG(t, 50, 50)}
	reg, err := env.auth.Register(ctx, in)
	require.NoError(t, err)
	owner := env.user(t, reg.Profile.UserID)

	require.NoError(t, env.profiles.Delete(ctx, owner, reg.Profile.ID))

	assert.Empty(t, env.store.db.profiles)
	assert.Empty(t, env.media.objects)
	assert.False(t, env.user(t, owner.ID).IsActive)
	_, err = env.auth.Authenticate(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.ErrorIs(t, env.profiles.Delete(ctx, owner, reg.Profile.ID), ErrProfileNotFound)
}

func TestProfileDelete_WithoutPhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "a@x.com", "+14155552671")
	other := env.register(t, "b@x.com", "+14155550101")

	assert.ErrorIs(t, env.profiles.Delete(ctx, env.user(t, other.Profile.UserID), reg.Profile.ID), ErrForbidden)

	require.NoError(t, env.profiles.Delete(ctx, env.admin(t), reg.Profile.ID))
	assert.Empty(t, env.media.deleted)
}

func TestProfileDelete_StorageFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := registration("a@x.com", "+14155552671")
	in.Profile.Photo = &model.Upload{Data: testPNG(t, 50, 50)}
	reg, err := env.auth.Register(ctx, in)
	require.NoError(t, err)

	env.media.deleteErr = errors.New("bucket unavailable")
	require.NoError(t, env.profiles.Delete(ctx, env.user(t, reg.Profile.UserID), reg.Profile.ID))
	assert.Len(t, env.media.deleted, 1)
}
