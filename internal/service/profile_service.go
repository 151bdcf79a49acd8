package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"user_auth/internal/model"
	"user_auth/internal/repository"
	"user_auth/internal/storage"
	"user_auth/internal/validator"

	"go.uber.org/zap"
)

// ProfileService provides profile CRUD
type ProfileService interface {
	List(ctx context.Context, filters model.ProfileFilters) ([]model.Profile, error)
	Get(ctx context.Context, id int64) (*model.Profile, error)
	Create(ctx context.Context, actor *model.User, in *model.ProfileCreateInput) (*model.Profile, error)
	// Update applies in to profile id. With partial false, absent phone number
	// and additional info are cleared.
	Update(ctx context.Context, actor *model.User, id int64, in *model.ProfileUpdateInput, partial bool) (*model.Profile, error)
	// Delete removes profile id. Its user is deactivated and its token
	// revoked, so the account can no longer log in.
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type profileService struct {
	store     repository.Store
	validator *validator.Validator
	photos    *photos
	logger    *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(store repository.Store, v *validator.Validator, media storage.Storage, logger *zap.Logger) ProfileService {
	return &profileService{
		store:     store,
		validator: v,
		photos:    &photos{media: media, logger: logger, now: time.Now},
		logger:    logger,
	}
}

func (s *profileService) List(ctx context.Context, filters model.ProfileFilters) ([]model.Profile, error) {
	if filters.PhoneNumber != nil {
		phone := strings.TrimSpace(*filters.PhoneNumber)
		if normalized, ok := s.validator.NormalizePhone(phone); ok {
			phone = normalized
		}
		filters.PhoneNumber = &phone
	}
	if _, ok := model.ProfileOrderings[filters.Ordering]; !ok {
		filters.Ordering = ""
	}

	profiles, err := s.store.Profiles().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (s *profileService) Get(ctx context.Context, id int64) (*model.Profile, error) {
	profile, err := s.store.Profiles().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Create makes a user without a usable password and its profile
func (s *profileService) Create(ctx context.Context, actor *model.User, in *model.ProfileCreateInput) (*model.Profile, error) {
	if !actor.IsPrivileged() {
		return nil, ErrForbidden
	}

	errs, err := s.validator.ValidateProfileCreate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to validate profile: %w", err)
	}
	if errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	var profile *model.Profile
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		user := &model.User{
			Email:           in.User.Email,
			FirstName:       in.User.FirstName,
			LastName:        in.User.LastName,
			IsPropertyOwner: in.User.IsPropertyOwner,
			IsAdmin:         in.User.IsAdmin,
			IsActive:        true,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		profile = &model.Profile{
			UserID:         user.ID,
			User:           *user,
			PhoneNumber:    in.PhoneNumber,
			AdditionalInfo: in.AdditionalInfo,
		}
		return tx.Profiles().Create(ctx, profile)
	})
	if err != nil {
		return nil, asConflict(err, "user.email", "phone_number")
	}

	s.logger.Info("profile created", zap.Int64("profile_id", profile.ID), zap.Int64("by_user_id", actor.ID))
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, actor *model.User, id int64, in *model.ProfileUpdateInput, partial bool) (*model.Profile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(profile.UserID) {
		return nil, ErrForbidden
	}
	if in.User != nil && in.User.IsAdmin != nil && *in.User.IsAdmin != profile.User.IsAdmin && !actor.IsPrivileged() {
		return nil, ErrForbidden
	}

	errs, err := s.validator.ValidateProfileUpdate(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to validate profile: %w", err)
	}
	if errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	userChanged := applyUserUpdate(&profile.User, in.User)
	switch {
	case in.PhoneNumber != nil && *in.PhoneNumber == "":
		profile.PhoneNumber = nil
	case in.PhoneNumber != nil:
		profile.PhoneNumber = in.PhoneNumber
	case !partial:
		profile.PhoneNumber = nil
	}
	switch {
	case in.AdditionalInfo != nil:
		profile.AdditionalInfo = *in.AdditionalInfo
	case !partial:
		profile.AdditionalInfo = ""
	}

	oldPhoto := profile.Photo
	newPhoto, err := s.photos.save(ctx, in.Photo)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}
	if newPhoto != nil {
		profile.Photo = newPhoto
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if userChanged {
			if err := tx.Users().Update(ctx, &profile.User); err != nil {
				return err
			}
		}
		return tx.Profiles().Update(ctx, profile)
	})
	if err != nil {
		s.photos.remove(ctx, newPhoto)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, asConflict(err, "user.email", "phone_number")
	}

	if newPhoto != nil {
		s.photos.remove(ctx, oldPhoto)
	}
	return profile, nil
}

// Delete removes the profile, deactivates its user and revokes the user's token
func (s *profileService) Delete(ctx context.Context, actor *model.User, id int64) error {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(profile.UserID) {
		return ErrForbidden
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Profiles().Delete(ctx, profile.ID); err != nil {
			return err
		}
		if err := tx.Users().SetActive(ctx, profile.UserID, false); err != nil {
			return err
		}
		_, err := tx.Tokens().DeleteByUserID(ctx, profile.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	s.photos.remove(ctx, profile.Photo)
	s.logger.Info("profile deleted", zap.Int64("profile_id", id), zap.Int64("by_user_id", actor.ID))
	return nil
}

func applyUserUpdate(u *model.User, in *model.ProfileUserUpdate) bool {
	if in == nil {
		return false
	}
	changed := false
	if in.FirstName != nil {
		u.FirstName, changed = *in.FirstName, true
	}
	if in.LastName != nil {
		u.LastName, changed = *in.LastName, true
	}
	if in.IsPropertyOwner != nil {
		u.IsPropertyOwner, changed = *in.IsPropertyOwner, true
	}
	if in.IsAdmin != nil {
		u.IsAdmin, changed = *in.IsAdmin, true
	}
	return changed
}
