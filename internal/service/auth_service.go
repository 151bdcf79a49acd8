package service

import (
	"context"
	"fmt"
	"time"

	"user_auth/internal/model"
	"user_auth/internal/repository"
	"user_auth/internal/storage"
	"user_auth/internal/utils"
	"user_auth/internal/validator"

	"go.uber.org/zap"
)

// AuthService provides registration, login and token services
type AuthService interface {
	Register(ctx context.Context, in *model.RegistrationInput) (*model.AuthResult, error)
	Login(ctx context.Context, in *model.LoginInput) (*model.AuthResult, error)
	Logout(ctx context.Context, userID int64) error
	// ObtainToken returns the user's live token, issuing one if none exists
	// or the stored one has outlived the bearer expiry
	ObtainToken(ctx context.Context, email, password string) (string, error)
	// Authenticate resolves a bearer string to an active user
	Authenticate(ctx context.Context, bearer string) (*model.User, error)
	SuperuserService
}

// SuperuserService bootstraps admin accounts
type SuperuserService interface {
	CreateSuperuser(ctx context.Context, in *model.SuperuserInput) (*model.User, error)
}

type authService struct {
	store     repository.Store
	validator *validator.Validator
	signer    *utils.TokenSigner
	photos    *photos
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(store repository.Store, v *validator.Validator, media storage.Storage,
	signer *utils.TokenSigner, logger *zap.Logger) AuthService {
	return &authService{
		store:     store,
		validator: v,
		signer:    signer,
		photos:    &photos{media: media, logger: logger, now: time.Now},
		logger:    logger,
		now:       time.Now,
	}
}

// NewSuperuserService creates a SuperuserService that needs neither media
// storage nor a token signer
func NewSuperuserService(store repository.Store, v *validator.Validator, logger *zap.Logger) SuperuserService {
	return &authService{store: store, validator: v, logger: logger, now: time.Now}
}

// Register creates the user, its profile and its first token in one transaction
func (s *authService) Register(ctx context.Context, in *model.RegistrationInput) (*model.AuthResult, error) {
	errs, err := s.validator.ValidateRegistration(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to validate registration: %w", err)
	}
	if errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	photoKey, err := s.photos.save(ctx, in.Profile.Photo)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	result := &model.AuthResult{}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		user := &model.User{
			Email:        in.Email,
			PasswordHash: hashedPassword,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			IsActive:     true,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		phone := in.Profile.PhoneNumber
		profile := &model.Profile{
			UserID:         user.ID,
			User:           *user,
			Photo:          photoKey,
			PhoneNumber:    &phone,
			AdditionalInfo: in.Profile.AdditionalInfo,
		}
		if err := tx.Profiles().Create(ctx, profile); err != nil {
			return err
		}

		bearer, err := s.issueToken(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		result.Token = bearer
		result.Profile = profile
		return nil
	})
	if err != nil {
		s.photos.remove(ctx, photoKey)
		return nil, asConflict(err, "email", "profile.phone_number")
	}

	s.logger.Info("user registered", zap.Int64("user_id", result.Profile.UserID))
	return result, nil
}

// Login authenticates by email and password and rotates the user's token
func (s *authService) Login(ctx context.Context, in *model.LoginInput) (*model.AuthResult, error) {
	if errs := s.validator.ValidateLogin(in); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	user, err := s.checkCredentials(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	var bearer string
	now := s.now()
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		// Serializes concurrent logins so exactly one token survives
		if err := tx.Users().LockByID(ctx, user.ID); err != nil {
			return err
		}
		if _, err := tx.Tokens().DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		issued, err := s.issueToken(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		bearer = issued
		return tx.Users().TouchLastLogin(ctx, user.ID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rotate token: %w", err)
	}
	user.LastLogin = &now

	profile, err := s.store.Profiles().FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &model.Profile{UserID: user.ID, User: *user}
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return &model.AuthResult{Token: bearer, Profile: profile}, nil
}

func (s *authService) Logout(ctx context.Context, userID int64) error {
	deleted, err := s.store.Tokens().DeleteByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotAuthenticated
	}
	s.logger.Info("user logged out", zap.Int64("user_id", userID))
	return nil
}

func (s *authService) ObtainToken(ctx context.Context, email, password string) (string, error) {
	user, err := s.checkCredentials(ctx, validator.NormalizeEmail(email), password)
	if err != nil {
		return "", err
	}

	var bearer string
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().LockByID(ctx, user.ID); err != nil {
			return err
		}
		token, err := tx.Tokens().FindByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		if token != nil && !s.signer.Expired(token.Created, s.now()) {
			bearer, err = s.signer.Sign(user.ID, token.Key, token.Created)
			return err
		}
		if token != nil {
			if _, err := tx.Tokens().DeleteByUserID(ctx, user.ID); err != nil {
				return err
			}
		}
		bearer, err = s.issueToken(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to obtain token: %w", err)
	}
	return bearer, nil
}

func (s *authService) Authenticate(ctx context.Context, bearer string) (*model.User, error) {
	claims, err := s.signer.Parse(bearer)
	if err != nil {
		return nil, ErrInvalidToken
	}

	token, err := s.store.Tokens().FindByKey(ctx, claims.Key())
	if err != nil {
		return nil, err
	}
	if token == nil || token.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.store.Users().FindByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// CreateSuperuser creates an active staff admin together with its profile
func (s *authService) CreateSuperuser(ctx context.Context, in *model.SuperuserInput) (*model.User, error) {
	errs, err := s.validator.ValidateSuperuser(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to validate superuser: %w", err)
	}
	if errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hashedPassword,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsAdmin:      true,
		IsStaff:      true,
		IsActive:     true,
	}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Profiles().Create(ctx, &model.Profile{UserID: user.ID, User: *user, PhoneNumber: in.PhoneNumber})
	})
	if err != nil {
		return nil, asConflict(err, "email", "phone_number")
	}

	s.logger.Info("superuser created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// checkCredentials returns ErrInvalidCredentials for unknown, inactive or
// password-less accounts as well as wrong passwords
func (s *authService) checkCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		utils.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// issueToken stores a fresh key for userID and signs it
func (s *authService) issueToken(ctx context.Context, tx repository.Store, userID int64) (string, error) {
	key, err := utils.GenerateKey()
	if err != nil {
		return "", err
	}
	token := &model.Token{Key: key, UserID: userID}
	if err := tx.Tokens().Create(ctx, token); err != nil {
		return "", err
	}
	if token.Created.IsZero() {
		token.Created = s.now()
	}
	return s.signer.Sign(userID, key, token.Created)
}
