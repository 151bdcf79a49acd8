package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_auth/internal/model"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, first_name, last_name, is_property_owner, is_admin, is_staff, is_active, last_login, date_joined`

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// LockByID takes a row lock on the user for the rest of the transaction
	LockByID(ctx context.Context, id int64) error
	Update(ctx context.Context, user *model.User) error
	SetActive(ctx context.Context, id int64, active bool) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsPropertyOwner, &u.IsAdmin, &u.IsStaff, &u.IsActive, &u.LastLogin, &u.DateJoined)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (email, password_hash, first_name, last_name, is_property_owner, is_admin, is_staff, is_active)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, date_joined`
	err := r.db.QueryRow(ctx, sql, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.IsPropertyOwner, user.IsAdmin, user.IsStaff, user.IsActive).Scan(&user.ID, &user.DateJoined)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	return nil
}

// FindByEmail retrieves a user by email, case-insensitively. Returns nil when absent.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by ID. Returns nil when absent.
func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	sql := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`
	if err := r.db.QueryRow(ctx, sql, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *userRepository) LockByID(ctx context.Context, id int64) error {
	var lockedID int64
	sql := `SELECT id FROM users WHERE id = $1 FOR UPDATE`
	if err := r.db.QueryRow(ctx, sql, id).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}

// Update writes names and flags back
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	sql := `UPDATE users
            SET first_name = $1, last_name = $2, is_property_owner = $3, is_admin = $4, is_staff = $5, is_active = $6
            WHERE id = $7`
	cmdTag, err := r.db.Exec(ctx, sql, user.FirstName, user.LastName, user.IsPropertyOwner,
		user.IsAdmin, user.IsStaff, user.IsActive, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
