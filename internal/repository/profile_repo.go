package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"user_auth/internal/model"

	"github.com/jackc/pgx/v5"
)

const profileSelect = `SELECT p.id, p.user_id, p.photo, p.phone_number, p.additional_info, p.created_at, p.modified_at,
       u.id, u.email, u.password_hash, u.first_name, u.last_name, u.is_property_owner, u.is_admin, u.is_staff, u.is_active, u.last_login, u.date_joined
FROM profiles p JOIN users u ON u.id = p.user_id`

// ProfileRepository defines operations for profile data
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	FindByID(ctx context.Context, id int64) (*model.Profile, error)
	FindByUserID(ctx context.Context, userID int64) (*model.Profile, error)
	List(ctx context.Context, filters model.ProfileFilters) ([]model.Profile, error)
	// PhoneExists reports whether another profile than excludeID holds phone
	PhoneExists(ctx context.Context, phone string, excludeID int64) (bool, error)
	Update(ctx context.Context, profile *model.Profile) error
	Delete(ctx context.Context, id int64) error
}

type profileRepository struct {
	db DBTX
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	p := &model.Profile{}
	u := &p.User
	err := row.Scan(
		&p.ID, &p.UserID, &p.Photo, &p.PhoneNumber, &p.AdditionalInfo, &p.CreatedAt, &p.ModifiedAt,
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsPropertyOwner, &u.IsAdmin, &u.IsStaff, &u.IsActive, &u.LastLogin, &u.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a profile for profile.UserID
func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	sql := `INSERT INTO profiles (user_id, photo, phone_number, additional_info)
            VALUES ($1, $2, $3, $4) RETURNING id, created_at, modified_at`
	err := r.db.QueryRow(ctx, sql, p.UserID, p.Photo, p.PhoneNumber, p.AdditionalInfo).Scan(&p.ID, &p.CreatedAt, &p.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", translateError(err))
	}
	return nil
}

// FindByID returns nil when the profile does not exist
func (r *profileRepository) FindByID(ctx context.Context, id int64) (*model.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, profileSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile by ID: %w", err)
	}
	return p, nil
}

// FindByUserID returns nil when the user has no profile
func (r *profileRepository) FindByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, profileSelect+` WHERE p.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile by user: %w", err)
	}
	return p, nil
}

// List retrieves profiles with optional filters, search and ordering
func (r *profileRepository) List(ctx context.Context, filters model.ProfileFilters) ([]model.Profile, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(profileSelect)

	args := []interface{}{}
	argCount := 1
	var conditions []string

	if filters.Email != nil && *filters.Email != "" {
		conditions = append(conditions, fmt.Sprintf("lower(u.email) = lower($%d)", argCount))
		args = append(args, *filters.Email)
		argCount++
	}
	if filters.PhoneNumber != nil && *filters.PhoneNumber != "" {
		conditions = append(conditions, fmt.Sprintf("p.phone_number = $%d", argCount))
		args = append(args, *filters.PhoneNumber)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.email ILIKE $%d OR p.phone_number ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+escapeLike(*filters.Search)+"%")
		//argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	orderBy, ok := model.ProfileOrderings[filters.Ordering]
	if !ok {
		orderBy = "p.id ASC"
	}
	queryBuilder.WriteString(" ORDER BY " + orderBy)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) PhoneExists(ctx context.Context, phone string, excludeID int64) (bool, error) {
	var exists bool
	sql := `SELECT EXISTS(SELECT 1 FROM profiles WHERE phone_number = $1 AND id <> $2)`
	if err := r.db.QueryRow(ctx, sql, phone, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check phone number: %w", err)
	}
	return exists, nil
}

// Update writes profile fields back; modified_at is maintained by trigger
func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	sql := `UPDATE profiles SET photo = $1, phone_number = $2, additional_info = $3
            WHERE id = $4 RETURNING modified_at`
	err := r.db.QueryRow(ctx, sql, p.Photo, p.PhoneNumber, p.AdditionalInfo, p.ID).Scan(&p.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update profile: %w", translateError(err))
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
