package db

import (
	"context"
	"database/sql"
	"fmt"

	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ProfileRepository implements the profile repository interface
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	query := `
		SELECT id, full_name, avatar_url, phone, address, is_admin, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile shared.Profile
	var avatarURL, phone, address sql.NullString
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&avatarURL,
		&phone,
		&address,
		&profile.IsAdmin,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.AvatarURL = avatarURL.String
	profile.Phone = phone.String
	profile.Address = address.String

	return &profile, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *shared.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, avatar_url, phone, address, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		nullString(profile.AvatarURL),
		nullString(profile.Phone),
		nullString(profile.Address),
		profile.IsAdmin,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// Update updates a profile
func (r *ProfileRepository) Update(ctx context.Context, profile *shared.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $2, avatar_url = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		nullString(profile.AvatarURL),
		nullString(profile.Phone),
		nullString(profile.Address),
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrProfileNotFound
	}

	return nil
}
