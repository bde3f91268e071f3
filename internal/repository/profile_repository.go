package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository reads the user profiles maintained alongside the auth provider
type ProfileRepository interface {
	List(ctx context.Context) ([]domain.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new instance of ProfileRepository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// List retrieves every profile, newest first
func (r *profileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	query := `
		SELECT id, username, full_name, avatar_url, created_at
		FROM profiles
		ORDER BY created_at DESC NULLS LAST
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable("list profiles", err)
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		var profile domain.Profile
		err := rows.Scan(
			&profile.ID,
			&profile.Username,
			&profile.FullName,
			&profile.AvatarURL,
			&profile.CreatedAt,
		)
		if err != nil {
			return nil, unavailable("scan profile", err)
		}
		profiles = append(profiles, profile)
	}

	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate profiles", err)
	}

	return profiles, nil
}

// FindByID retrieves a profile by the auth provider's user id
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, username, full_name, avatar_url, created_at
		FROM profiles
		WHERE id = $1
	`

	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Username,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, unavailable("find profile by id", err)
	}

	return profile, nil
}
