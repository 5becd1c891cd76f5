package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

const profileColumns = `uid, name, program, clubs, interests, accommodations, photo_url, onboarded, created_at, updated_at`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT ` + profileColumns + ` FROM users WHERE uid = $1`
	err := r.db.GetContext(ctx, &profile, query, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Merge upserts the row; NULL parameters keep the stored value.
func (r *profileRepository) Merge(ctx context.Context, uid string, patch *domain.ProfilePatch) (*domain.Profile, error) {
	query := `
		INSERT INTO users (
			uid, name, program, clubs, interests, accommodations, photo_url, onboarded,
			created_at, updated_at
		)
		VALUES (
			$1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''),
			COALESCE($6, ''), COALESCE($7, ''), COALESCE($8, FALSE),
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		)
		ON CONFLICT (uid) DO UPDATE
		SET name = COALESCE($2, users.name),
		    program = COALESCE($3, users.program),
		    clubs = COALESCE($4, users.clubs),
		    interests = COALESCE($5, users.interests),
		    accommodations = COALESCE($6, users.accommodations),
		    photo_url = COALESCE($7, users.photo_url),
		    onboarded = COALESCE($8, users.onboarded),
		    updated_at = CURRENT_TIMESTAMP
		RETURNING ` + profileColumns

	var profile domain.Profile
	err := r.db.QueryRowxContext(
		ctx, query,
		uid, patch.Name, patch.Program, patch.Clubs, patch.Interests,
		patch.Accommodations, patch.PhotoURL, patch.Onboarded,
	).StructScan(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ListCandidates(ctx context.Context, excludeUID string, limit int) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	query := `
		SELECT ` + profileColumns + `
		FROM users
		WHERE onboarded = TRUE AND uid <> $1
		ORDER BY updated_at DESC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &profiles, query, excludeUID, limit)
	return profiles, err
}
