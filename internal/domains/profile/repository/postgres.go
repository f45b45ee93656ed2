package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorial-backend/internal/domains/profile/model"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
    SELECT id, full_name, username, avatar_url, bio, visibility,
           cover_image_url, birth_date, location, phone_number, website,
           COALESCE(external_links, '[]'::jsonb),
           created_at, updated_at
    FROM profiles
    WHERE id = $1
  `

	var p model.Profile
	var links []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FullName,
		&p.Username,
		&p.AvatarURL,
		&p.Bio,
		&p.Visibility,
		&p.CoverImageURL,
		&p.BirthDate,
		&p.Location,
		&p.PhoneNumber,
		&p.Website,
		&links,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := json.Unmarshal(links, &p.ExternalLinks); err != nil {
		return nil, fmt.Errorf("failed to decode external links: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}
