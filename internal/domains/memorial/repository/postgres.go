package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorial-backend/internal/domains/memorial/model"
	"memorial-backend/pkg/cache"
	"memorial-backend/pkg/logger"
)

const cacheTTL = 5 * time.Minute

// Repository covers the read and delete paths. Writes go through the
// save workflow's record store, which is why there is no Create here.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Memorial, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Memorial, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*model.Memorial, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InvalidateCache(ctx context.Context, id uuid.UUID)
}

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) Repository {
	return &postgresRepository{pool: pool, cache: cache}
}

const memorialColumns = `
  id, owner_id, title, bio, birth_date, death_date,
  visibility, tier, org_id, profile_image_url, cover_image_url,
  created_at, updated_at
`

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Memorial, error) {
	cacheKey := fmt.Sprintf("memorial:%s", id)

	var cached model.Memorial
	if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	query := `SELECT ` + memorialColumns + ` FROM memorials WHERE id = $1`

	m, err := scanMemorial(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrMemorialNotFound
		}
		return nil, fmt.Errorf("failed to get memorial: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, m, cacheTTL); err != nil {
		logger.Warn("failed to cache memorial", err)
	}

	return m, nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Memorial, error) {
	cacheKey := fmt.Sprintf("memorials:owner:%s", ownerID)

	var cached []*model.Memorial
	if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	query := `
    SELECT ` + memorialColumns + `
    FROM memorials
    WHERE owner_id = $1
    ORDER BY created_at DESC
  `

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memorials: %w", err)
	}
	defer rows.Close()

	memorials, err := scanMemorials(rows)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, memorials, cacheTTL); err != nil {
		logger.Warn("failed to cache memorial list", err)
	}

	return memorials, nil
}

func (r *postgresRepository) ListPublic(ctx context.Context, limit, offset int) ([]*model.Memorial, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
    SELECT ` + memorialColumns + `
    FROM memorials
    WHERE visibility = 'public'
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list public memorials: %w", err)
	}
	defer rows.Close()

	return scanMemorials(rows)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM memorials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete memorial: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMemorialNotFound
	}

	r.InvalidateCache(ctx, id)
	return nil
}

// InvalidateCache drops the cached entry and every cached list. Lists
// are invalidated wholesale; they are cheap to rebuild.
func (r *postgresRepository) InvalidateCache(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, fmt.Sprintf("memorial:%s", id)); err != nil {
		logger.Warn("failed to invalidate memorial cache", err)
	}
	if err := r.cache.DeletePattern(ctx, "memorials:*"); err != nil {
		logger.Warn("failed to invalidate memorial list cache", err)
	}
}

func scanMemorial(row pgx.Row) (*model.Memorial, error) {
	var m model.Memorial
	err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&m.Title,
		&m.Bio,
		&m.BirthDate,
		&m.DeathDate,
		&m.Visibility,
		&m.Tier,
		&m.OrgID,
		&m.ProfileImageURL,
		&m.CoverImageURL,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMemorials(rows pgx.Rows) ([]*model.Memorial, error) {
	var memorials []*model.Memorial
	for rows.Next() {
		m, err := scanMemorial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memorial: %w", err)
		}
		memorials = append(memorials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memorials: %w", err)
	}
	return memorials, nil
}
