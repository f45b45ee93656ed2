package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorial-backend/internal/domains/media/model"
)

// Repository persists media bookkeeping rows.
type Repository interface {
	Create(ctx context.Context, media *model.Media) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*model.Media, error)
	DeleteByEntity(ctx context.Context, entityID uuid.UUID) error
	DeleteByUploader(ctx context.Context, uploaderID uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, media *model.Media) error {
	metadata, err := json.Marshal(media.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode media metadata: %w", err)
	}

	query := `
    INSERT INTO media (uploader_id, storage_path, entity_id, entity_type, metadata)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, created_at
  `

	err = r.pool.QueryRow(ctx, query,
		media.UploaderID,
		media.StoragePath,
		media.EntityID,
		media.EntityType,
		metadata,
	).Scan(&media.ID, &media.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create media record: %w", err)
	}

	return nil
}

func (r *postgresRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*model.Media, error) {
	query := `
    SELECT id, uploader_id, storage_path, entity_id, entity_type, COALESCE(metadata, '{}'::jsonb), created_at
    FROM media
    WHERE entity_id = $1
    ORDER BY created_at
  `

	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media records: %w", err)
	}
	defer rows.Close()

	var records []*model.Media
	for rows.Next() {
		var m model.Media
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.UploaderID, &m.StoragePath, &m.EntityID, &m.EntityType, &metadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media record: %w", err)
		}
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode media metadata: %w", err)
		}
		records = append(records, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read media records: %w", err)
	}

	return records, nil
}

func (r *postgresRepository) DeleteByEntity(ctx context.Context, entityID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM media WHERE entity_id = $1`, entityID)
	if err != nil {
		return fmt.Errorf("failed to delete media records: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteByUploader(ctx context.Context, uploaderID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM media WHERE uploader_id = $1`, uploaderID)
	if err != nil {
		return fmt.Errorf("failed to delete media records: %w", err)
	}
	return nil
}
