package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorial-backend/internal/domains/organization/model"
)

type Repository interface {
	List(ctx context.Context) ([]*model.Organization, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Organization, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) List(ctx context.Context) ([]*model.Organization, error) {
	query := `
    SELECT id, name, slug, logo_url, created_at
    FROM organizations
    ORDER BY name
  `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	return scanOrganizations(rows)
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Organization, error) {
	query := `
    SELECT o.id, o.name, o.slug, o.logo_url, o.created_at
    FROM organizations o
    JOIN organization_members om ON om.organization_id = o.id
    WHERE om.user_id = $1
    ORDER BY o.name
  `

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations for user: %w", err)
	}
	defer rows.Close()

	return scanOrganizations(rows)
}

func scanOrganizations(rows pgx.Rows) ([]*model.Organization, error) {
	var orgs []*model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.LogoURL, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read organizations: %w", err)
	}
	return orgs, nil
}
