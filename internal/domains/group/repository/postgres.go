package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memorial-backend/internal/domains/group/model"
	"memorial-backend/pkg/cache"
	"memorial-backend/pkg/logger"
)

const cacheTTL = 5 * time.Minute

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	ListVisible(ctx context.Context, limit, offset int) ([]*model.Group, error)
	InsertMember(ctx context.Context, groupID, userID uuid.UUID, role string) error
	IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*model.Member, error)
	InvalidateCache(ctx context.Context, id uuid.UUID)
}

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) Repository {
	return &postgresRepository{pool: pool, cache: cache}
}

const groupColumns = `
  id, name, description, created_by, privacy, cover_image_url,
  created_at, updated_at
`

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	cacheKey := fmt.Sprintf("group:%s", id)

	var cached model.Group
	if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	query := `SELECT ` + groupColumns + ` FROM community_groups WHERE id = $1`

	g, err := scanGroup(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, g, cacheTTL); err != nil {
		logger.Warn("failed to cache group", err)
	}

	return g, nil
}

// ListVisible returns groups that show up in discovery. Secret groups
// are reachable only by direct link.
func (r *postgresRepository) ListVisible(ctx context.Context, limit, offset int) ([]*model.Group, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("groups:visible:%d:%d", limit, offset)

	var cached []*model.Group
	if hit, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	query := `
    SELECT ` + groupColumns + `
    FROM community_groups
    WHERE privacy IN ('public', 'private')
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups, err := scanGroups(rows)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, groups, cacheTTL); err != nil {
		logger.Warn("failed to cache group list", err)
	}

	return groups, nil
}

func (r *postgresRepository) InsertMember(ctx context.Context, groupID, userID uuid.UUID, role string) error {
	query := `
    INSERT INTO group_members (group_id, user_id, role)
    VALUES ($1, $2, $3)
  `

	_, err := r.pool.Exec(ctx, query, groupID, userID, role)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") {
			return model.ErrAlreadyMember
		}
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// IsAdmin is the group edit gate. Role casing in legacy rows is mixed,
// so the comparison is case-insensitive.
func (r *postgresRepository) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	query := `
    SELECT EXISTS (
      SELECT 1 FROM group_members
      WHERE group_id = $1 AND user_id = $2 AND lower(role) = 'admin'
    )
  `

	var isAdmin bool
	if err := r.pool.QueryRow(ctx, query, groupID, userID).Scan(&isAdmin); err != nil {
		return false, fmt.Errorf("failed to check group admin: %w", err)
	}
	return isAdmin, nil
}

func (r *postgresRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*model.Member, error) {
	query := `
    SELECT id, group_id, user_id, role, joined_at
    FROM group_members
    WHERE group_id = $1
    ORDER BY joined_at
  `

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read group members: %w", err)
	}

	return members, nil
}

func (r *postgresRepository) InvalidateCache(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, fmt.Sprintf("group:%s", id)); err != nil {
		logger.Warn("failed to invalidate group cache", err)
	}
	if err := r.cache.DeletePattern(ctx, "groups:*"); err != nil {
		logger.Warn("failed to invalidate group list cache", err)
	}
}

func scanGroup(row pgx.Row) (*model.Group, error) {
	var g model.Group
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.CreatedBy,
		&g.Privacy,
		&g.CoverImageURL,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGroups(rows pgx.Rows) ([]*model.Group, error) {
	var groups []*model.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}
	return groups, nil
}
