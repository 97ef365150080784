package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
)

// Repository defines the interface for group lookups
type Repository interface {
	// FindAssignable returns the group only when it belongs to the given
	// tenant or is global
	FindAssignable(ctx context.Context, groupID uuid.UUID, domainID uuid.UUID) (Group, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based group repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindAssignable returns the group restricted to the tenant or global scope
func (r *PostgresRepository) FindAssignable(ctx context.Context, groupID uuid.UUID, domainID uuid.UUID) (Group, error) {
	// group_description is nullable for operationally seeded groups
	const query = `
		SELECT group_uuid, domain_uuid, group_name, group_level,
			COALESCE(group_description, ''), created_at
		FROM groups
		WHERE group_uuid = $1 AND (domain_uuid = $2 OR domain_uuid IS NULL)`

	var g Group
	row := r.pool.QueryRow(ctx, query, groupID, domainID)
	err := row.Scan(&g.ID, &g.DomainID, &g.Name, &g.Level, &g.Description, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, ErrGroupNotFound
		}
		return Group{}, fmt.Errorf("failed to find group: %w", err)
	}
	return g, nil
}
