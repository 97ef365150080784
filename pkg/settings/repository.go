package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the interface for reading configuration settings
type Repository interface {
	// FindValue returns the enabled value for a category/subcategory pair.
	// The second return value is false when no setting exists.
	FindValue(ctx context.Context, category, subcategory string) (string, bool, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based settings repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindValue returns the enabled value for a category/subcategory pair
func (r *PostgresRepository) FindValue(ctx context.Context, category, subcategory string) (string, bool, error) {
	const query = `
		SELECT setting_value
		FROM default_settings
		WHERE setting_category = $1 AND setting_subcategory = $2 AND setting_enabled = true
		LIMIT 1`

	var value string
	err := r.pool.QueryRow(ctx, query, category, subcategory).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read setting %s/%s: %w", category, subcategory, err)
	}
	return value, true, nil
}

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryRepository creates a new in-memory settings repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{values: make(map[string]string)}
}

// FindValue returns the value for a category/subcategory pair
func (r *InMemoryRepository) FindValue(ctx context.Context, category, subcategory string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[category+"/"+subcategory]
	return v, ok, nil
}

// Set stores a value (for testing/initialization)
func (r *InMemoryRepository) Set(category, subcategory, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[category+"/"+subcategory] = value
}

// Unset removes a value (for testing/initialization)
func (r *InMemoryRepository) Unset(category, subcategory string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, category+"/"+subcategory)
}
