package group

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]Group
}

// NewInMemoryRepository creates a new in-memory group repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		groups: make(map[uuid.UUID]Group),
	}
}

// FindAssignable returns the group restricted to the tenant or global scope
func (r *InMemoryRepository) FindAssignable(ctx context.Context, groupID uuid.UUID, domainID uuid.UUID) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[groupID]
	if !ok {
		return Group{}, ErrGroupNotFound
	}
	if g.DomainID != nil && *g.DomainID != domainID {
		return Group{}, ErrGroupNotFound
	}
	return g, nil
}

// SeedGroup adds a group directly (for testing/initialization)
func (r *InMemoryRepository) SeedGroup(g Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.ID] = g
}
