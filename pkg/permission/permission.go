// Package permission implements capability checks for the admin API.
//
// A capability is a named permission flag (for example "user_add" or
// "contact_email_add"). The Checker resolves a capability against, in order:
// request-scoped grants carried on the context, the authenticated caller's
// session capabilities, and the shared capability Store. Write grants needed
// by a persistence call are attached to the call's context and die with it,
// so elevated capability can never leak into another request.
package permission

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fluxpbx/adminapi/pkg/auth"
)

// Store holds capability grants per subject, grouped by scope so a whole
// scope can be revoked at once (for example when a session ends).
type Store interface {
	Add(subject uuid.UUID, scope string, capabilities ...string)
	Delete(subject uuid.UUID, scope string, capabilities ...string)
	DeleteScope(subject uuid.UUID, scope string)
	Exists(subject uuid.UUID, capability string) bool
}

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[uuid.UUID]map[string]map[string]struct{} // subject -> scope -> capabilities
}

// NewInMemoryStore creates a new in-memory capability store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		grants: make(map[uuid.UUID]map[string]map[string]struct{}),
	}
}

// Add grants capabilities to a subject under the given scope
func (s *InMemoryStore) Add(subject uuid.UUID, scope string, capabilities ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scopes, ok := s.grants[subject]
	if !ok {
		scopes = make(map[string]map[string]struct{})
		s.grants[subject] = scopes
	}
	caps, ok := scopes[scope]
	if !ok {
		caps = make(map[string]struct{})
		scopes[scope] = caps
	}
	for _, c := range capabilities {
		caps[c] = struct{}{}
	}
}

// Delete revokes capabilities from a subject under the given scope
func (s *InMemoryStore) Delete(subject uuid.UUID, scope string, capabilities ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scopes, ok := s.grants[subject]
	if !ok {
		return
	}
	caps, ok := scopes[scope]
	if !ok {
		return
	}
	for _, c := range capabilities {
		delete(caps, c)
	}
	if len(caps) == 0 {
		delete(scopes, scope)
	}
}

// DeleteScope revokes every capability a subject holds under the given scope
func (s *InMemoryStore) DeleteScope(subject uuid.UUID, scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scopes, ok := s.grants[subject]; ok {
		delete(scopes, scope)
	}
}

// Exists reports whether the subject holds the capability under any scope
func (s *InMemoryStore) Exists(subject uuid.UUID, capability string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, caps := range s.grants[subject] {
		if _, ok := caps[capability]; ok {
			return true
		}
	}
	return false
}

// List returns every capability the subject holds, across all scopes
func (s *InMemoryStore) List(subject uuid.UUID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, caps := range s.grants[subject] {
		for c := range caps {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				result = append(result, c)
			}
		}
	}
	return result
}

type grantsKey struct{}

// WithGrants returns a context carrying additional capability grants. The
// grants are visible only to callers holding this context; they are gone as
// soon as the context is.
func WithGrants(ctx context.Context, capabilities ...string) context.Context {
	if len(capabilities) == 0 {
		return ctx
	}
	// copy the parent's grants so sibling contexts derived from the same
	// parent never share a backing array
	parent := grantsFromContext(ctx)
	merged := make([]string, 0, len(parent)+len(capabilities))
	merged = append(merged, parent...)
	merged = append(merged, capabilities...)
	return context.WithValue(ctx, grantsKey{}, merged)
}

func grantsFromContext(ctx context.Context) []string {
	grants, _ := ctx.Value(grantsKey{}).([]string)
	return grants
}

// Checker resolves capability checks for the current request
type Checker interface {
	Exists(ctx context.Context, capability string) bool
}

// StoreChecker implements Checker against context grants, the caller's
// session capabilities, and a shared Store
type StoreChecker struct {
	store Store
}

// NewChecker creates a checker backed by the given store
func NewChecker(store Store) *StoreChecker {
	return &StoreChecker{store: store}
}

// Exists reports whether the capability is held in the current request context
func (c *StoreChecker) Exists(ctx context.Context, capability string) bool {
	for _, granted := range grantsFromContext(ctx) {
		if granted == capability {
			return true
		}
	}

	authUser, ok := auth.FromContext(ctx)
	if !ok {
		return false
	}
	for _, held := range authUser.Capabilities {
		if held == capability {
			return true
		}
	}
	if c.store != nil {
		return c.store.Exists(authUser.UserID, capability)
	}
	return false
}
