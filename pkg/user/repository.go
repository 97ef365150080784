package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")

	// ErrCapabilityRequired is returned by the persistence gateway when the
	// caller does not hold the write capability a record needs
	ErrCapabilityRequired = errors.New("capability required")
)

// Repository is the persistence gateway for user provisioning.
//
// SaveChangeSet applies every record in order within one transaction and
// checks the caller's write capability for each record before touching it;
// either the whole change set is applied or none of it is.
type Repository interface {
	// CountByUsername counts users with the username across all tenants
	CountByUsername(ctx context.Context, username string) (int64, error)
	// CountByUsernameInDomain counts users with the username inside one tenant
	CountByUsernameInDomain(ctx context.Context, username string, domainID uuid.UUID) (int64, error)
	// CountByDomain counts all users inside one tenant
	CountByDomain(ctx context.Context, domainID uuid.UUID) (int64, error)
	// SaveChangeSet atomically applies the change set
	SaveChangeSet(ctx context.Context, cs ChangeSet) error
	// GetUser returns a persisted user row
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
}
