package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fluxpbx/adminapi/pkg/permission"
)

// InMemoryRepository implements Repository using in-memory storage. It
// mirrors the PostgreSQL gateway's semantics, including per-record
// capability checks and all-or-nothing application, and supports failure
// injection for tests.
type InMemoryRepository struct {
	mu            sync.RWMutex
	checker       permission.Checker
	users         map[uuid.UUID]UserRecord
	userSettings  []UserSettingRecord
	userGroups    []UserGroupRecord
	contacts      []ContactRecord
	contactEmails []ContactEmailRecord

	failKind EntityKind
	failErr  error
}

// NewInMemoryRepository creates a new in-memory user repository
func NewInMemoryRepository(checker permission.Checker) *InMemoryRepository {
	return &InMemoryRepository{
		checker: checker,
		users:   make(map[uuid.UUID]UserRecord),
	}
}

// FailOn makes the next saves fail when a record of the given kind is
// reached, simulating a mid-save gateway failure
func (r *InMemoryRepository) FailOn(kind EntityKind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failKind = kind
	r.failErr = err
}

// CountByUsername counts users with the username across all tenants
func (r *InMemoryRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, u := range r.users {
		if u.Username == username {
			count++
		}
	}
	return count, nil
}

// CountByUsernameInDomain counts users with the username inside one tenant
func (r *InMemoryRepository) CountByUsernameInDomain(ctx context.Context, username string, domainID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, u := range r.users {
		if u.Username == username && u.DomainID == domainID {
			count++
		}
	}
	return count, nil
}

// CountByDomain counts all users inside one tenant
func (r *InMemoryRepository) CountByDomain(ctx context.Context, domainID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, u := range r.users {
		if u.DomainID == domainID {
			count++
		}
	}
	return count, nil
}

// SaveChangeSet applies the change set all-or-nothing: records are staged
// first and committed only when every record passed its capability check
func (r *InMemoryRepository) SaveChangeSet(ctx context.Context, cs ChangeSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		stagedUsers         []UserRecord
		stagedSettings      []UserSettingRecord
		stagedGroups        []UserGroupRecord
		stagedContacts      []ContactRecord
		stagedContactEmails []ContactEmailRecord
	)

	for _, rec := range cs.Records {
		if !r.checker.Exists(ctx, rec.Capability()) {
			return fmt.Errorf("%w: %s for %s", ErrCapabilityRequired, rec.Capability(), rec.Kind())
		}
		if r.failErr != nil && rec.Kind() == r.failKind {
			return r.failErr
		}

		switch v := rec.(type) {
		case UserRecord:
			stagedUsers = append(stagedUsers, v)
		case UserSettingRecord:
			stagedSettings = append(stagedSettings, v)
		case UserGroupRecord:
			stagedGroups = append(stagedGroups, v)
		case ContactRecord:
			stagedContacts = append(stagedContacts, v)
		case ContactEmailRecord:
			stagedContactEmails = append(stagedContactEmails, v)
		default:
			return fmt.Errorf("unknown record kind: %s", rec.Kind())
		}
	}

	for _, u := range stagedUsers {
		r.users[u.ID] = u
	}
	r.userSettings = append(r.userSettings, stagedSettings...)
	r.userGroups = append(r.userGroups, stagedGroups...)
	r.contacts = append(r.contacts, stagedContacts...)
	r.contactEmails = append(r.contactEmails, stagedContactEmails...)
	return nil
}

// GetUser returns a persisted user row
func (r *InMemoryRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return User{
		ID:        u.ID,
		DomainID:  u.DomainID,
		Username:  u.Username,
		Email:     u.Email,
		Status:    u.Status,
		Type:      u.Type,
		Enabled:   u.Enabled,
		ContactID: u.ContactID,
		AddUser:   u.AddUser,
		AddDate:   u.AddDate,
	}, nil
}

// UserSettings returns the stored user_settings rows (for tests)
func (r *InMemoryRepository) UserSettings() []UserSettingRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]UserSettingRecord(nil), r.userSettings...)
}

// UserGroups returns the stored user_groups rows (for tests)
func (r *InMemoryRepository) UserGroups() []UserGroupRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]UserGroupRecord(nil), r.userGroups...)
}

// Contacts returns the stored contacts rows (for tests)
func (r *InMemoryRepository) Contacts() []ContactRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ContactRecord(nil), r.contacts...)
}

// ContactEmails returns the stored contact_emails rows (for tests)
func (r *InMemoryRepository) ContactEmails() []ContactEmailRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ContactEmailRecord(nil), r.contactEmails...)
}

// SeedUser adds a user directly (for testing/initialization)
func (r *InMemoryRepository) SeedUser(u UserRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}
