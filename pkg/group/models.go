package group

import (
	"time"

	"github.com/google/uuid"
)

// Group represents a permission group in the system. A nil DomainID marks a
// global group visible to every tenant.
type Group struct {
	ID          uuid.UUID  `json:"group_uuid"`
	DomainID    *uuid.UUID `json:"domain_uuid,omitempty"`
	Name        string     `json:"group_name"`
	Level       int        `json:"group_level"`
	Description string     `json:"group_description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsGlobal returns true when the group is not bound to a tenant
func (g Group) IsGlobal() bool {
	return g.DomainID == nil
}
