package group

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fluxpbx/adminapi/pkg/errors"
)

// Service resolves group references for user provisioning
type Service struct {
	repo Repository
}

// NewService creates a new group service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ParseReference splits a group reference into its UUID and optional display
// name. Accepted forms are a plain UUID and "UUID|display-name".
func ParseReference(ref string) (uuid.UUID, string, error) {
	idPart := ref
	var name string
	if idx := strings.Index(ref, "|"); idx >= 0 {
		idPart = ref[:idx]
		name = ref[idx+1:]
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, name, nil
}

// ResolveAssignable resolves a group reference for assignment to a new user.
// The group must be visible to the tenant (or global) and its level must not
// exceed the caller's own level. The returned name is the explicit display
// name from a "UUID|name" reference, or the stored group name.
func (s *Service) ResolveAssignable(ctx context.Context, ref string, domainID uuid.UUID, callerLevel int) (Group, string, error) {
	groupID, displayName, err := ParseReference(ref)
	if err != nil {
		// an unparseable reference can never match a group
		return Group{}, "", errors.New(errors.ErrCodeGroupNotFound, "Group not found")
	}

	g, err := s.repo.FindAssignable(ctx, groupID, domainID)
	if err != nil {
		if stderrors.Is(err, ErrGroupNotFound) {
			return Group{}, "", errors.New(errors.ErrCodeGroupNotFound, "Group not found")
		}
		return Group{}, "", errors.Wrap(err, errors.ErrCodeInternal, "Failed to look up group")
	}

	if g.Level > callerLevel {
		return Group{}, "", errors.New(errors.ErrCodeInsufficientPermissions,
			"Insufficient permissions to assign user to this group")
	}

	if displayName == "" {
		displayName = g.Name
	}
	return g, displayName, nil
}
