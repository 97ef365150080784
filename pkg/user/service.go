// Package user implements user provisioning for the admin API: request
// validation, change-set assembly and orchestration of the persistence
// gateway.
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluxpbx/adminapi/pkg/auth"
	"github.com/fluxpbx/adminapi/pkg/errors"
	"github.com/fluxpbx/adminapi/pkg/group"
	"github.com/fluxpbx/adminapi/pkg/notice"
	"github.com/fluxpbx/adminapi/pkg/permission"
	"github.com/fluxpbx/adminapi/pkg/settings"
)

// Service provides user provisioning operations
type Service struct {
	repo     Repository
	groups   *group.Service
	settings *settings.Service
	checker  permission.Checker
	hasher   PasswordHasher
	notifier notice.Notifier
	now      func() time.Time
}

// Option configures optional service collaborators
type Option func(*Service)

// WithHasher overrides the password hasher
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithNotifier enables the best-effort welcome notice
func WithNotifier(n notice.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService creates a new user service
func NewService(repo Repository, groups *group.Service, settingsService *settings.Service, checker permission.Checker, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		groups:   groups,
		settings: settingsService,
		checker:  checker,
		hasher:   &BcryptHasher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser validates the request, assembles the change set and applies it
// through the persistence gateway. All validation happens before any write;
// the first failing check terminates the request, except the password check
// which reports every unmet requirement at once.
func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (CreatedUser, error) {
	authUser, ok := auth.FromContext(ctx)
	if !ok {
		return CreatedUser{}, errors.Unauthorized("Unauthorized - Authentication required")
	}

	// defaults
	if params.Type == "" {
		params.Type = "user"
	}
	if params.Enabled == "" {
		params.Enabled = "true"
	}
	if missing := MissingFields(params); len(missing) > 0 {
		return CreatedUser{}, errors.MissingFields(missing)
	}

	domainID := authUser.DomainID
	if params.DomainUUID != "" {
		id, err := uuid.Parse(params.DomainUUID)
		if err != nil {
			return CreatedUser{}, errors.New(errors.ErrCodeInvalidDomain, "Invalid domain_uuid")
		}
		domainID = id
	}

	if !ValidEmail(params.Email) {
		return CreatedUser{}, errors.New(errors.ErrCodeInvalidEmail, "Invalid email address format")
	}

	format := s.settings.Get(ctx, "users", "username_format", "any")
	if err := CheckUsernameFormat(params.Username, format); err != nil {
		return CreatedUser{}, err
	}

	// uniqueness scope is global or per-tenant depending on configuration
	var (
		count int64
		err   error
	)
	if s.settings.Get(ctx, "users", "unique", "") == "global" {
		count, err = s.repo.CountByUsername(ctx, params.Username)
	} else {
		count, err = s.repo.CountByUsernameInDomain(ctx, params.Username, domainID)
	}
	if err != nil {
		return CreatedUser{}, errors.Wrap(err, errors.ErrCodeInternal, "Failed to check username")
	}
	if count > 0 {
		return CreatedUser{}, errors.New(errors.ErrCodeUserAlreadyExists, "Username already exists")
	}

	if limit := s.settings.GetInt(ctx, "limit", "users", 0); limit > 0 {
		userCount, err := s.repo.CountByDomain(ctx, domainID)
		if err != nil {
			return CreatedUser{}, errors.Wrap(err, errors.ErrCodeInternal, "Failed to check user limit")
		}
		if userCount >= int64(limit) {
			return CreatedUser{}, errors.Newf(errors.ErrCodeUserLimitReached,
				"Maximum user limit reached: %d", limit)
		}
	}

	requirements := PasswordRequirements{
		Length:    s.settings.GetInt(ctx, "users", "password_length", 12),
		Number:    s.settings.GetBool(ctx, "users", "password_number", false),
		Lowercase: s.settings.GetBool(ctx, "users", "password_lowercase", false),
		Uppercase: s.settings.GetBool(ctx, "users", "password_uppercase", false),
		Special:   s.settings.GetBool(ctx, "users", "password_special", false),
	}
	if requirementErrors := CheckPassword(params.Password, requirements); len(requirementErrors) > 0 {
		return CreatedUser{}, errors.PasswordComplexity(requirementErrors)
	}

	params.Status = NormalizeStatus(params.Status)

	resolvedGroup, groupName, err := s.groups.ResolveAssignable(ctx, params.GroupRef(), domainID, authUser.GroupLevel)
	if err != nil {
		return CreatedUser{}, err
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return CreatedUser{}, errors.Wrap(err, errors.ErrCodeInternal, "Failed to hash password")
	}

	withContact := params.HasContactFields() && s.checker.Exists(ctx, "contact_add")
	withContactEmail := withContact && s.checker.Exists(ctx, "contact_email_add")

	createdBy := authUser.Username
	if createdBy == "" {
		createdBy = "api"
	}

	cs, userID := BuildChangeSet(BuildParams{
		Request:          params,
		DomainID:         domainID,
		Group:            resolvedGroup,
		GroupName:        groupName,
		PasswordHash:     passwordHash,
		CreatedBy:        createdBy,
		WithContact:      withContact,
		WithContactEmail: withContactEmail,
		Now:              s.now(),
	})

	// the gateway checks a write capability per record; grant exactly the
	// capabilities this change set needs, scoped to this call's context
	saveCtx := permission.WithGrants(ctx, cs.Capabilities()...)
	if err := s.repo.SaveChangeSet(saveCtx, cs); err != nil {
		slog.Error("Failed to save user change set", "err", err, "username", params.Username)
		return CreatedUser{}, errors.Wrap(err, errors.ErrCodePersistenceFailed, "Failed to create user")
	}

	// user-scoped settings may change how settings resolve from now on
	s.settings.ClearCache(ctx)

	if s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, params.Email, params.Username); err != nil {
			slog.Warn("Failed to send welcome notice", "err", err, "username", params.Username)
		}
	}

	slog.Info("User created", "userId", userID, "username", params.Username, "domain", domainID)
	return CreatedUser{
		UserID:   userID,
		Username: params.Username,
		Email:    params.Email,
	}, nil
}

// GetUser returns a persisted user row
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
