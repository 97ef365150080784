package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/fluxpbx/adminapi/pkg/group"
)

// BuildParams carries the validated inputs the change-set builder needs.
// The request must already be normalized (defaults applied, status coerced).
type BuildParams struct {
	Request          CreateUserParams
	DomainID         uuid.UUID
	Group            group.Group
	GroupName        string
	PasswordHash     string
	CreatedBy        string
	WithContact      bool
	WithContactEmail bool
	Now              time.Time
}

// BuildChangeSet assembles the ordered records for one new user and returns
// the change set together with the generated user identifier. Record order
// is the dependency order: settings and group membership first, contact
// before contact_email, the user row last.
func BuildChangeSet(p BuildParams) (ChangeSet, uuid.UUID) {
	userID := uuid.New()
	var cs ChangeSet

	if p.Request.Language != "" {
		cs.Append(UserSettingRecord{
			ID:          uuid.New(),
			UserID:      userID,
			DomainID:    p.DomainID,
			Category:    "domain",
			Subcategory: "language",
			Name:        "code",
			Value:       p.Request.Language,
			Enabled:     true,
		})
	}

	if p.Request.TimeZone != "" {
		cs.Append(UserSettingRecord{
			ID:          uuid.New(),
			UserID:      userID,
			DomainID:    p.DomainID,
			Category:    "domain",
			Subcategory: "time_zone",
			Name:        "name",
			Value:       p.Request.TimeZone,
			Enabled:     true,
		})
	}

	cs.Append(UserGroupRecord{
		ID:        uuid.New(),
		DomainID:  p.DomainID,
		GroupID:   p.Group.ID,
		GroupName: p.GroupName,
		UserID:    userID,
	})

	var contactID *uuid.UUID
	if p.WithContact && p.Request.HasContactFields() {
		id := uuid.New()
		contactID = &id
		cs.Append(ContactRecord{
			ID:           id,
			DomainID:     p.DomainID,
			Type:         "user",
			Organization: p.Request.ContactOrganization,
			NameGiven:    p.Request.ContactNameGiven,
			NameFamily:   p.Request.ContactNameFamily,
			Nickname:     p.Request.Username,
		})

		if p.WithContactEmail {
			cs.Append(ContactEmailRecord{
				ID:        uuid.New(),
				DomainID:  p.DomainID,
				ContactID: id,
				Address:   p.Request.Email,
				Primary:   true,
			})
		}
	}

	cs.Append(UserRecord{
		ID:           userID,
		DomainID:     p.DomainID,
		Username:     p.Request.Username,
		PasswordHash: p.PasswordHash,
		Salt:         "",
		Email:        p.Request.Email,
		Status:       p.Request.Status,
		Type:         p.Request.Type,
		Enabled:      p.Request.Enabled,
		ContactID:    contactID,
		AddUser:      p.CreatedBy,
		AddDate:      p.Now,
	})

	return cs, userID
}
