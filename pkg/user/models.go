package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateUserParams contains the fields accepted when creating a user.
// Username, password, email and a group reference are required; everything
// else is optional.
type CreateUserParams struct {
	Username            string `json:"username"`
	Password            string `json:"password"`
	Email               string `json:"user_email"`
	GroupUUID           string `json:"group_uuid"`
	GroupUUIDName       string `json:"group_uuid_name"`
	DomainUUID          string `json:"domain_uuid"`
	Language            string `json:"user_language"`
	TimeZone            string `json:"user_time_zone"`
	Type                string `json:"user_type"`
	Enabled             string `json:"user_enabled"`
	Status              string `json:"user_status"`
	ContactOrganization string `json:"contact_organization"`
	ContactNameGiven    string `json:"contact_name_given"`
	ContactNameFamily   string `json:"contact_name_family"`
}

// GroupRef returns whichever group reference field was supplied. The value
// may be a plain UUID or "UUID|display-name".
func (p CreateUserParams) GroupRef() string {
	if strings.TrimSpace(p.GroupUUID) != "" {
		return p.GroupUUID
	}
	return p.GroupUUIDName
}

// HasContactFields returns true when at least one contact field is set
func (p CreateUserParams) HasContactFields() bool {
	return p.ContactOrganization != "" || p.ContactNameGiven != "" || p.ContactNameFamily != ""
}

// EntityKind names the target entity of a change-set record
type EntityKind string

const (
	KindUser         EntityKind = "users"
	KindUserSetting  EntityKind = "user_settings"
	KindUserGroup    EntityKind = "user_groups"
	KindContact      EntityKind = "contacts"
	KindContactEmail EntityKind = "contact_emails"
)

// Record is one entity insert inside a ChangeSet. Kind names the target
// entity; Capability names the write permission the persistence gateway
// requires before applying the record.
type Record interface {
	Kind() EntityKind
	Capability() string
}

// UserSettingRecord is a per-user setting row (language, time zone)
type UserSettingRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	DomainID    uuid.UUID
	Category    string
	Subcategory string
	Name        string
	Value       string
	Enabled     bool
}

func (UserSettingRecord) Kind() EntityKind   { return KindUserSetting }
func (UserSettingRecord) Capability() string { return "user_setting_add" }

// UserGroupRecord links the new user to its permission group
type UserGroupRecord struct {
	ID        uuid.UUID
	DomainID  uuid.UUID
	GroupID   uuid.UUID
	GroupName string
	UserID    uuid.UUID
}

func (UserGroupRecord) Kind() EntityKind   { return KindUserGroup }
func (UserGroupRecord) Capability() string { return "user_group_add" }

// ContactRecord is the optional contact row for the new user
type ContactRecord struct {
	ID           uuid.UUID
	DomainID     uuid.UUID
	Type         string
	Organization string
	NameGiven    string
	NameFamily   string
	Nickname     string
}

func (ContactRecord) Kind() EntityKind   { return KindContact }
func (ContactRecord) Capability() string { return "contact_add" }

// ContactEmailRecord is the primary email row for the new contact
type ContactEmailRecord struct {
	ID        uuid.UUID
	DomainID  uuid.UUID
	ContactID uuid.UUID
	Address   string
	Primary   bool
}

func (ContactEmailRecord) Kind() EntityKind   { return KindContactEmail }
func (ContactEmailRecord) Capability() string { return "contact_email_add" }

// UserRecord is the user row itself
type UserRecord struct {
	ID           uuid.UUID
	DomainID     uuid.UUID
	Username     string
	PasswordHash string
	Salt         string // legacy column, always cleared for new users
	Email        string
	Status       string
	Type         string
	Enabled      string
	ContactID    *uuid.UUID
	AddUser      string
	AddDate      time.Time
}

func (UserRecord) Kind() EntityKind   { return KindUser }
func (UserRecord) Capability() string { return "user_edit" }

// ChangeSet is the ordered list of records created in one logical save.
// Insertion order is the dependency order: every generated identifier is
// appended before any record that references it, a contact precedes its
// contact_email, and the user row comes last.
type ChangeSet struct {
	Records []Record
}

// Append adds a record to the change set
func (c *ChangeSet) Append(r Record) {
	c.Records = append(c.Records, r)
}

// Capabilities returns the distinct write capabilities the change set
// needs, in record order
func (c ChangeSet) Capabilities() []string {
	seen := make(map[string]struct{})
	var caps []string
	for _, rec := range c.Records {
		name := rec.Capability()
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			caps = append(caps, name)
		}
	}
	return caps
}

// User is a persisted user row
type User struct {
	ID        uuid.UUID  `json:"user_uuid"`
	DomainID  uuid.UUID  `json:"domain_uuid"`
	Username  string     `json:"username"`
	Email     string     `json:"user_email"`
	Status    string     `json:"user_status,omitempty"`
	Type      string     `json:"user_type"`
	Enabled   string     `json:"user_enabled"`
	ContactID *uuid.UUID `json:"contact_uuid,omitempty"`
	AddUser   string     `json:"add_user,omitempty"`
	AddDate   time.Time  `json:"add_date"`
}

// CreatedUser is the caller-visible result of a successful creation
type CreatedUser struct {
	UserID   uuid.UUID `json:"user_uuid"`
	Username string    `json:"username"`
	Email    string    `json:"user_email"`
}
