package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxpbx/adminapi/pkg/group"
)

func buildTestParams() BuildParams {
	return BuildParams{
		Request: CreateUserParams{
			Username: "jdoe",
			Password: "Str0ng-Passw0rd!",
			Email:    "jdoe@example.com",
			Type:     "user",
			Enabled:  "true",
		},
		DomainID:     uuid.New(),
		Group:        group.Group{ID: uuid.New(), Name: "user", Level: 30},
		GroupName:    "user",
		PasswordHash: "$2a$10$hash",
		CreatedBy:    "admin",
		Now:          time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildChangeSetMinimal(t *testing.T) {
	p := buildTestParams()

	cs, userID := BuildChangeSet(p)

	require.Len(t, cs.Records, 2)

	ug, ok := cs.Records[0].(UserGroupRecord)
	require.True(t, ok)
	assert.Equal(t, userID, ug.UserID)
	assert.Equal(t, p.Group.ID, ug.GroupID)
	assert.Equal(t, "user", ug.GroupName)

	u, ok := cs.Records[1].(UserRecord)
	require.True(t, ok)
	assert.Equal(t, userID, u.ID)
	assert.Equal(t, "jdoe", u.Username)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
	assert.Equal(t, "", u.Salt)
	assert.Equal(t, "admin", u.AddUser)
	assert.Equal(t, p.Now, u.AddDate)
	assert.Nil(t, u.ContactID)
}

func TestBuildChangeSetUserRowIsLast(t *testing.T) {
	p := buildTestParams()
	p.Request.Language = "en-us"
	p.Request.TimeZone = "America/New_York"
	p.Request.ContactNameGiven = "Jane"
	p.WithContact = true
	p.WithContactEmail = true

	cs, userID := BuildChangeSet(p)

	require.Len(t, cs.Records, 6)
	_, ok := cs.Records[len(cs.Records)-1].(UserRecord)
	assert.True(t, ok)

	// every record must reference the same generated user where applicable
	for _, rec := range cs.Records {
		switch v := rec.(type) {
		case UserSettingRecord:
			assert.Equal(t, userID, v.UserID)
		case UserGroupRecord:
			assert.Equal(t, userID, v.UserID)
		}
	}
}

func TestBuildChangeSetSettings(t *testing.T) {
	p := buildTestParams()
	p.Request.Language = "fr-fr"
	p.Request.TimeZone = "Europe/Paris"

	cs, _ := BuildChangeSet(p)

	require.Len(t, cs.Records, 4)

	lang, ok := cs.Records[0].(UserSettingRecord)
	require.True(t, ok)
	assert.Equal(t, "domain", lang.Category)
	assert.Equal(t, "language", lang.Subcategory)
	assert.Equal(t, "code", lang.Name)
	assert.Equal(t, "fr-fr", lang.Value)
	assert.True(t, lang.Enabled)

	tz, ok := cs.Records[1].(UserSettingRecord)
	require.True(t, ok)
	assert.Equal(t, "time_zone", tz.Subcategory)
	assert.Equal(t, "name", tz.Name)
	assert.Equal(t, "Europe/Paris", tz.Value)
}

func TestBuildChangeSetContactPrecedesContactEmail(t *testing.T) {
	p := buildTestParams()
	p.Request.ContactOrganization = "Acme"
	p.Request.ContactNameGiven = "Jane"
	p.Request.ContactNameFamily = "Doe"
	p.WithContact = true
	p.WithContactEmail = true

	cs, userID := BuildChangeSet(p)

	require.Len(t, cs.Records, 4)

	contact, ok := cs.Records[1].(ContactRecord)
	require.True(t, ok)
	assert.Equal(t, "user", contact.Type)
	assert.Equal(t, "Acme", contact.Organization)
	assert.Equal(t, "jdoe", contact.Nickname)

	email, ok := cs.Records[2].(ContactEmailRecord)
	require.True(t, ok)
	assert.Equal(t, contact.ID, email.ContactID)
	assert.Equal(t, "jdoe@example.com", email.Address)
	assert.True(t, email.Primary)

	u, ok := cs.Records[3].(UserRecord)
	require.True(t, ok)
	assert.Equal(t, userID, u.ID)
	require.NotNil(t, u.ContactID)
	assert.Equal(t, contact.ID, *u.ContactID)
}

func TestBuildChangeSetContactWithoutEmailCapability(t *testing.T) {
	p := buildTestParams()
	p.Request.ContactNameGiven = "Jane"
	p.WithContact = true
	p.WithContactEmail = false

	cs, _ := BuildChangeSet(p)

	require.Len(t, cs.Records, 3)
	for _, rec := range cs.Records {
		_, isEmail := rec.(ContactEmailRecord)
		assert.False(t, isEmail)
	}
}

func TestChangeSetCapabilities(t *testing.T) {
	p := buildTestParams()
	p.Request.Language = "en-us"
	p.Request.TimeZone = "America/New_York"
	p.Request.ContactNameGiven = "Jane"
	p.WithContact = true
	p.WithContactEmail = true

	cs, _ := BuildChangeSet(p)

	assert.Equal(t, []string{
		"user_setting_add",
		"user_group_add",
		"contact_add",
		"contact_email_add",
		"user_edit",
	}, cs.Capabilities())
}
