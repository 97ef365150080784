package user

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fluxpbx/adminapi/pkg/errors"
)

var validate = validator.New()

var (
	digitRegex   = regexp.MustCompile(`[0-9]`)
	lowerRegex   = regexp.MustCompile(`[a-z]`)
	upperRegex   = regexp.MustCompile(`[A-Z]`)
	// underscore counts as a word character, not a special one
	specialRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// ValidEmail reports whether the value matches a standard address grammar
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// MissingFields returns the names of required fields that are empty after
// trimming. The group reference is satisfied by either group_uuid or
// group_uuid_name.
func MissingFields(p CreateUserParams) []string {
	var missing []string
	if strings.TrimSpace(p.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(p.Password) == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(p.Email) == "" {
		missing = append(missing, "user_email")
	}
	if strings.TrimSpace(p.GroupUUID) == "" && strings.TrimSpace(p.GroupUUIDName) == "" {
		missing = append(missing, "group_uuid")
	}
	return missing
}

// CheckUsernameFormat enforces the configured username format policy:
// "any" accepts everything, "email" requires the username to be a valid
// address, "no_email" requires it not to be one.
func CheckUsernameFormat(username, format string) error {
	switch format {
	case "", "any":
		return nil
	case "email":
		if !ValidEmail(username) {
			return errors.Newf(errors.ErrCodeInvalidUsernameFormat,
				"Username format is invalid. Expected format: %s", format)
		}
	case "no_email":
		if ValidEmail(username) {
			return errors.Newf(errors.ErrCodeInvalidUsernameFormat,
				"Username format is invalid. Expected format: %s", format)
		}
	}
	return nil
}

// PasswordRequirements holds the configured password policy. A zero Length
// disables the length check; the boolean requirements are independent.
type PasswordRequirements struct {
	Length    int
	Number    bool
	Lowercase bool
	Uppercase bool
	Special   bool
}

// CheckPassword returns every unmet requirement rather than stopping at the
// first failure, so the caller can report them all at once.
func CheckPassword(password string, req PasswordRequirements) []string {
	var requirementErrors []string
	if req.Length > 0 && len(password) < req.Length {
		requirementErrors = append(requirementErrors,
			fmt.Sprintf("Password must be at least %d characters", req.Length))
	}
	if req.Number && !digitRegex.MatchString(password) {
		requirementErrors = append(requirementErrors, "Password must contain at least one number")
	}
	if req.Lowercase && !lowerRegex.MatchString(password) {
		requirementErrors = append(requirementErrors, "Password must contain at least one lowercase letter")
	}
	if req.Uppercase && !upperRegex.MatchString(password) {
		requirementErrors = append(requirementErrors, "Password must contain at least one uppercase letter")
	}
	if req.Special && !specialRegex.MatchString(password) {
		requirementErrors = append(requirementErrors, "Password must contain at least one special character")
	}
	return requirementErrors
}

// userStatuses is the closed set of presence states
var userStatuses = map[string]struct{}{
	"Available":             {},
	"Available (On Demand)": {},
	"On Break":              {},
	"Do Not Disturb":        {},
	"Logged Out":            {},
}

// NormalizeStatus coerces anything outside the closed status set to empty.
// An unknown status is not an error.
func NormalizeStatus(status string) string {
	if _, ok := userStatuses[status]; ok {
		return status
	}
	return ""
}
