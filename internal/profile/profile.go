// Package profile derives what the sidebar shows of the signed-in user and
// manages their profile photo.
package profile

import (
	"strings"

	"github.com/banjito/ampcalibration/internal/session"

	"github.com/iancoleman/strcase"
)

// Initials derives up to two upper-cased initials from the dot separated
// parts of the local part of email, e.g. "jane.doe@example.com" is "JD".
func Initials(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}

	var initials []rune
	for _, part := range strings.Split(local, ".") {
		if part == "" {
			continue
		}
		initials = append(initials, []rune(part)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}

// RoleLabel is how role is displayed, e.g. "Technician". The empty role has
// no label.
func RoleLabel(role session.Role) string {
	role = role.Normalize()
	if role == "" {
		return ""
	}
	return strcase.ToCamel(string(role))
}
