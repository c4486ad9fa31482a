package profile

import (
	"github.com/banjito/ampcalibration/internal/auth"
	"github.com/banjito/ampcalibration/internal/session"
)

// Sidebar is what the dashboard sidebar shows of the signed-in user.
type Sidebar struct {
	Email     string       `json:"email"`
	Initials  string       `json:"initials"`
	Role      session.Role `json:"role"`
	RoleLabel string       `json:"roleLabel"`
	ShowHR    bool         `json:"showHR"`
	PhotoURL  string       `json:"photoUrl,omitempty"`
}

// NewSidebar creates the Sidebar of the user resolved in res. photoURL is
// empty if the user has no photo.
func NewSidebar(res auth.Result, photoURL string) Sidebar {
	role := res.Role.Normalize()
	return Sidebar{
		Email:     res.User.Email,
		Initials:  Initials(res.User.Email),
		Role:      role,
		RoleLabel: RoleLabel(role),
		ShowHR:    auth.HasAdminBadge(res.Profile, role),
		PhotoURL:  photoURL,
	}
}
