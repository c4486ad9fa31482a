package profile

import (
	"testing"

	"github.com/banjito/ampcalibration/internal/auth"
	"github.com/banjito/ampcalibration/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSidebar(t *testing.T) {
	user := session.User{ID: uuid.New(), Email: "jane.doe@example.com"}

	tests := map[string]struct {
		res auth.Result
		exp Sidebar
	}{
		"technician": {
			res: auth.Result{
				User:    user,
				Profile: &session.Profile{ID: user.ID, Role: session.RoleTechnician},
				Role:    session.RoleTechnician,
			},
			exp: Sidebar{
				Email:     user.Email,
				Initials:  "JD",
				Role:      session.RoleTechnician,
				RoleLabel: "Technician",
			},
		},
		"technician with admin badge": {
			res: auth.Result{
				User:    user,
				Profile: &session.Profile{ID: user.ID, Role: session.RoleTechnician, Badges: session.NewBadges("admin")},
				Role:    session.RoleTechnician,
			},
			exp: Sidebar{
				Email:     user.Email,
				Initials:  "JD",
				Role:      session.RoleTechnician,
				RoleLabel: "Technician",
				ShowHR:    true,
			},
		},
		"admin": {
			res: auth.Result{
				User:    user,
				Profile: &session.Profile{ID: user.ID, Role: "Admin"},
				Role:    "Admin",
			},
			exp: Sidebar{
				Email:     user.Email,
				Initials:  "JD",
				Role:      session.RoleAdmin,
				RoleLabel: "Admin",
				ShowHR:    true,
			},
		},
		"profile missing": {
			res: auth.Result{User: user, Err: auth.ErrProfileNotFound},
			exp: Sidebar{
				Email:    user.Email,
				Initials: "JD",
			},
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			test.exp.PhotoURL = "https://example.com/photo.png"
			assert.Equal(t, test.exp, NewSidebar(test.res, "https://example.com/photo.png"))
		})
	}
}
