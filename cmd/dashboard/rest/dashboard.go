package rest

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/banjito/ampcalibration/internal/auth"
	ihttp "github.com/banjito/ampcalibration/internal/http"
	"github.com/banjito/ampcalibration/internal/menu"
	"github.com/banjito/ampcalibration/internal/session"
)

// Dashboard serves the dashboard page to signed-in browsers and sends the
// rest to the login page.
type Dashboard struct{ API }

func (ep Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	nav := ihttp.NewNavigation(r.URL.Path)
	_, err := ep.guard(r, pc).Require(r.Context(), nav, func(*auth.Result) {
		http.ServeFile(w, r, filepath.Join(ep.options.StaticDir, "dashboard.html"))
	})
	if err == nil {
		return
	}

	target, ok := nav.Target()
	if !ok {
		ihttp.ErrInternal(ep.logger, w, errors.New("guard failed without navigating"))
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

type dashboardResponse struct {
	Role       session.Role     `json:"role"`
	Items      []menu.Item      `json:"items"`
	QuickLinks []menu.QuickLink `json:"quickLinks"`
}

// DashboardMenu answers the menu and quick links of the signed-in user.
type DashboardMenu struct{ API }

func (ep DashboardMenu) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	res, ok := ep.require(w, r, pc)
	if !ok {
		return
	}

	role := res.EffectiveRole()
	ep.write(w, http.StatusOK, dashboardResponse{
		Role:       role,
		Items:      ep.menu.For(role),
		QuickLinks: ep.menu.QuickLinks(role),
	})
}
