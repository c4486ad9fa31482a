// Package menu builds the role-gated navigation of the dashboard.
package menu

import (
	"strings"

	"github.com/banjito/ampcalibration/internal/session"
)

// Links are the external applications the menu links to.
type Links struct {
	AmpcalOS string
	Vault    string
}

// Item is a menu entry.
type Item struct {
	Title    string `json:"title"`
	Href     string `json:"href"`
	Icon     string `json:"icon"`
	External bool   `json:"external"`
}

// QuickLink is a dashboard card for a menu Item.
type QuickLink struct {
	Item
	Description string `json:"description"`
	Action      string `json:"action"`
}

const (
	technicianDescription = "Access the technician dashboard and tools."
	customerDescription   = "Access your customer portal and projects."
)

// New creates a new Menu instance.
func New(links Links) *Menu {
	ampcalOS := Item{Title: "ampcalOS", Href: links.AmpcalOS, Icon: "⚡", External: true}
	vault := Item{Title: "The Vault", Href: links.Vault, Icon: "📦", External: true}

	return &Menu{
		items: map[session.Role][]Item{
			session.RoleTechnician: {ampcalOS},
			session.RoleCustomer:   {vault},
			session.RoleAdmin:      {ampcalOS, vault},
		},
	}
}

// Menu maps roles to the menu Items they are shown.
type Menu struct {
	items map[session.Role][]Item
}

// For retrieves the Items shown to role. Unrecognized roles are shown the
// customer Items.
func (m Menu) For(role session.Role) []Item {
	items, ok := m.items[role.Normalize()]
	if !ok {
		items = m.items[session.RoleCustomer]
	}
	return append([]Item(nil), items...)
}

// QuickLinks retrieves the dashboard cards shown to role.
func (m Menu) QuickLinks(role session.Role) []QuickLink {
	description := customerDescription
	if role.Normalize() == session.RoleTechnician {
		description = technicianDescription
	}

	items := m.For(role)
	links := make([]QuickLink, len(items))
	for i, item := range items {
		links[i] = QuickLink{
			Item:        item,
			Description: description,
			Action:      "OPEN " + strings.ToUpper(item.Title),
		}
	}
	return links
}
