package page

import (
	"context"
	"fmt"

	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/session"
)

// RoleKey is the local storage key the browser's role is cached under.
const RoleKey = "userRole"

// Roles is the browser's role cache. The latest write wins.
type Roles struct {
	storage local.Storage
}

// Get retrieves the cached role. The second return value is false if no role
// is cached.
func (r Roles) Get(ctx context.Context) (session.Role, bool, error) {
	value, ok, err := r.storage.GetItem(ctx, RoleKey)
	if err != nil {
		return "", false, fmt.Errorf("get role; error: %w", err)
	}
	return session.Role(value), ok, nil
}

// Set caches role, replacing any cached role.
func (r Roles) Set(ctx context.Context, role session.Role) error {
	if err := r.storage.SetItem(ctx, RoleKey, string(role)); err != nil {
		return fmt.Errorf("set role; error: %w", err)
	}
	return nil
}

// Clear removes the cached role.
func (r Roles) Clear(ctx context.Context) error {
	if err := r.storage.RemoveItem(ctx, RoleKey); err != nil {
		return fmt.Errorf("clear role; error: %w", err)
	}
	return nil
}
