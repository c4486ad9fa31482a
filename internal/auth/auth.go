// Package auth resolves who a page is being rendered for and gates pages
// behind that resolution. It never authenticates anyone itself; sessions are
// issued and validated by the provider.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/session"

	"github.com/google/uuid"
)

var (
	// ErrClientNotInitialized indicates the provider client has not been
	// bootstrapped.
	ErrClientNotInitialized = errors.New("provider client not initialized")

	// ErrNotAuthenticated indicates no session could be found for the browser.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrProfileNotFound is a soft failure: the user is authenticated but their
	// profile, and so their role, is unknown.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidPIN indicates a PIN is not exactly six digits.
	ErrInvalidPIN = errors.New("PIN must be 6 digits")
)

// Provider is the set of provider capabilities auth relies upon.
type Provider interface {
	SignUp(ctx context.Context, email, password, redirectTo string) (*provider.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*session.Session, error)
	SignInWithOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, token string) (*session.Session, error)
	GetSession(ctx context.Context) (*session.Session, error)
	OnSessionChange(ctx context.Context, fn session.Listener) (func(), error)
	SignOut(ctx context.Context) error
	Profile(ctx context.Context, userID uuid.UUID) (*session.Profile, error)
}

// ProviderSource gives access to the Provider once it has been bootstrapped.
type ProviderSource interface {
	// Client retrieves the Provider without blocking. The second return value
	// is false if the Provider is not yet available.
	Client() (Provider, bool)

	// AwaitClient blocks until the Provider is available or ctx is done.
	AwaitClient(ctx context.Context) (Provider, error)
}

// RoleCache holds the last resolved role of a browser. It is advisory: it
// must never be the basis of an authorization decision.
type RoleCache interface {
	Get(context.Context) (session.Role, bool, error)
	Set(context.Context, session.Role) error
	Clear(context.Context) error
}

// Navigator moves the browser to another page.
type Navigator interface {
	Navigate(path string)

	// Path is the path of the page the browser is on.
	Path() string
}

const (
	// LoginPath is the page unauthenticated browsers are sent to.
	LoginPath = "/login"

	// HomePath is the page browsers are sent to after signing in.
	HomePath = "/"
)

// HasAdminBadge checks if the user described by profile and role is an
// administrator. role takes precedence over the profile's role. Either
// being "admin", in any case, or the profile holding the "admin" badge
// qualifies.
func HasAdminBadge(profile *session.Profile, role session.Role) bool {
	if role == "" && profile != nil {
		role = profile.Role
	}
	if role.Normalize() == session.RoleAdmin {
		return true
	}
	return profile != nil && profile.Badges.Has(string(session.RoleAdmin))
}

// client retrieves the Provider from source without blocking.
func client(source ProviderSource) (Provider, error) {
	p, ok := source.Client()
	if !ok {
		return nil, ErrClientNotInitialized
	}
	return p, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
