package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banjito/ampcalibration/internal/retry"
	"github.com/banjito/ampcalibration/internal/session"

	"go.uber.org/zap"
)

// Options configures a Resolver.
type Options struct {
	// WaitForClient configures the Resolver to await a Provider that is not yet
	// available, rather than failing with ErrClientNotInitialized.
	WaitForClient bool

	// Client bounds the wait for the Provider. The wait lasts at most
	// Attempts * Delay.
	Client retry.Policy

	// Session bounds the polling for a session that was only just established,
	// e.g. by a sign-in redirect.
	Session retry.Policy
}

// DefaultOptions are the Options pages are resolved with.
func DefaultOptions() Options {
	return Options{
		WaitForClient: true,
		Client:        retry.Policy{Attempts: 20, Delay: 100 * time.Millisecond},
		Session:       retry.Policy{Attempts: 3, Delay: 200 * time.Millisecond},
	}
}

// Budget is the longest ResolveCurrentUser waits, excluding provider round
// trips.
func (o Options) Budget() time.Duration {
	budget := o.Session.Budget()
	if o.WaitForClient {
		budget += o.clientWait()
	}
	return budget
}

func (o Options) clientWait() time.Duration {
	return time.Duration(o.Client.Attempts) * o.Client.Delay
}

// Result is a resolved user. Profile is nil and Err is ErrProfileNotFound
// when the user is authenticated but their profile could not be read.
type Result struct {
	User    session.User
	Profile *session.Profile
	Role    session.Role
	Err     error
}

// EffectiveRole is the role role-gated views are rendered for. Users with an
// unknown role are treated as customers.
func (r Result) EffectiveRole() session.Role {
	role := r.Role.Normalize()
	if role == "" {
		return session.RoleCustomer
	}
	return role
}

// NewResolver creates a new Resolver instance.
func NewResolver(logger *zap.Logger, source ProviderSource, options Options) *Resolver {
	return &Resolver{
		logger:  logger,
		source:  source,
		options: options,
	}
}

// Resolver determines the user a browser is signed in as.
type Resolver struct {
	logger  *zap.Logger
	source  ProviderSource
	options Options
}

var errNoSession = errors.New("no session")

// ResolveCurrentUser resolves the browser's user, profile, and role.
//
// If the Provider is not available ErrClientNotInitialized is returned, after
// waiting for it if the Resolver is so configured. If no session is found
// within the session retry budget ErrNotAuthenticated is returned. A failed
// profile lookup is not an error; the Result carries ErrProfileNotFound
// instead. ResolveCurrentUser never waits longer than Options.Budget.
func (r Resolver) ResolveCurrentUser(ctx context.Context) (*Result, error) {
	p, err := r.provider(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := retry.Do(ctx, r.options.Session, func(ctx context.Context) (*session.Session, error) {
		sess, err := p.GetSession(ctx)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, errNoSession
		}
		return sess, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	profile, err := p.Profile(ctx, sess.User.ID)
	if err != nil {
		r.logger.Warn(
			"profile lookup failed",
			zap.String("user-id", sess.User.ID.String()),
			zap.Error(err),
		)
		return &Result{User: sess.User, Err: ErrProfileNotFound}, nil
	}

	return &Result{
		User:    sess.User,
		Profile: profile,
		Role:    profile.Role,
	}, nil
}

func (r Resolver) provider(ctx context.Context) (Provider, error) {
	if p, ok := r.source.Client(); ok {
		return p, nil
	}
	if !r.options.WaitForClient {
		return nil, ErrClientNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, r.options.clientWait())
	defer cancel()

	p, err := r.source.AwaitClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientNotInitialized, err)
	}
	return p, nil
}
