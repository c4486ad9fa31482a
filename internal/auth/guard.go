package auth

import (
	"context"

	"go.uber.org/zap"
)

// NewGuard creates a new Guard instance.
func NewGuard(logger *zap.Logger, resolver *Resolver, cache RoleCache) *Guard {
	return &Guard{
		logger:   logger,
		resolver: resolver,
		cache:    cache,
	}
}

// Guard gates protected pages behind user resolution.
type Guard struct {
	logger   *zap.Logger
	resolver *Resolver
	cache    RoleCache
}

// Require resolves the browser's user. If there is none, nav is sent to the
// login page, continuation is not called, and the resolution error is
// returned. Otherwise the role cache is updated and continuation is called
// with the Result before Require returns it. A user whose profile is missing
// is let through; their Result carries ErrProfileNotFound.
func (g Guard) Require(
	ctx context.Context,
	nav Navigator,
	continuation func(*Result),
) (*Result, error) {
	res, err := g.resolver.ResolveCurrentUser(ctx)
	if err != nil {
		g.logger.Debug("guard redirecting to login", zap.Error(err))
		nav.Navigate(LoginPath)
		return nil, err
	}

	if res.Role != "" {
		if err := g.cache.Set(ctx, res.Role.Normalize()); err != nil {
			g.logger.Warn("cache role", zap.Error(err))
		}
	} else {
		// an unknown role must not leave a previous user's role behind
		if err := g.cache.Clear(ctx); err != nil {
			g.logger.Warn("clear role", zap.Error(err))
		}
	}

	if continuation != nil {
		continuation(res)
	}
	return res, nil
}
