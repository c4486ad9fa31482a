package auth

import (
	"context"

	"github.com/banjito/ampcalibration/internal/session"

	"go.uber.org/zap"
)

// Listen reacts to the browser's session transitions until the returned
// function is called. On sign-in onSignedIn is called with the new session,
// or nav is sent home if onSignedIn is nil. On sign-out the role cache is
// cleared and nav is sent to the login page unless it is already there.
// Token refreshes are not transitions and are ignored.
func Listen(
	ctx context.Context,
	logger *zap.Logger,
	p Provider,
	cache RoleCache,
	nav Navigator,
	onSignedIn func(*session.Session),
) (func(), error) {
	return p.OnSessionChange(ctx, func(event session.Event, sess *session.Session) {
		switch event {
		case session.SignedIn:
			if sess == nil {
				return
			}
			logger.Debug("signed in", zap.String("email", sess.User.Email))
			if onSignedIn != nil {
				onSignedIn(sess)
				return
			}
			nav.Navigate(HomePath)
		case session.SignedOut:
			logger.Debug("signed out")
			if err := cache.Clear(ctx); err != nil {
				logger.Warn("clear role", zap.Error(err))
			}
			if nav.Path() != LoginPath {
				nav.Navigate(LoginPath)
			}
		case session.TokenRefreshed:
			// same sign-in, nothing to navigate
			logger.Debug("session refreshed")
		}
	})
}
