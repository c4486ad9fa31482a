package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/session"
	"github.com/banjito/ampcalibration/internal/validator"

	"go.uber.org/zap"
)

// VerifyPath is the page confirmation emails link back to.
const VerifyPath = "/verify.html"

// NewAuthenticator creates a new Authenticator instance.
func NewAuthenticator(logger *zap.Logger, source ProviderSource, cache RoleCache) *Authenticator {
	return &Authenticator{
		logger: logger,
		source: source,
		cache:  cache,
	}
}

// Authenticator signs browsers in and out with an email address and a six
// digit PIN, which the provider treats as the account password.
type Authenticator struct {
	logger *zap.Logger
	source ProviderSource
	cache  RoleCache
}

// RegisterWithPIN creates an account. origin is the scheme and host the
// dashboard is served from; the confirmation email links to its verify page.
func (a Authenticator) RegisterWithPIN(
	ctx context.Context,
	email string,
	pin string,
	origin string,
) (*provider.SignUpResult, error) {
	p, err := client(a.source)
	if err != nil {
		return nil, err
	}
	if !validator.IsPIN(pin) {
		return nil, ErrInvalidPIN
	}

	redirectTo := strings.TrimRight(origin, "/") + VerifyPath
	res, err := p.SignUp(ctx, normalizeEmail(email), pin, redirectTo)
	if err != nil {
		return nil, fmt.Errorf("register; error: %w", err)
	}
	return res, nil
}

// LoginWithPIN signs in with an email address and PIN.
func (a Authenticator) LoginWithPIN(ctx context.Context, email, pin string) (*session.Session, error) {
	p, err := client(a.source)
	if err != nil {
		return nil, err
	}
	if !validator.IsPIN(pin) {
		return nil, ErrInvalidPIN
	}

	sess, err := p.SignInWithPassword(ctx, normalizeEmail(email), pin)
	if err != nil {
		return nil, fmt.Errorf("login; error: %w", err)
	}
	return sess, nil
}

// RequestOTP emails a one-time login PIN.
func (a Authenticator) RequestOTP(ctx context.Context, email string) error {
	p, err := client(a.source)
	if err != nil {
		return err
	}

	if err := p.SignInWithOTP(ctx, normalizeEmail(email)); err != nil {
		return fmt.Errorf("request otp; error: %w", err)
	}
	return nil
}

// VerifyOTP signs in with an emailed one-time PIN.
func (a Authenticator) VerifyOTP(ctx context.Context, email, code string) (*session.Session, error) {
	p, err := client(a.source)
	if err != nil {
		return nil, err
	}
	if !validator.IsPIN(code) {
		return nil, ErrInvalidPIN
	}

	sess, err := p.VerifyOTP(ctx, normalizeEmail(email), code)
	if err != nil {
		return nil, fmt.Errorf("verify otp; error: %w", err)
	}
	return sess, nil
}

// HandleEmailVerification reports the user a confirmation link signed the
// browser in as. ErrNotAuthenticated is returned if it did not.
func (a Authenticator) HandleEmailVerification(ctx context.Context) (*session.User, error) {
	p, err := client(a.source)
	if err != nil {
		return nil, err
	}

	sess, err := p.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("email verification; error: %w", err)
	}
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	return &sess.User, nil
}

// Logout signs the browser out and forgets its cached role.
func (a Authenticator) Logout(ctx context.Context) error {
	p, err := client(a.source)
	if err != nil {
		return err
	}

	if err := p.SignOut(ctx); err != nil {
		return fmt.Errorf("logout; error: %w", err)
	}
	if err := a.cache.Clear(ctx); err != nil {
		a.logger.Warn("clear role", zap.Error(err))
	}
	return nil
}
