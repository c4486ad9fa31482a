package auth

import (
	"context"
	"errors"

	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/session"

	"github.com/google/uuid"
)

var errUnconfigured = errors.New("mock unconfigured")

// NewProviderMock creates a new ProviderMock instance. Operations not
// configured through options return an error.
func NewProviderMock(options ...ProviderMockOption) *ProviderMock {
	mock := &ProviderMock{
		signUp: func(context.Context, string, string, string) (*provider.SignUpResult, error) {
			return nil, errUnconfigured
		},
		signInWithPassword: func(context.Context, string, string) (*session.Session, error) {
			return nil, errUnconfigured
		},
		signInWithOTP: func(context.Context, string) error { return errUnconfigured },
		verifyOTP: func(context.Context, string, string) (*session.Session, error) {
			return nil, errUnconfigured
		},
		getSession: func(context.Context) (*session.Session, error) { return nil, errUnconfigured },
		onSessionChange: func(context.Context, session.Listener) (func(), error) {
			return nil, errUnconfigured
		},
		signOut: func(context.Context) error { return errUnconfigured },
		profile: func(context.Context, uuid.UUID) (*session.Profile, error) {
			return nil, errUnconfigured
		},
	}

	for _, option := range options {
		option(mock)
	}
	return mock
}

// ProviderMockOption configures a ProviderMock.
type ProviderMockOption func(*ProviderMock)

func WithSignUp(fn func(context.Context, string, string, string) (*provider.SignUpResult, error)) ProviderMockOption {
	return func(m *ProviderMock) { m.signUp = fn }
}

func WithSignInWithPassword(fn func(context.Context, string, string) (*session.Session, error)) ProviderMockOption {
	return func(m *ProviderMock) { m.signInWithPassword = fn }
}

func WithSignInWithOTP(fn func(context.Context, string) error) ProviderMockOption {
	return func(m *ProviderMock) { m.signInWithOTP = fn }
}

func WithVerifyOTP(fn func(context.Context, string, string) (*session.Session, error)) ProviderMockOption {
	return func(m *ProviderMock) { m.verifyOTP = fn }
}

func WithGetSession(fn func(context.Context) (*session.Session, error)) ProviderMockOption {
	return func(m *ProviderMock) { m.getSession = fn }
}

func WithOnSessionChange(fn func(context.Context, session.Listener) (func(), error)) ProviderMockOption {
	return func(m *ProviderMock) { m.onSessionChange = fn }
}

func WithSignOut(fn func(context.Context) error) ProviderMockOption {
	return func(m *ProviderMock) { m.signOut = fn }
}

func WithProfile(fn func(context.Context, uuid.UUID) (*session.Profile, error)) ProviderMockOption {
	return func(m *ProviderMock) { m.profile = fn }
}

// ProviderMock is a Provider whose behaviour is configured per operation.
type ProviderMock struct {
	signUp             func(context.Context, string, string, string) (*provider.SignUpResult, error)
	signInWithPassword func(context.Context, string, string) (*session.Session, error)
	signInWithOTP      func(context.Context, string) error
	verifyOTP          func(context.Context, string, string) (*session.Session, error)
	getSession         func(context.Context) (*session.Session, error)
	onSessionChange    func(context.Context, session.Listener) (func(), error)
	signOut            func(context.Context) error
	profile            func(context.Context, uuid.UUID) (*session.Profile, error)
}

func (m ProviderMock) SignUp(ctx context.Context, email, password, redirectTo string) (*provider.SignUpResult, error) {
	return m.signUp(ctx, email, password, redirectTo)
}

func (m ProviderMock) SignInWithPassword(ctx context.Context, email, password string) (*session.Session, error) {
	return m.signInWithPassword(ctx, email, password)
}

func (m ProviderMock) SignInWithOTP(ctx context.Context, email string) error {
	return m.signInWithOTP(ctx, email)
}

func (m ProviderMock) VerifyOTP(ctx context.Context, email, token string) (*session.Session, error) {
	return m.verifyOTP(ctx, email, token)
}

func (m ProviderMock) GetSession(ctx context.Context) (*session.Session, error) {
	return m.getSession(ctx)
}

func (m ProviderMock) OnSessionChange(ctx context.Context, fn session.Listener) (func(), error) {
	return m.onSessionChange(ctx, fn)
}

func (m ProviderMock) SignOut(ctx context.Context) error {
	return m.signOut(ctx)
}

func (m ProviderMock) Profile(ctx context.Context, userID uuid.UUID) (*session.Profile, error) {
	return m.profile(ctx, userID)
}
