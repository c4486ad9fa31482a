package auth

import (
	"context"
	"testing"

	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/provider/providertest"
	"github.com/banjito/ampcalibration/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuthenticatorPINValidation(t *testing.T) {
	ctx := context.Background()
	calls := 0
	p := NewProviderMock(
		WithSignUp(func(context.Context, string, string, string) (*provider.SignUpResult, error) {
			calls++
			return &provider.SignUpResult{}, nil
		}),
		WithSignInWithPassword(func(context.Context, string, string) (*session.Session, error) {
			calls++
			return &session.Session{}, nil
		}),
		WithVerifyOTP(func(context.Context, string, string) (*session.Session, error) {
			calls++
			return &session.Session{}, nil
		}),
	)
	src := newSource(p)
	src.resolve()
	authn := NewAuthenticator(zap.NewNop(), src, newCache())

	for _, pin := range []string{"", "12345", "1234567", "abcdef", "12 456"} {
		_, err := authn.RegisterWithPIN(ctx, "tech@example.com", pin, "http://localhost:3000")
		assert.ErrorIs(t, err, ErrInvalidPIN)

		_, err = authn.LoginWithPIN(ctx, "tech@example.com", pin)
		assert.ErrorIs(t, err, ErrInvalidPIN)

		_, err = authn.VerifyOTP(ctx, "tech@example.com", pin)
		assert.ErrorIs(t, err, ErrInvalidPIN)
	}
	assert.Equal(t, 0, calls)
	assert.Equal(t, "PIN must be 6 digits", ErrInvalidPIN.Error())
}

func TestAuthenticatorClientNotInitialized(t *testing.T) {
	ctx := context.Background()
	authn := NewAuthenticator(zap.NewNop(), newSource(nil), newCache())

	_, err := authn.RegisterWithPIN(ctx, "tech@example.com", "123456", "")
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = authn.LoginWithPIN(ctx, "tech@example.com", "123456")
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	err = authn.RequestOTP(ctx, "tech@example.com")
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = authn.VerifyOTP(ctx, "tech@example.com", "123456")
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	_, err = authn.HandleEmailVerification(ctx)
	assert.ErrorIs(t, err, ErrClientNotInitialized)
	err = authn.Logout(ctx)
	assert.ErrorIs(t, err, ErrClientNotInitialized)
}

// browserSource exposes a provider.Browser as a ready ProviderSource.
type browserSource struct{ browser *provider.Browser }

func (s browserSource) Client() (Provider, bool) { return s.browser, true }

func (s browserSource) AwaitClient(context.Context) (Provider, error) { return s.browser, nil }

func TestAuthenticatorAgainstProvider(t *testing.T) {
	ctx := context.Background()
	server := providertest.NewServer()
	defer server.Close()

	client := provider.NewClient(zap.NewNop(), provider.Config{
		URL:     server.URL,
		AnonKey: providertest.AnonKey,
	})
	src := browserSource{browser: client.Browser(session.NewMock().Store("browser"))}
	roles := newCache()
	authn := NewAuthenticator(zap.NewNop(), src, roles)

	t.Run("register", func(t *testing.T) {
		res, err := authn.RegisterWithPIN(ctx, " new@example.com ", "135790", "https://ampcalibration.com/")
		require.Nil(t, err)
		assert.Equal(t, "new@example.com", res.User.Email)
		assert.Equal(t, []string{"https://ampcalibration.com/verify.html"}, server.Redirects())
	})

	t.Run("verification without session", func(t *testing.T) {
		_, err := authn.HandleEmailVerification(ctx)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("wrong pin surfaces provider message", func(t *testing.T) {
		_, err := authn.LoginWithPIN(ctx, "new@example.com", "000000")
		perr, ok := provider.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid login credentials", perr.Message)
	})

	t.Run("otp", func(t *testing.T) {
		require.Nil(t, authn.RequestOTP(ctx, "new@example.com"))
		sess, err := authn.VerifyOTP(ctx, "new@example.com", "123456")
		require.Nil(t, err)
		assert.Equal(t, "new@example.com", sess.User.Email)

		user, err := authn.HandleEmailVerification(ctx)
		require.Nil(t, err)
		assert.Equal(t, "new@example.com", user.Email)
	})

	t.Run("logout clears role", func(t *testing.T) {
		require.Nil(t, roles.Set(ctx, session.RoleCustomer))
		require.Nil(t, authn.Logout(ctx))

		_, cached, err := roles.Get(ctx)
		require.Nil(t, err)
		assert.False(t, cached)

		_, err = authn.HandleEmailVerification(ctx)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestTechnicianScenario(t *testing.T) {
	ctx := context.Background()
	server := providertest.NewServer()
	defer server.Close()

	id := server.AddUser("tech@example.com", "123456")
	server.SetProfile(id, `{"id":"`+id.String()+`","role":"technician","badges":null}`)

	client := provider.NewClient(zap.NewNop(), provider.Config{
		URL:     server.URL,
		AnonKey: providertest.AnonKey,
	})
	src := browserSource{browser: client.Browser(session.NewMock().Store("browser"))}
	roles := newCache()

	_, err := NewAuthenticator(zap.NewNop(), src, roles).LoginWithPIN(ctx, "tech@example.com", "123456")
	require.Nil(t, err)

	guard := NewGuard(zap.NewNop(), NewResolver(zap.NewNop(), src, fastOptions()), roles)
	res, err := guard.Require(ctx, new(navigator), nil)
	require.Nil(t, err)

	assert.Equal(t, "tech@example.com", res.User.Email)
	assert.Equal(t, session.RoleTechnician, res.Role)
	assert.Nil(t, res.Err)
	assert.False(t, HasAdminBadge(res.Profile, res.Role))

	role, cached, err := roles.Get(ctx)
	require.Nil(t, err)
	assert.True(t, cached)
	assert.Equal(t, session.RoleTechnician, role)
}
