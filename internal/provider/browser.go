package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/banjito/ampcalibration/internal/session"

	"github.com/google/uuid"
)

// Browser acts on the provider on behalf of a single browser. The browser's
// session is persisted in the passed session.Store, the way the provider's
// JavaScript client persists it in browser storage.
func (c *Client) Browser(store session.Store) *Browser {
	return &Browser{client: c, store: store}
}

type Browser struct {
	client *Client
	store  session.Store
}

// SignUpResult is the outcome of SignUp. Session is nil when the provider
// requires the email address to be confirmed before a session is issued.
type SignUpResult struct {
	User    session.User
	Session *session.Session
}

// sessionBody is the token response of the provider's auth service. Sign-up
// responds with either a token response or a bare user.
type sessionBody struct {
	session.Session
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// SignUp creates a provider user with the passed credentials. redirectTo is
// the page the confirmation email links back to.
func (b Browser) SignUp(ctx context.Context, email, password, redirectTo string) (*SignUpResult, error) {
	query := url.Values{}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}

	var body sessionBody
	if err := b.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		query:  query,
		body:   map[string]string{"email": email, "password": password},
	}, &body); err != nil {
		return nil, fmt.Errorf("sign up; error: %w", err)
	}

	if body.AccessToken == "" {
		return &SignUpResult{User: session.User{ID: body.ID, Email: body.Email}}, nil
	}

	sess, err := b.save(ctx, body.Session)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{User: sess.User, Session: sess}, nil
}

// SignInWithPassword exchanges the passed credentials for a Session.
func (b Browser) SignInWithPassword(ctx context.Context, email, password string) (*session.Session, error) {
	var body session.Session
	if err := b.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": []string{"password"}},
		body:   map[string]string{"email": email, "password": password},
	}, &body); err != nil {
		return nil, fmt.Errorf("sign in with password; error: %w", err)
	}

	return b.save(ctx, body)
}

// SignInWithOTP requests that a one-time PIN be emailed to the passed
// address. The provider creates the user if it does not exist.
func (b Browser) SignInWithOTP(ctx context.Context, email string) error {
	if err := b.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/otp",
		body: map[string]interface{}{
			"email":       email,
			"create_user": true,
		},
	}, nil); err != nil {
		return fmt.Errorf("sign in with otp; error: %w", err)
	}
	return nil
}

// VerifyOTP exchanges an emailed one-time PIN for a Session.
func (b Browser) VerifyOTP(ctx context.Context, email, token string) (*session.Session, error) {
	var body session.Session
	if err := b.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/verify",
		body: map[string]string{
			"type":  "email",
			"email": email,
			"token": token,
		},
	}, &body); err != nil {
		return nil, fmt.Errorf("verify otp; error: %w", err)
	}

	return b.save(ctx, body)
}

// GetSession retrieves the browser's Session, refreshing it if it has
// expired. If the browser has no session, nil is returned for both values.
func (b Browser) GetSession(ctx context.Context) (*session.Session, error) {
	sess, err := b.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session; error: %w", err)
	}
	if sess == nil || !sess.IsExpired(b.client.now()) {
		return sess, nil
	}
	if sess.RefreshToken == "" {
		return nil, b.forget(ctx)
	}

	var body session.Session
	err = b.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": []string{"refresh_token"}},
		body:   map[string]string{"refresh_token": sess.RefreshToken},
	}, &body)
	if perr, ok := AsError(err); ok && perr.Status < http.StatusInternalServerError {
		// refresh token revoked or already used
		return nil, b.forget(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh session; error: %w", err)
	}

	return b.refresh(ctx, body)
}

// OnSessionChange registers fn to be called on each session transition of
// the browser. The returned function unregisters fn.
func (b Browser) OnSessionChange(ctx context.Context, fn session.Listener) (func(), error) {
	return b.store.Watch(ctx, fn)
}

// SignOut revokes the browser's session with the provider and removes it
// from the browser. A session the provider no longer recognizes is removed
// all the same.
func (b Browser) SignOut(ctx context.Context) error {
	sess, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("sign out; error: %w", err)
	}

	if sess != nil {
		err := b.client.do(ctx, request{
			method: http.MethodPost,
			path:   "/auth/v1/logout",
			bearer: sess.AccessToken,
		}, nil)
		perr, ok := AsError(err)
		switch {
		case err == nil:
		case ok && (perr.Status == http.StatusUnauthorized ||
			perr.Status == http.StatusForbidden ||
			perr.Status == http.StatusNotFound):
		default:
			return fmt.Errorf("sign out; error: %w", err)
		}
	}

	if err := b.store.Delete(ctx); err != nil {
		return fmt.Errorf("sign out; error: %w", err)
	}
	return nil
}

// Profile retrieves the user_profiles row of the passed user.
func (b Browser) Profile(ctx context.Context, userID uuid.UUID) (*session.Profile, error) {
	var profile session.Profile
	if err := b.From("user_profiles").
		Select("*").
		Eq("id", userID.String()).
		Single(ctx, &profile); err != nil {
		return nil, fmt.Errorf("profile; user-id: %s, error: %w", userID, err)
	}
	return &profile, nil
}

// bearer is the access token of the browser's session, or empty if the
// browser is anonymous.
func (b Browser) bearer(ctx context.Context) (string, error) {
	sess, err := b.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	return sess.AccessToken, nil
}

// save persists sess. ExpiresAt is recomputed from ExpiresIn against the
// Client's clock.
func (b Browser) save(ctx context.Context, sess session.Session) (*session.Session, error) {
	if sess.ExpiresIn > 0 {
		sess.ExpiresAt = b.client.now().Add(time.Duration(sess.ExpiresIn) * time.Second).Unix()
	}
	if err := b.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session; error: %w", err)
	}
	return &sess, nil
}

// refresh persists sess in place of the expired session without signalling
// a new sign-in.
func (b Browser) refresh(ctx context.Context, sess session.Session) (*session.Session, error) {
	if sess.ExpiresIn > 0 {
		sess.ExpiresAt = b.client.now().Add(time.Duration(sess.ExpiresIn) * time.Second).Unix()
	}
	if err := b.store.Refresh(ctx, sess); err != nil {
		return nil, fmt.Errorf("save refreshed session; error: %w", err)
	}
	return &sess, nil
}

func (b Browser) forget(ctx context.Context) error {
	b.client.logger.Debug("expired session discarded")
	if err := b.store.Delete(ctx); err != nil {
		return fmt.Errorf("discard expired session; error: %w", err)
	}
	return nil
}
