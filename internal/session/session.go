package session

import (
	"time"
)

// Session represents a provider issued session. It is created when a user
// signs in or verifies a one-time PIN, and destroyed on sign-out.
type Session struct {
	// AccessToken is the bearer token presented to the provider on behalf of
	// the session User.
	AccessToken string `json:"access_token"`

	// RefreshToken may be exchanged for a new AccessToken once the session has
	// expired.
	RefreshToken string `json:"refresh_token"`

	// TokenType is the AccessToken scheme, typically "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime of the AccessToken in seconds, as reported at
	// issue time.
	ExpiresIn int64 `json:"expires_in"`

	// ExpiresAt is the unix time in seconds at which the AccessToken expires.
	ExpiresAt int64 `json:"expires_at"`

	// User is the session User.
	User User `json:"user"`
}

// expiryMargin is subtracted from ExpiresAt so that tokens are refreshed
// before the provider starts rejecting them.
const expiryMargin = 10 * time.Second

// IsExpired checks if the Session access token should be considered expired
// at the passed time. Sessions without an expiry never expire.
func (s Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.Add(expiryMargin).After(time.Unix(s.ExpiresAt, 0))
}

// Equal checks if the passed Session is equal to the receiver Session.
func (s Session) Equal(s2 Session) bool {
	equal := true
	equal = equal && (s.AccessToken == s2.AccessToken)
	equal = equal && (s.RefreshToken == s2.RefreshToken)
	equal = equal && (s.TokenType == s2.TokenType)
	equal = equal && (s.ExpiresAt == s2.ExpiresAt)
	equal = equal && s.User.Equal(s2.User)

	return equal
}
