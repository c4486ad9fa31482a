package provider

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL indicates the provider URL is empty, unparsable, or a
	// placeholder left over from a configuration template.
	ErrInvalidURL = errors.New("invalid provider url")

	// ErrInvalidAnonKey indicates the provider anon key is empty or a
	// placeholder left over from a configuration template.
	ErrInvalidAnonKey = errors.New("invalid provider anon key")
)

// Config is the public, non-secret configuration required to reach the
// provider.
type Config struct {
	URL     string
	AnonKey string
}

// Validate checks that the Config does not hold empty or template values.
func (c Config) Validate() error {
	if c.URL == "" ||
		c.URL == "YOUR_SUPABASE_PROJECT_URL" ||
		strings.Contains(c.URL, "your-project-id") {
		return fmt.Errorf("url: %q; %w", c.URL, ErrInvalidURL)
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url: %q; %w", c.URL, ErrInvalidURL)
	}

	if c.AnonKey == "" || c.AnonKey == "your-anon-key-here" {
		return ErrInvalidAnonKey
	}
	return nil
}
