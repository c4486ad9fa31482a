package config

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProviderPrecedence(t *testing.T) {
	type expected struct {
		url string
		key string
	}
	tests := map[string]struct {
		env map[string]string
		exp expected
	}{
		"defaults": {
			env: map[string]string{},
			exp: expected{url: defaultProviderURL, key: defaultProviderAnonKey},
		},
		"unprefixed": {
			env: map[string]string{
				"SUPABASE_URL":      "https://alt.supabase.co",
				"SUPABASE_ANON_KEY": "alt-key",
			},
			exp: expected{url: "https://alt.supabase.co", key: "alt-key"},
		},
		"vite takes precedence": {
			env: map[string]string{
				"VITE_SUPABASE_URL":      "https://vite.supabase.co",
				"SUPABASE_URL":           "https://alt.supabase.co",
				"VITE_SUPABASE_ANON_KEY": "vite-key",
				"SUPABASE_ANON_KEY":      "alt-key",
			},
			exp: expected{url: "https://vite.supabase.co", key: "vite-key"},
		},
		"blank vite falls through": {
			env: map[string]string{
				"VITE_SUPABASE_URL": " ",
				"SUPABASE_URL":      "https://alt.supabase.co",
			},
			exp: expected{url: "https://alt.supabase.co", key: defaultProviderAnonKey},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"VITE_SUPABASE_URL", "SUPABASE_URL", "VITE_SUPABASE_ANON_KEY", "SUPABASE_ANON_KEY"} {
				unsetenv(t, key)
			}
			for key, value := range test.env {
				setenv(t, key, value)
			}
			reload(t)

			assert.Equal(t, test.exp.url, ProviderURL())
			assert.Equal(t, test.exp.key, ProviderAnonKey())
		})
	}
}

func TestDefaults(t *testing.T) {
	unsetenv(t, "PORT")
	unsetenv(t, "AMPCAL_HOOK_SECRET")
	reload(t)

	assert.Equal(t, 3000, Port())
	assert.Equal(t, 5, ProviderAttempts())
	assert.Equal(t, 100*time.Millisecond, ProviderDelay())
	assert.Equal(t, http.SameSiteLaxMode, CookieSameSite())
	assert.Equal(t, "", HookSecret())
}

func TestHookSecret(t *testing.T) {
	setenv(t, "AMPCAL_HOOK_SECRET", "s3cret")
	reload(t)

	assert.Equal(t, "s3cret", HookSecret())
}

func TestPort(t *testing.T) {
	setenv(t, "PORT", "8081")
	reload(t)

	assert.Equal(t, 8081, Port())
}

// --- helpers ---

func reload(t *testing.T) {
	prev := global
	global = load()
	t.Cleanup(func() { global = prev })
}

func setenv(t *testing.T, key, value string) {
	t.Setenv(key, value)
}

// unsetenv unsets key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Setenv(key, "")
	os.Unsetenv(key)
}
