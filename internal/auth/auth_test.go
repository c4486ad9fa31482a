package auth

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/banjito/ampcalibration/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAdminBadge(t *testing.T) {
	tests := map[string]struct {
		profile string
		role    session.Role
		exp     bool
	}{
		"badges absent":                {profile: `{"role":"technician"}`, exp: false},
		"badges null":                  {profile: `{"role":"technician","badges":null}`, exp: false},
		"list with admin":              {profile: `{"badges":["hr","admin"]}`, exp: true},
		"list with mixed-case admin":   {profile: `{"badges":["AdMiN"]}`, exp: true},
		"list without admin":           {profile: `{"badges":["hr","admins"]}`, exp: false},
		"comma string with admin":      {profile: `{"badges":"hr, ADMIN"}`, exp: true},
		"comma string without admin":   {profile: `{"badges":"hr,calibration"}`, exp: false},
		"single string admin":          {profile: `{"badges":"Admin"}`, exp: true},
		"admin role on profile":        {profile: `{"role":"Admin"}`, exp: true},
		"admin role passed":            {profile: `{"role":"technician"}`, role: "ADMIN", exp: true},
		"passed role overrides":        {profile: `{"role":"admin"}`, role: "customer", exp: false},
		"passed role keeps badges":     {profile: `{"badges":["admin"]}`, role: "customer", exp: true},
		"no profile":                   {profile: ``, exp: false},
		"no profile with admin role":   {profile: ``, role: "admin", exp: true},
		"empty list":                   {profile: `{"badges":[]}`, exp: false},
		"comma string with empty part": {profile: `{"badges":",admin,"}`, exp: true},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			var profile *session.Profile
			if test.profile != "" {
				profile = new(session.Profile)
				err := json.Unmarshal([]byte(test.profile), profile)
				require.Nil(t, err)
			}

			assert.Equal(t, test.exp, HasAdminBadge(profile, test.role))
		})
	}
}

// --- helpers ---

func newSource(p Provider) *source {
	return &source{ready: make(chan struct{}), provider: p}
}

// source is a ProviderSource whose Provider becomes available on resolve.
type source struct {
	once     sync.Once
	ready    chan struct{}
	provider Provider
}

func (s *source) resolve() {
	s.once.Do(func() { close(s.ready) })
}

func (s *source) Client() (Provider, bool) {
	select {
	case <-s.ready:
		return s.provider, true
	default:
		return nil, false
	}
}

func (s *source) AwaitClient(ctx context.Context) (Provider, error) {
	select {
	case <-s.ready:
		return s.provider, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newCache() *cache { return &cache{} }

type cache struct {
	mutex sync.Mutex
	role  session.Role
	set   bool
}

func (c *cache) Get(context.Context) (session.Role, bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.role, c.set, nil
}

func (c *cache) Set(_ context.Context, role session.Role) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.role, c.set = role, true
	return nil
}

func (c *cache) Clear(context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.role, c.set = "", false
	return nil
}

type navigator struct {
	mutex   sync.Mutex
	path    string
	visited []string
}

func (n *navigator) Navigate(path string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.visited = append(n.visited, path)
	n.path = path
}

func (n *navigator) Path() string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.path
}

func (n *navigator) Visited() []string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return append([]string(nil), n.visited...)
}
