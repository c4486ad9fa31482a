package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banjito/ampcalibration/internal/auth"
	"github.com/banjito/ampcalibration/internal/email"
	"github.com/banjito/ampcalibration/internal/healthz"
	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/menu"
	"github.com/banjito/ampcalibration/internal/page"
	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/provider/providertest"
	"github.com/banjito/ampcalibration/internal/retry"
	"github.com/banjito/ampcalibration/internal/session"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const hookSecret = "hook-secret"

var documents = []string{"index.html", "contact.html", "login.html", "verify.html", "dashboard.html"}

// suite is a dashboard API backed by an in-memory provider, session store,
// and local storage, and a client with its own browser identity.
type suite struct {
	t        *testing.T
	provider *providertest.Server
	handle   *provider.Handle
	sessions *session.Mock
	emailer  *email.Mock
	server   *httptest.Server
	client   *http.Client
}

type suiteOption func(*suiteConfig)

type suiteConfig struct {
	bootstrap bool
	emailer   *email.Mock
	sessions  page.SessionStores
	secret    string
}

// withoutProvider leaves the provider client unbootstrapped.
func withoutProvider() suiteOption {
	return func(c *suiteConfig) { c.bootstrap = false }
}

// withSessions replaces the in-memory session stores.
func withSessions(sessions page.SessionStores) suiteOption {
	return func(c *suiteConfig) { c.sessions = sessions }
}

func withHookSecret(secret string) suiteOption {
	return func(c *suiteConfig) { c.secret = secret }
}

func withEmailer(emailer *email.Mock) suiteOption {
	return func(c *suiteConfig) { c.emailer = emailer }
}

func newSuite(t *testing.T, options ...suiteOption) *suite {
	sessions := session.NewMock()
	cfg := suiteConfig{bootstrap: true, emailer: email.NewMock(), sessions: sessions, secret: hookSecret}
	for _, option := range options {
		option(&cfg)
	}

	static := t.TempDir()
	for _, name := range documents {
		err := os.WriteFile(filepath.Join(static, name), []byte(name), 0o600)
		require.Nil(t, err)
	}
	err := os.WriteFile(filepath.Join(static, "app.css"), []byte("body{}"), 0o600)
	require.Nil(t, err)

	server := providertest.NewServer()
	t.Cleanup(server.Close)

	handle := provider.NewHandle()
	if cfg.bootstrap {
		handle.Resolve(provider.NewClient(
			zap.NewNop(),
			provider.Config{URL: server.URL, AnonKey: providertest.AnonKey},
		))
	}

	health := healthz.NewHTTP(handle)
	health.Healthy()

	policy := retry.Policy{Attempts: 2, Delay: 10 * time.Millisecond}
	api := NewAPI(
		zap.NewNop(),
		page.NewFactory(handle, cfg.sessions, local.NewMock()),
		menu.New(menu.Links{AmpcalOS: "https://ampcalos.test", Vault: "https://vault.test"}),
		cfg.emailer,
		health,
		Options{
			StaticDir:      static,
			AllowedOrigins: []string{"https://ampcalibration.test"},
			HookSecret:     cfg.secret,
			Auth:           auth.Options{WaitForClient: true, Client: policy, Session: policy},
		},
	)

	srv := httptest.NewServer(api.Mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.Nil(t, err)

	return &suite{
		t:        t,
		provider: server,
		handle:   handle,
		sessions: sessions,
		emailer:  cfg.emailer,
		server:   srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// signIn creates a user with the passed role and signs the suite's browser in
// as them.
func (s *suite) signIn(email string, role session.Role) {
	id := s.provider.AddUser(email, "123456")
	s.provider.SetProfile(id, `{"id":"`+id.String()+`","role":"`+string(role)+`","badges":null}`)

	resp := s.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": email, "pin": "123456"})
	defer resp.Body.Close()
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
}

// browserID retrieves the browser identity the server assigned the suite's
// client.
func (s *suite) browserID() string {
	u, err := url.Parse(s.server.URL)
	require.Nil(s.t, err)
	for _, cookie := range s.client.Jar.Cookies(u) {
		if cookie.Name == "_ampcal-browser" {
			return cookie.Value
		}
	}
	s.t.Fatal("browser cookie not set")
	return ""
}

// do sends a request with body encoded as JSON.
func (s *suite) do(method, path string, body interface{}) *http.Response {
	return s.doWithHeader(method, path, body, nil)
}

// doWithHeader sends a request with body encoded as JSON and the passed
// headers.
func (s *suite) doWithHeader(method, path string, body interface{}, header http.Header) *http.Response {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.Nil(s.t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.server.URL+path, r)
	require.Nil(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := s.client.Do(req)
	require.Nil(s.t, err)
	return resp
}

type formFile struct {
	field       string
	name        string
	contentType string
	body        []byte
}

// upload sends a multipart form.
func (s *suite) upload(method, path string, fields map[string]string, files ...formFile) *http.Response {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.Nil(s.t, mw.WriteField(key, value))
	}
	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.name+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		require.Nil(s.t, err)
		_, err = part.Write(file.body)
		require.Nil(s.t, err)
	}
	require.Nil(s.t, mw.Close())

	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	require.Nil(s.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	require.Nil(s.t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, i interface{}) {
	defer resp.Body.Close()
	require.Nil(t, json.NewDecoder(resp.Body).Decode(i))
}

func text(t *testing.T, resp *http.Response) string {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.Nil(t, err)
	return string(b)
}
