// Package page holds the state a dashboard page works with for a single
// browser: the provider client acting for the browser, the browser's session
// and local storage, and its role cache. A Context is created when a request
// arrives and torn down when the request completes; nothing about a page
// outlives it except what the browser's storage holds.
package page

import (
	"context"
	"sync"

	"github.com/banjito/ampcalibration/internal/auth"
	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/session"
)

// SessionStores provides the session.Store of a browser.
type SessionStores interface {
	Store(browserID string) session.Store
}

// LocalStores provides the local.Storage of a browser.
type LocalStores interface {
	Storage(browserID string) local.Storage
}

// NewFactory creates a new Factory instance.
func NewFactory(handle *provider.Handle, sessions SessionStores, storage LocalStores) *Factory {
	return &Factory{
		handle:   handle,
		sessions: sessions,
		storage:  storage,
	}
}

// Factory creates page Contexts.
type Factory struct {
	handle   *provider.Handle
	sessions SessionStores
	storage  LocalStores
}

// New creates the Context of a page rendered for the browser identified by
// browserID. Teardown must be called once the page is done with.
func (f Factory) New(browserID string) *Context {
	storage := f.storage.Storage(browserID)
	return &Context{
		browserID: browserID,
		handle:    f.handle,
		sessions:  f.sessions.Store(browserID),
		storage:   storage,
		roles:     Roles{storage: storage},
	}
}

// Context is the state of a page rendered for a single browser.
type Context struct {
	browserID string
	handle    *provider.Handle
	sessions  session.Store
	storage   local.Storage
	roles     Roles

	mutex    sync.Mutex
	teardown []func()
	closed   bool
}

// BrowserID is the opaque id of the browser the Context serves.
func (c *Context) BrowserID() string { return c.browserID }

// Storage is the browser's local storage.
func (c *Context) Storage() local.Storage { return c.storage }

// Roles is the browser's role cache.
func (c *Context) Roles() Roles { return c.roles }

// Browser retrieves the provider client acting for the browser without
// blocking. The second return value is false if the provider client has not
// been bootstrapped.
func (c *Context) Browser() (*provider.Browser, bool) {
	client, ok := c.handle.Client()
	if !ok {
		return nil, false
	}
	return client.Browser(c.sessions), true
}

// Client implements auth.ProviderSource.
func (c *Context) Client() (auth.Provider, bool) {
	browser, ok := c.Browser()
	if !ok {
		return nil, false
	}
	return browser, true
}

// AwaitClient implements auth.ProviderSource.
func (c *Context) AwaitClient(ctx context.Context) (auth.Provider, error) {
	client, err := c.handle.Await(ctx)
	if err != nil {
		return nil, err
	}
	return client.Browser(c.sessions), nil
}

// OnTeardown registers fn to be called when the Context is torn down. If the
// Context has already been torn down fn is called immediately.
func (c *Context) OnTeardown(fn func()) {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		fn()
		return
	}
	c.teardown = append(c.teardown, fn)
	c.mutex.Unlock()
}

// Teardown calls the registered teardown functions in reverse order of
// registration. Subsequent calls do nothing.
func (c *Context) Teardown() {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	teardown := c.teardown
	c.teardown = nil
	c.mutex.Unlock()

	for i := len(teardown) - 1; i >= 0; i-- {
		teardown[i]()
	}
}

type ctxKey struct{}

// WithContext stores c in ctx.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext retrieves the Context stored in ctx. If there is none, nil is
// returned.
func FromContext(ctx context.Context) *Context {
	c, ok := ctx.Value(ctxKey{}).(*Context)
	if !ok {
		return nil
	}
	return c
}
