package provider

import (
	"context"
	"sync"
)

// NewHandle creates a new, unresolved Handle.
func NewHandle() *Handle {
	return &Handle{ready: make(chan struct{})}
}

// Handle is the future through which the bootstrapped Client is published.
// It is resolved exactly once; consumers either check it or await it.
type Handle struct {
	once   sync.Once
	ready  chan struct{}
	client *Client
}

// Resolve publishes client. Only the first call has an effect; it reports
// whether this call resolved the Handle.
func (h *Handle) Resolve(client *Client) bool {
	resolved := false
	h.once.Do(func() {
		h.client = client
		close(h.ready)
		resolved = true
	})
	return resolved
}

// Client retrieves the Client without blocking. The second return value is
// false if the Handle has not been resolved.
func (h *Handle) Client() (*Client, bool) {
	select {
	case <-h.ready:
		return h.client, true
	default:
		return nil, false
	}
}

// Await blocks until the Handle is resolved or ctx is done.
func (h *Handle) Await(ctx context.Context) (*Client, error) {
	select {
	case <-h.ready:
		return h.client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready checks if the Handle has been resolved.
func (h *Handle) Ready() bool {
	_, ok := h.Client()
	return ok
}
