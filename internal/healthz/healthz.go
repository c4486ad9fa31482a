// Package healthz provides and API enabling the support of service health
// checks. This is typically used when running in Kubernetes environment to
// manage and signal health status.
package healthz

import (
	"net/http"
	"sync"
)

// Dependency is something the service cannot serve without, e.g. the
// provider client.
type Dependency interface {
	Ready() bool
}

// NewHTTP creates an HTTP instance. The HTTP instance reports sick until
// Healthy is called and every dependency is ready.
func NewHTTP(deps ...Dependency) *HTTP {
	return &HTTP{
		mutex:   new(sync.RWMutex),
		healthy: false,
		deps:    deps,
	}
}

// HTTP provides an HTTP handler to correctly handle HTTP-based health checks.
type HTTP struct {
	mutex *sync.RWMutex
	// healthy indicates if the HTTP health check should report healthy to
	// clients.
	healthy bool
	deps    []Dependency
}

// ServeHTTP implements the http.Handler interface.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if h.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
}

// IsHealthy indicates if the HTTP instance is indicating it is healthy during
// health checks. See Healthy() and Sick() to mutate the health of the HTTP
// instance.
func (h *HTTP) IsHealthy() bool {
	h.mutex.RLock()
	healthy := h.healthy
	h.mutex.RUnlock()

	if !healthy {
		return false
	}
	for _, dep := range h.deps {
		if !dep.Ready() {
			return false
		}
	}
	return true
}

// Healthy mutates the HTTP instance to communicate a status of "healthy" during
// health checks.
func (h *HTTP) Healthy() {
	h.mutex.Lock()
	h.healthy = true
	h.mutex.Unlock()
}

// Sick mutates the HTTP instance to communicate a status of "sick" during
// health checks.
func (h *HTTP) Sick() {
	h.mutex.Lock()
	h.healthy = false
	h.mutex.Unlock()
}
