package session

import (
	"context"
	"sort"
	"sync"
)

// NewMock creates a new Mock instance.
func NewMock() *Mock {
	return &Mock{
		mutex:     new(sync.Mutex),
		sessions:  make(map[string]Session),
		listeners: make(map[string]map[int]Listener),
	}
}

// Mock is an in-memory Store provider, typically used for testing and local
// development without Redis.
type Mock struct {
	mutex     *sync.Mutex
	sessions  map[string]Session
	listeners map[string]map[int]Listener
	next      int
}

// Store retrieves the Store of the browser identified by browserID.
func (m *Mock) Store(browserID string) Store {
	return mockStore{mock: m, browserID: browserID}
}

// Put sets the browser's session without notifying listeners.
func (m *Mock) Put(browserID string, sess Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[browserID] = sess
}

// Watching checks if any Listener is registered for the browser.
func (m *Mock) Watching(browserID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.listeners[browserID]) > 0
}

type mockStore struct {
	mock      *Mock
	browserID string
}

func (s mockStore) Load(_ context.Context) (*Session, error) {
	s.mock.mutex.Lock()
	defer s.mock.mutex.Unlock()

	sess, ok := s.mock.sessions[s.browserID]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s mockStore) Save(ctx context.Context, sess Session) error {
	return s.store(ctx, SignedIn, sess)
}

func (s mockStore) Refresh(ctx context.Context, sess Session) error {
	return s.store(ctx, TokenRefreshed, sess)
}

func (s mockStore) store(_ context.Context, event Event, sess Session) error {
	s.mock.mutex.Lock()
	s.mock.sessions[s.browserID] = sess
	listeners := s.mock.snapshot(s.browserID)
	s.mock.mutex.Unlock()

	for _, fn := range listeners {
		fn(event, &sess)
	}
	return nil
}

func (s mockStore) Delete(_ context.Context) error {
	s.mock.mutex.Lock()
	delete(s.mock.sessions, s.browserID)
	listeners := s.mock.snapshot(s.browserID)
	s.mock.mutex.Unlock()

	for _, fn := range listeners {
		fn(SignedOut, nil)
	}
	return nil
}

func (s mockStore) Watch(_ context.Context, fn Listener) (func(), error) {
	s.mock.mutex.Lock()
	defer s.mock.mutex.Unlock()

	if _, ok := s.mock.listeners[s.browserID]; !ok {
		s.mock.listeners[s.browserID] = make(map[int]Listener)
	}
	id := s.mock.next
	s.mock.next++
	s.mock.listeners[s.browserID][id] = fn

	return func() {
		s.mock.mutex.Lock()
		defer s.mock.mutex.Unlock()
		delete(s.mock.listeners[s.browserID], id)
	}, nil
}

// snapshot must be called with the mutex held.
func (m *Mock) snapshot(browserID string) []Listener {
	ids := make([]int, 0, len(m.listeners[browserID]))
	for id := range m.listeners[browserID] {
		ids = append(ids, id)
	}
	// registration order
	sort.Ints(ids)

	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, m.listeners[browserID][id])
	}
	return listeners
}
