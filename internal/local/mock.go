package local

import (
	"context"
	"sync"
)

// NewMock creates a new Mock instance.
func NewMock() *Mock {
	return &Mock{
		mutex: new(sync.Mutex),
		items: make(map[string]map[string]string),
	}
}

// Mock is an in-memory Storage provider.
type Mock struct {
	mutex *sync.Mutex
	items map[string]map[string]string
}

// Storage retrieves the Storage of the browser identified by browserID.
func (m *Mock) Storage(browserID string) Storage {
	return mockStorage{mock: m, browserID: browserID}
}

type mockStorage struct {
	mock      *Mock
	browserID string
}

func (s mockStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mock.mutex.Lock()
	defer s.mock.mutex.Unlock()

	value, ok := s.mock.items[s.browserID][key]
	return value, ok, nil
}

func (s mockStorage) SetItem(_ context.Context, key, value string) error {
	s.mock.mutex.Lock()
	defer s.mock.mutex.Unlock()

	if _, ok := s.mock.items[s.browserID]; !ok {
		s.mock.items[s.browserID] = make(map[string]string)
	}
	s.mock.items[s.browserID][key] = value
	return nil
}

func (s mockStorage) RemoveItem(_ context.Context, key string) error {
	s.mock.mutex.Lock()
	defer s.mock.mutex.Unlock()

	delete(s.mock.items[s.browserID], key)
	return nil
}
