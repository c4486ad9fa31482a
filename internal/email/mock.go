package email

import (
	"context"
	"sync"
)

func NewMock(options ...MockOption) *Mock {
	m := &Mock{
		mutex:     new(sync.RWMutex),
		loginPINs: make(map[string]LoginPIN),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

type MockOption func(*Mock)

// WithSendError configures the Mock to fail every send with err.
func WithSendError(err error) MockOption {
	return func(m *Mock) { m.err = err }
}

// LoginPIN is a login PIN email sent through the Mock.
type LoginPIN struct {
	Token   string
	Subject string
}

type Mock struct {
	mutex     *sync.RWMutex
	loginPINs map[string]LoginPIN
	err       error
}

func (m *Mock) SendLoginPIN(ctx context.Context, to, token, subject string) error {
	if m.err != nil {
		return m.err
	}
	if subject == "" {
		subject = DefaultLoginPINSubject
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.loginPINs[to] = LoginPIN{Token: token, Subject: subject}
	return nil
}

// LoginPIN retrieves the last login PIN email sent to "to".
func (m *Mock) LoginPIN(to string) (LoginPIN, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	pin, ok := m.loginPINs[to]
	return pin, ok
}
