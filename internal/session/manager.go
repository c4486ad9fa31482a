package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

type Event string

const (
	SignedIn  Event = "SIGNED_IN"
	SignedOut Event = "SIGNED_OUT"

	// TokenRefreshed is published when an expired session is replaced by a
	// refreshed one of the same sign-in.
	TokenRefreshed Event = "TOKEN_REFRESHED"
)

// Listener is called for each session transition of a browser. sess is nil
// for SignedOut.
type Listener func(event Event, sess *Session)

// Store persists the provider session of a single browser, the way the
// provider's client library persists it in browser storage. Save, Refresh,
// and Delete notify Listeners registered with Watch, in order.
type Store interface {
	Load(context.Context) (*Session, error)
	Save(context.Context, Session) error
	Refresh(context.Context, Session) error
	Delete(context.Context) error
	Watch(context.Context, Listener) (func(), error)
}

func NewManager(logger *zap.Logger, redis *redis.Client, exp time.Duration) *Manager {
	return &Manager{
		logger: logger,
		redis:  redis,
		exp:    exp,
	}
}

// Manager manages browser sessions in Redis. Session transitions are fanned
// out over Redis pub/sub so that every tab and every dashboard instance
// holding the same browser observes them.
type Manager struct {
	logger *zap.Logger
	redis  *redis.Client
	exp    time.Duration
}

// Store retrieves the Store of the browser identified by browserID.
func (m Manager) Store(browserID string) Store {
	return redisStore{manager: m, browserID: browserID}
}

type redisStore struct {
	manager   Manager
	browserID string
}

type message struct {
	Event   Event
	Session *Session
}

// Load gets the browser's Session. If the browser has no session, nil is
// returned for both values.
func (s redisStore) Load(ctx context.Context) (*Session, error) {
	res, err := s.manager.redis.Get(ctx, keygen(sessionPrefix, s.browserID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session; error: %w", err)
	}

	var sess Session
	if err := decode([]byte(res), &sess); err != nil {
		return nil, fmt.Errorf("decode session; error: %w", err)
	}
	return &sess, nil
}

// Save stores sess as the browser's Session and publishes SignedIn.
func (s redisStore) Save(ctx context.Context, sess Session) error {
	return s.store(ctx, SignedIn, sess)
}

// Refresh stores sess as the browser's Session and publishes TokenRefreshed.
func (s redisStore) Refresh(ctx context.Context, sess Session) error {
	return s.store(ctx, TokenRefreshed, sess)
}

func (s redisStore) store(ctx context.Context, event Event, sess Session) error {
	b, err := encode(sess)
	if err != nil {
		return fmt.Errorf("encode session; error: %w", err)
	}

	if err := s.manager.redis.Set(
		ctx,
		keygen(sessionPrefix, s.browserID),
		b,
		s.manager.exp,
	).Err(); err != nil {
		return fmt.Errorf("save session; error: %w", err)
	}

	return s.publish(ctx, message{Event: event, Session: &sess})
}

// Delete removes the browser's Session and publishes SignedOut. Deleting a
// session that does not exist still publishes SignedOut.
func (s redisStore) Delete(ctx context.Context) error {
	if err := s.manager.redis.Del(ctx, keygen(sessionPrefix, s.browserID)).Err(); err != nil {
		return fmt.Errorf("delete session; error: %w", err)
	}

	return s.publish(ctx, message{Event: SignedOut})
}

// Watch subscribes fn to the browser's session transitions. The returned
// function unsubscribes. Watch returns once the subscription is confirmed so
// no transition published after Watch returns is missed.
func (s redisStore) Watch(ctx context.Context, fn Listener) (func(), error) {
	pubsub := s.manager.redis.Subscribe(ctx, keygen(eventsPrefix, s.browserID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe session events; error: %w", err)
	}

	logger := s.manager.logger.With(zap.String("browser-id", s.browserID))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			var m message
			if err := decode([]byte(msg.Payload), &m); err != nil {
				logger.Error("decode session event", zap.Error(err))
				continue
			}
			fn(m.Event, m.Session)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			logger.Warn("close session events", zap.Error(err))
		}
		<-done
	}, nil
}

func (s redisStore) publish(ctx context.Context, m message) error {
	b, err := encode(m)
	if err != nil {
		return fmt.Errorf("encode session event; error: %w", err)
	}
	if err := s.manager.redis.Publish(ctx, keygen(eventsPrefix, s.browserID), b).Err(); err != nil {
		return fmt.Errorf("publish session event; error: %w", err)
	}
	return nil
}

// --- helpers ---

const (
	sessionPrefix = "ampcal-session-"
	eventsPrefix  = "ampcal-session-events-"
)

func keygen(prefix, id string) string {
	return fmt.Sprintf("%s%s", prefix, id)
}

func encode(obj interface{}) ([]byte, error) {
	return msgpack.Marshal(obj)
}

func decode(b []byte, obj interface{}) error {
	return msgpack.Unmarshal(b, obj)
}
