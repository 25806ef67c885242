package valkey

import (
	"context"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

// SessionStore implements security.SessionStore on top of valkey, so the
// admin anti-forgery state survives restarts and is shared across
// replicas.
type SessionStore struct {
	client *Client
}

func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	resp := s.client.inner.Do(ctx, s.client.inner.B().Get().Key(s.client.key(key)).Build())
	if err := resp.Error(); err != nil {
		if valkeylib.IsValkeyNil(err) {
			return "", nil
		}
		return "", err
	}
	return resp.ToString()
}

func (s *SessionStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	b := s.client.inner.B().Set().Key(s.client.key(key)).Value(value)
	if ttl > 0 {
		return s.client.inner.Do(ctx, b.Ex(ttl).Build()).Error()
	}
	return s.client.inner.Do(ctx, b.Build()).Error()
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	return s.client.inner.Do(ctx, s.client.inner.B().Del().Key(s.client.key(key)).Build()).Error()
}
