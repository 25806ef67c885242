package valkey

import (
	"context"
)

const eventListKey = "tracking_events"

// EventQueue implements tracking.IEventQueue as a valkey list. RPUSH keeps
// the queue ordered; the list is capped so an unread queue cannot grow
// forever.
type EventQueue struct {
	client  *Client
	maxSize int64
}

func NewEventQueue(client *Client, maxSize int) *EventQueue {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &EventQueue{client: client, maxSize: int64(maxSize)}
}

func (q *EventQueue) Push(ctx context.Context, payload []byte) error {
	inner := q.client.inner
	key := q.client.key(eventListKey)

	if err := inner.Do(ctx, inner.B().Rpush().Key(key).Element(string(payload)).Build()).Error(); err != nil {
		return err
	}
	return inner.Do(ctx, inner.B().Ltrim().Key(key).Start(-q.maxSize).Stop(-1).Build()).Error()
}

func (q *EventQueue) Recent(ctx context.Context, limit int) ([][]byte, error) {
	inner := q.client.inner
	key := q.client.key(eventListKey)

	resp := inner.Do(ctx, inner.B().Lrange().Key(key).Start(int64(-limit)).Stop(-1).Build())
	values, err := resp.AsStrSlice()
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(values))
	for _, v := range values {
		out = append(out, []byte(v))
	}
	return out, nil
}
