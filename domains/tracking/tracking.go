package tracking

import (
	"context"
	"time"
)

// Event is one entry pushed to the externally-owned ordered event queue.
// No acknowledgment is expected.
type Event struct {
	ID           string         `json:"id"`
	Event        string         `json:"event"`
	WidgetAction string         `json:"widget_action"`
	Timestamp    time.Time      `json:"timestamp"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// IEventQueue is the raw ordered queue boundary. Implementations: the
// in-memory ring in usecase and the valkey list in infrastructure/valkey.
type IEventQueue interface {
	Push(ctx context.Context, payload []byte) error
	Recent(ctx context.Context, limit int) ([][]byte, error)
}

type ITrackingUsecase interface {
	Push(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}
