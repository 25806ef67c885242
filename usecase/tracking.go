package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	domainTracking "github.com/AzielCF/az-widget/domains/tracking"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type trackingService struct {
	queue domainTracking.IEventQueue
}

// NewTrackingService returns the tracking usecase over any ordered queue
// implementation.
func NewTrackingService(queue domainTracking.IEventQueue) domainTracking.ITrackingUsecase {
	return &trackingService{queue: queue}
}

func (s *trackingService) Push(ctx context.Context, event domainTracking.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.queue.Push(ctx, payload); err != nil {
		// Fire-and-forget contract: the click never fails on tracking.
		logrus.WithError(err).Warn("[TRACKING] failed to push event")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"event":  event.Event,
		"action": event.WidgetAction,
	}).Debug("[TRACKING] event pushed")
	return nil
}

func (s *trackingService) Recent(ctx context.Context, limit int) ([]domainTracking.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	payloads, err := s.queue.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	events := make([]domainTracking.Event, 0, len(payloads))
	for _, raw := range payloads {
		var event domainTracking.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// MemoryEventQueue is the default in-process ordered queue, a bounded ring
// over the most recent events.
type MemoryEventQueue struct {
	mu       sync.Mutex
	payloads [][]byte
	maxSize  int
}

func NewMemoryEventQueue(maxSize int) *MemoryEventQueue {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryEventQueue{maxSize: maxSize}
}

func (q *MemoryEventQueue) Push(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.payloads = append(q.payloads, payload)
	if len(q.payloads) > q.maxSize {
		q.payloads = q.payloads[len(q.payloads)-q.maxSize:]
	}
	return nil
}

func (q *MemoryEventQueue) Recent(_ context.Context, limit int) ([][]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	start := len(q.payloads) - limit
	if start < 0 {
		start = 0
	}

	out := make([][]byte, len(q.payloads)-start)
	copy(out, q.payloads[start:])
	return out, nil
}
