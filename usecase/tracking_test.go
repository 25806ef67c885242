package usecase

import (
	"context"
	"fmt"
	"testing"

	domainTracking "github.com/AzielCF/az-widget/domains/tracking"
)

func TestTrackingServicePushAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryEventQueue(10)
	service := NewTrackingService(queue)

	err := service.Push(ctx, domainTracking.Event{Event: "whatsapp_click", WidgetAction: "whatsapp_click"})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	events, err := service.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].ID == "" {
		t.Fatal("event ID should be assigned")
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("event timestamp should be assigned")
	}
}

func TestTrackingServiceRecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	service := NewTrackingService(NewMemoryEventQueue(100))

	for i := 0; i < 5; i++ {
		err := service.Push(ctx, domainTracking.Event{Event: fmt.Sprintf("event-%d", i)})
		if err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}

	events, err := service.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	// Most recent three, oldest first.
	for i, want := range []string{"event-2", "event-3", "event-4"} {
		if events[i].Event != want {
			t.Fatalf("events[%d] = %q, want %q", i, events[i].Event, want)
		}
	}
}

func TestMemoryEventQueueBounded(t *testing.T) {
	ctx := context.Background()
	queue := NewMemoryEventQueue(3)

	for i := 0; i < 5; i++ {
		if err := queue.Push(ctx, []byte(fmt.Sprintf("p%d", i))); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}

	payloads, err := queue.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(payloads) != 3 {
		t.Fatalf("payloads = %d, want 3", len(payloads))
	}
	if string(payloads[0]) != "p2" || string(payloads[2]) != "p4" {
		t.Fatalf("unexpected retained payloads: %q %q %q", payloads[0], payloads[1], payloads[2])
	}
}
