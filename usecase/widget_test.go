package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	globalConfig "github.com/AzielCF/az-widget/config"
	settingsApp "github.com/AzielCF/az-widget/core/settings/application"
	"github.com/AzielCF/az-widget/domains/widget"
)

// memSettingsRepo is an in-memory settings repository for usecase tests.
type memSettingsRepo struct {
	values map[string]string
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{values: map[string]string{}}
}

func (r *memSettingsRepo) Get(_ context.Context, key string) (string, error) {
	return r.values[key], nil
}

func (r *memSettingsRepo) Set(_ context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

func (r *memSettingsRepo) Delete(_ context.Context, key string) error {
	delete(r.values, key)
	return nil
}

func (r *memSettingsRepo) InitSchema(_ context.Context) error { return nil }

// enabledConfig is a widget that displays everywhere with no gates.
func enabledConfig() widget.WidgetConfig {
	return widget.WidgetConfig{
		Enabled:                true,
		Phone:                  "+905551112233",
		DefaultMessageTemplate: "Hello from {shop_name}! Page: {page_url}",
		ProductMessageTemplate: "I want {product_name} for {price}: {product_url}",
		VisiblePageTypes:       []string{"home", "category", "product"},
		VisibleDeviceTypes:     []string{"desktop", "mobile"},
		Position:               widget.PositionBottomRight,
		ThemeColor:             "#25D366",
		ButtonSize:             "md",
		BorderRadius:           "lg",
		WorkingHours:           settingsApp.BuildWorkingHours(false, "UTC", nil, "09:00", "18:00"),
		OfflineMessageTemplate: "We are offline.",
		TrackingEventName:      "whatsapp_click",
	}
}

func newTestWidgetService(t *testing.T, cfg widget.WidgetConfig, now time.Time) (*widgetService, *MemoryEventQueue) {
	t.Helper()

	settings := settingsApp.NewServiceWithRepository(newMemSettingsRepo())
	if err := settings.Save(context.Background(), cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	queue := NewMemoryEventQueue(100)
	svc, ok := NewWidgetService(settings, NewTrackingService(queue)).(*widgetService)
	if !ok {
		t.Fatal("NewWidgetService did not return *widgetService")
	}
	svc.now = func() time.Time { return now }
	return svc, queue
}

func mobileHint() widget.DeviceHint {
	return widget.DeviceHint{UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS)", ViewportWidth: 390, TouchCapable: true}
}

func desktopHint() widget.DeviceHint {
	return widget.DeviceHint{UserAgent: "Mozilla/5.0 (X11; Linux x86_64)", ViewportWidth: 1920}
}

// wednesdayAt is an arbitrary fixed weekday clock, UTC.
func wednesdayAt(hour, minute int) time.Time {
	return time.Date(2026, time.January, 7, hour, minute, 0, 0, time.UTC)
}

func TestShouldDisplayGate(t *testing.T) {
	base := enabledConfig()

	hoursOn := base
	hoursOn.WorkingHours = settingsApp.BuildWorkingHours(true, "UTC", []string{"wednesday"}, "09:00", "18:00")

	consentOn := base
	consentOn.ConsentRequired = true
	consentOn.ConsentCookieNames = []string{"consent"}

	noPhone := base
	noPhone.Phone = ""

	disabled := base
	disabled.Enabled = false

	tests := []struct {
		name    string
		cfg     widget.WidgetConfig
		input   widget.DecisionInput
		display bool
	}{
		{
			"all gates pass",
			base,
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageHome},
				Device: widget.DeviceMobile,
				Now:    wednesdayAt(12, 0),
			},
			true,
		},
		{
			"disabled widget",
			disabled,
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageHome},
				Device: widget.DeviceMobile,
				Now:    wednesdayAt(12, 0),
			},
			false,
		},
		{
			"missing phone",
			noPhone,
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageHome},
				Device: widget.DeviceMobile,
				Now:    wednesdayAt(12, 0),
			},
			false,
		},
		{
			"page not allowed",
			base,
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageCheckout},
				Device: widget.DeviceMobile,
				Now:    wednesdayAt(12, 0),
			},
			false,
		},
		{
			"device not allowed",
			func() widget.WidgetConfig {
				cfg := base
				cfg.VisibleDeviceTypes = []string{"mobile"}
				return cfg
			}(),
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageHome},
				Device: widget.DeviceDesktop,
				Now:    wednesdayAt(12, 0),
			},
			false,
		},
		{
			"inside working hours",
			hoursOn,
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageHome},
				Device: widget.DeviceMobile,
				Now:    wednesdayAt(12, 0),
			},
			true,
		},
		{
			"outside working hours",
			hoursOn,
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageHome},
				Device: widget.DeviceMobile,
				Now:    wednesdayAt(20, 0),
			},
			false,
		},
		{
			"consent required and missing",
			consentOn,
			widget.DecisionInput{
				Page:   widget.PageContext{PageType: widget.PageHome},
				Device: widget.DeviceMobile,
				Now:    wednesdayAt(12, 0),
			},
			false,
		},
		{
			"consent granted via cookie",
			consentOn,
			widget.DecisionInput{
				Page:    widget.PageContext{PageType: widget.PageHome},
				Device:  widget.DeviceMobile,
				Now:     wednesdayAt(12, 0),
				Consent: widget.ConsentState{Cookies: map[string]string{"consent": "true"}},
			},
			true,
		},
		{
			"consent granted via local store",
			consentOn,
			widget.DecisionInput{
				Page:    widget.PageContext{PageType: widget.PageHome},
				Device:  widget.DeviceMobile,
				Now:     wednesdayAt(12, 0),
				Consent: widget.ConsentState{LocalStore: map[string]string{"consent": "1"}},
			},
			true,
		},
		{
			"consent value not truthy",
			consentOn,
			widget.DecisionInput{
				Page:    widget.PageContext{PageType: widget.PageHome},
				Device:  widget.DeviceMobile,
				Now:     wednesdayAt(12, 0),
				Consent: widget.ConsentState{Cookies: map[string]string{"consent": "yes"}},
			},
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldDisplay(tc.cfg, tc.input); got != tc.display {
				t.Fatalf("ShouldDisplay = %v, want %v", got, tc.display)
			}
		})
	}
}

// The pre-render gate and the click sequence must agree: whatever the gate
// hides, the click aborts, and whatever passes the gate yields a link.
func TestGateAndClickAgree(t *testing.T) {
	now := wednesdayAt(12, 0)

	hoursOn := enabledConfig()
	hoursOn.WorkingHours = settingsApp.BuildWorkingHours(true, "UTC", []string{"monday"}, "09:00", "18:00")

	consentOn := enabledConfig()
	consentOn.ConsentRequired = true
	consentOn.ConsentCookieNames = []string{"consent"}

	disabled := enabledConfig()
	disabled.Enabled = false

	tests := []struct {
		name       string
		cfg        widget.WidgetConfig
		wantStatus string
	}{
		{"visible widget yields link", enabledConfig(), widget.ClickStatusOK},
		{"disabled widget stays hidden", disabled, widget.ClickStatusHidden},
		{"closed schedule goes offline", hoursOn, widget.ClickStatusOffline},
		{"missing consent blocks", consentOn, widget.ClickStatusConsentRequired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestWidgetService(t, tc.cfg, now)
			ctx := context.Background()

			page := widget.PageContext{PageType: widget.PageHome, URL: "https://shop.example/"}
			device := mobileHint()

			display, err := svc.ShouldDisplay(ctx, page, device, widget.ConsentState{})
			if err != nil {
				t.Fatalf("ShouldDisplay: %v", err)
			}

			response, err := svc.Click(ctx, widget.ClickRequest{Page: page, Device: device})
			if err != nil {
				t.Fatalf("Click: %v", err)
			}

			if response.Status != tc.wantStatus {
				t.Fatalf("status = %q, want %q", response.Status, tc.wantStatus)
			}
			if display != (response.Status == widget.ClickStatusOK) {
				t.Fatalf("gate (%v) and click (%q) disagree", display, response.Status)
			}
			if response.Status == widget.ClickStatusOK && response.TargetURL == "" {
				t.Fatal("visible click must carry a target URL")
			}
			if response.Status != widget.ClickStatusOK && response.TargetURL != "" {
				t.Fatal("aborted click must not carry a target URL")
			}
		})
	}
}

func TestBuildTargetURL(t *testing.T) {
	message := "Hello world"

	t.Run("mobile gets universal link", func(t *testing.T) {
		got := BuildTargetURL("+905551112233", message, mobileHint(), false)
		if !strings.HasPrefix(got, "https://wa.me/905551112233?text=Hello%20world") {
			t.Fatalf("got %q", got)
		}
		if !strings.Contains(got, "utm_source=whatsappwidget&utm_medium=chat&utm_campaign=contact") {
			t.Fatalf("missing utm params: %q", got)
		}
	})

	t.Run("confident desktop gets web client", func(t *testing.T) {
		got := BuildTargetURL("+905551112233", message, desktopHint(), false)
		if !strings.HasPrefix(got, "https://web.whatsapp.com/send?phone=905551112233&text=Hello%20world") {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("force overrides desktop", func(t *testing.T) {
		got := BuildTargetURL("+905551112233", message, desktopHint(), true)
		if !strings.HasPrefix(got, "https://wa.me/905551112233") {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("ambiguous device resolves to universal link", func(t *testing.T) {
		ambiguous := widget.DeviceHint{UserAgent: "Mozilla/5.0 (X11; Linux x86_64)", ViewportWidth: 1920, TouchCapable: false, TouchPoints: 5}
		got := BuildTargetURL("+905551112233", message, ambiguous, false)
		if !strings.HasPrefix(got, "https://wa.me/") {
			t.Fatalf("got %q", got)
		}
	})
}

func TestClickRendersProductMessage(t *testing.T) {
	origShopName := globalConfig.ShopName
	t.Cleanup(func() { globalConfig.ShopName = origShopName })
	globalConfig.ShopName = "My Store"

	cfg := enabledConfig()
	cfg.TrackingEnabled = true
	svc, queue := newTestWidgetService(t, cfg, wednesdayAt(12, 0))

	response, err := svc.Click(context.Background(), widget.ClickRequest{
		Page: widget.PageContext{
			PageType: widget.PageProduct,
			URL:      "https://shop.example/p/42",
			Product: &widget.ProductSnapshot{
				Name:      "Blue Mug",
				Reference: "MUG-01",
				Price:     "129,90 TL",
				URL:       "https://shop.example/p/42",
			},
		},
		Device: mobileHint(),
	})
	if err != nil {
		t.Fatalf("Click: %v", err)
	}

	if response.Status != widget.ClickStatusOK {
		t.Fatalf("status = %q", response.Status)
	}
	if response.Message != "I want Blue Mug for 129,90 TL: https://shop.example/p/42" {
		t.Fatalf("message = %q", response.Message)
	}
	if !response.Tracked {
		t.Fatal("tracking-enabled click should record an event")
	}

	events, err := queue.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
}

func TestClickOfflineCarriesNextOpen(t *testing.T) {
	cfg := enabledConfig()
	cfg.WorkingHours = settingsApp.BuildWorkingHours(true, "UTC", []string{"wednesday", "thursday"}, "09:00", "18:00")
	svc, _ := newTestWidgetService(t, cfg, wednesdayAt(20, 0))

	response, err := svc.Click(context.Background(), widget.ClickRequest{
		Page:   widget.PageContext{PageType: widget.PageHome},
		Device: mobileHint(),
	})
	if err != nil {
		t.Fatalf("Click: %v", err)
	}

	if response.Status != widget.ClickStatusOffline {
		t.Fatalf("status = %q", response.Status)
	}
	if response.OfflineMessage != "We are offline." {
		t.Fatalf("offline message = %q", response.OfflineMessage)
	}
	if response.NextOpen != "We'll be available tomorrow from 09:00." {
		t.Fatalf("next open = %q", response.NextOpen)
	}
	if response.Tracked {
		t.Fatal("offline click must not track")
	}
}

func TestRenderBundleHiddenIsNil(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	svc, _ := newTestWidgetService(t, cfg, wednesdayAt(12, 0))

	bundle, err := svc.RenderBundle(context.Background(), widget.PageContext{PageType: widget.PageHome}, mobileHint(), widget.ConsentState{})
	if err != nil {
		t.Fatalf("RenderBundle: %v", err)
	}
	if bundle != nil {
		t.Fatalf("hidden widget must not produce a bundle, got %+v", bundle)
	}
}

func TestRenderBundleFields(t *testing.T) {
	svc, _ := newTestWidgetService(t, enabledConfig(), wednesdayAt(12, 0))

	bundle, err := svc.RenderBundle(context.Background(), widget.PageContext{PageType: widget.PageHome, URL: "https://shop.example/"}, mobileHint(), widget.ConsentState{})
	if err != nil {
		t.Fatalf("RenderBundle: %v", err)
	}
	if bundle == nil {
		t.Fatal("expected a bundle")
	}
	if bundle.Phone != "+905551112233" || bundle.ThemeColor != "#25D366" {
		t.Fatalf("bundle = %+v", bundle)
	}
	if !strings.Contains(bundle.Message, "https://shop.example/") {
		t.Fatalf("message = %q", bundle.Message)
	}
	if len(bundle.WorkingHours) != 7 {
		t.Fatalf("working hours days = %d", len(bundle.WorkingHours))
	}
}

func TestRuntimeConfigDefaultsEventName(t *testing.T) {
	cfg := enabledConfig()
	cfg.TrackingEnabled = true
	cfg.TrackingEventName = ""
	svc, _ := newTestWidgetService(t, cfg, wednesdayAt(12, 0))

	runtime, err := svc.RuntimeConfig(context.Background(), widget.PageContext{PageType: widget.PageHome}, mobileHint(), widget.ConsentState{})
	if err != nil {
		t.Fatalf("RuntimeConfig: %v", err)
	}
	if runtime == nil {
		t.Fatal("expected runtime config")
	}
	if runtime.TrackingEvent != "whatsapp_click" {
		t.Fatalf("event = %q", runtime.TrackingEvent)
	}
}
