package usecase

import (
	"context"
	"time"

	globalConfig "github.com/AzielCF/az-widget/config"
	settingsApp "github.com/AzielCF/az-widget/core/settings/application"
	domainTracking "github.com/AzielCF/az-widget/domains/tracking"
	"github.com/AzielCF/az-widget/domains/widget"
	"github.com/AzielCF/az-widget/pkg/msgtemplate"
	pkgPhone "github.com/AzielCF/az-widget/pkg/phone"
	"github.com/AzielCF/az-widget/pkg/workinghours"
	"github.com/sirupsen/logrus"
)

const (
	universalLinkBase = "https://wa.me/"
	sessionLinkBase   = "https://web.whatsapp.com/send"
	utmParams         = "&utm_source=whatsappwidget&utm_medium=chat&utm_campaign=contact"
)

type widgetService struct {
	settings *settingsApp.Service
	tracking domainTracking.ITrackingUsecase
	now      func() time.Time
}

// NewWidgetService wires the display decision engine over the settings
// store and the tracking queue.
func NewWidgetService(settings *settingsApp.Service, tracking domainTracking.ITrackingUsecase) widget.IWidgetUsecase {
	return &widgetService{
		settings: settings,
		tracking: tracking,
		now:      time.Now,
	}
}

// ShouldDisplay is the single display predicate. The pre-render gate and
// the click gate both go through it, so the two can never drift. Checks
// short-circuit cheapest first; a hidden widget is a silent outcome, not
// an error.
func ShouldDisplay(cfg widget.WidgetConfig, in widget.DecisionInput) bool {
	if !cfg.Enabled {
		return false
	}
	if cfg.Phone == "" {
		return false
	}
	if !contains(cfg.VisiblePageTypes, string(in.Page.PageType)) {
		return false
	}
	if !contains(cfg.VisibleDeviceTypes, string(in.Device)) {
		return false
	}
	if cfg.WorkingHours.Enabled && !workinghours.IsOpen(cfg.WorkingHours, in.Now) {
		return false
	}
	if !HasConsent(cfg, in.Consent) {
		return false
	}
	return true
}

// HasConsent reports whether any configured cookie name is truthy in
// either the cookie store or the durable local store. Consent not
// required, or no names configured, counts as consent.
func HasConsent(cfg widget.WidgetConfig, state widget.ConsentState) bool {
	if !cfg.ConsentRequired {
		return true
	}
	if len(cfg.ConsentCookieNames) == 0 {
		return true
	}
	for _, name := range cfg.ConsentCookieNames {
		if state.Truthy(name) {
			return true
		}
	}
	return false
}

// BuildTargetURL builds the outbound deep link. The universal host is the
// default; only a confident desktop without a forced direct link gets the
// session-bound web host, because that host fails silently for visitors
// without an authenticated browser session.
func BuildTargetURL(phoneNumber, message string, device widget.DeviceHint, forceDirectLink bool) string {
	cleanPhone := pkgPhone.CleanDigits(phoneNumber)
	encoded := msgtemplate.EncodeForURL(message)

	if forceDirectLink || !device.IsConfidentDesktop() {
		return universalLinkBase + cleanPhone + "?text=" + encoded + utmParams
	}
	return sessionLinkBase + "?phone=" + cleanPhone + "&text=" + encoded + utmParams
}

// GenerateMessage renders the template matching the page context. Product
// pages with a snapshot get the product template; everything else falls
// back to the default template with product tokens removed.
func GenerateMessage(cfg widget.WidgetConfig, page widget.PageContext) string {
	values := msgtemplate.TokenValues{
		PageURL:  page.URL,
		ShopName: globalConfig.ShopName,
		Currency: globalConfig.ShopCurrency,
	}

	template := cfg.DefaultMessageTemplate
	if page.PageType == widget.PageProduct && page.Product != nil {
		template = cfg.ProductMessageTemplate
		values.Product = &msgtemplate.ProductValues{
			Name:      page.Product.Name,
			Reference: page.Product.Reference,
			Price:     page.Product.Price,
			URL:       page.Product.URL,
		}
	}

	return msgtemplate.Render(template, values)
}

func (s *widgetService) ShouldDisplay(ctx context.Context, page widget.PageContext, device widget.DeviceHint, consent widget.ConsentState) (bool, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return false, err
	}
	return ShouldDisplay(cfg, widget.DecisionInput{
		Page:    page,
		Device:  device.Type(),
		Now:     s.now(),
		Consent: consent,
	}), nil
}

func (s *widgetService) RenderBundle(ctx context.Context, page widget.PageContext, device widget.DeviceHint, consent widget.ConsentState) (*widget.RenderBundle, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	in := widget.DecisionInput{Page: page, Device: device.Type(), Now: s.now(), Consent: consent}
	if !ShouldDisplay(cfg, in) {
		return nil, nil
	}

	return &widget.RenderBundle{
		Phone:          cfg.Phone,
		Message:        GenerateMessage(cfg, page),
		Position:       cfg.Position,
		ThemeColor:     cfg.ThemeColor,
		ButtonSize:     cfg.ButtonSize,
		BorderRadius:   cfg.BorderRadius,
		DarkMode:       cfg.DarkMode,
		WorkingEnabled: cfg.WorkingHours.Enabled,
		WorkingHours:   cfg.WorkingHours.ByName(),
		OfflineMessage: cfg.OfflineMessageTemplate,
		PageType:       page.PageType,
	}, nil
}

func (s *widgetService) RuntimeConfig(ctx context.Context, page widget.PageContext, device widget.DeviceHint, consent widget.ConsentState) (*widget.RuntimeConfig, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	in := widget.DecisionInput{Page: page, Device: device.Type(), Now: s.now(), Consent: consent}
	if !ShouldDisplay(cfg, in) {
		return nil, nil
	}

	eventName := cfg.TrackingEventName
	if eventName == "" {
		eventName = "whatsapp_click"
	}

	return &widget.RuntimeConfig{
		Phone:              cfg.Phone,
		ForceDirectLink:    cfg.ForceDirectLink,
		TrackingEnabled:    cfg.TrackingEnabled,
		TrackingEvent:      eventName,
		WorkingHoursOn:     cfg.WorkingHours.Enabled,
		WorkingHours:       cfg.WorkingHours.ByName(),
		Timezone:           cfg.WorkingHours.Timezone,
		ConsentRequired:    cfg.ConsentRequired,
		ConsentCookieNames: cfg.ConsentCookieNames,
		PageType:           page.PageType,
		ProductData:        page.Product,
		ShopName:           globalConfig.ShopName,
		Currency:           globalConfig.ShopCurrency,
	}, nil
}

// Click runs the fixed click sequence: consent gate, working hours gate,
// message render, link build, one tracking event. Each abort is a named
// status, never an error.
func (s *widgetService) Click(ctx context.Context, request widget.ClickRequest) (widget.ClickResponse, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return widget.ClickResponse{}, err
	}

	now := s.now()

	// The widget is only delivered when the gate passes, but storage and
	// clock may have changed between page load and click, so the gate
	// components are re-evaluated fresh here.
	if !cfg.Enabled || cfg.Phone == "" ||
		!contains(cfg.VisiblePageTypes, string(request.Page.PageType)) ||
		!contains(cfg.VisibleDeviceTypes, string(request.Device.Type())) {
		return widget.ClickResponse{Status: widget.ClickStatusHidden}, nil
	}

	if !HasConsent(cfg, request.Consent) {
		return widget.ClickResponse{Status: widget.ClickStatusConsentRequired}, nil
	}

	if cfg.WorkingHours.Enabled && !workinghours.IsOpen(cfg.WorkingHours, now) {
		offline := cfg.OfflineMessageTemplate
		if offline == "" {
			offline = workinghours.DefaultOfflineMessage
		}
		return widget.ClickResponse{
			Status:         widget.ClickStatusOffline,
			OfflineMessage: offline,
			NextOpen:       workinghours.NextOpenDescription(cfg.WorkingHours, now),
		}, nil
	}

	message := GenerateMessage(cfg, request.Page)
	targetURL := BuildTargetURL(cfg.Phone, message, request.Device, cfg.ForceDirectLink)

	tracked := false
	if cfg.TrackingEnabled {
		eventName := cfg.TrackingEventName
		if eventName == "" {
			eventName = "whatsapp_click"
		}
		extra := map[string]any{
			"page_type":      string(request.Page.PageType),
			"message_length": len(message),
		}
		if request.Page.Product != nil {
			extra["product_name"] = request.Page.Product.Name
			extra["product_ref"] = request.Page.Product.Reference
			extra["price"] = request.Page.Product.Price
		}
		if err := s.tracking.Push(ctx, domainTracking.Event{
			Event:        eventName,
			WidgetAction: "whatsapp_click",
			Extra:        extra,
		}); err != nil {
			logrus.WithError(err).Warn("[WIDGET] tracking push failed, click continues")
		} else {
			tracked = true
		}
	}

	return widget.ClickResponse{
		Status:    widget.ClickStatusOK,
		TargetURL: targetURL,
		Message:   message,
		Tracked:   tracked,
	}, nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
