package widget

import (
	"context"
	"strings"
	"time"

	"github.com/AzielCF/az-widget/pkg/workinghours"
)

// PageType classifies the storefront page being rendered. Supplied by the
// calling boundary; the engine never inspects the host framework.
type PageType string

const (
	PageHome     PageType = "home"
	PageCategory PageType = "category"
	PageProduct  PageType = "product"
	PageCart     PageType = "cart"
	PageCheckout PageType = "checkout"
	PageCMS      PageType = "cms"
	PageOther    PageType = "other"
)

// DeviceType classifies the visitor device.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
)

const (
	PositionBottomRight = "bottom-right"
	PositionBottomLeft  = "bottom-left"
)

// Allowed values for the multi-select / enum admin fields.
var (
	AllowedPageTypes    = []string{"home", "category", "product", "cart", "checkout", "cms", "other"}
	AllowedDeviceTypes  = []string{"desktop", "mobile"}
	AllowedPositions    = []string{PositionBottomRight, PositionBottomLeft}
	AllowedButtonSizes  = []string{"sm", "md", "lg"}
	AllowedBorderRadius = []string{"md", "lg"}
	AllowedWeekdays     = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

// WidgetConfig is the full admin-configured state of the widget. Mutated
// only by validated admin submissions; treated as immutable within one
// render or click cycle.
type WidgetConfig struct {
	Enabled                bool                `json:"enabled"`
	Phone                  string              `json:"phone"`
	DefaultMessageTemplate string              `json:"default_message"`
	ProductMessageTemplate string              `json:"product_message"`
	VisiblePageTypes       []string            `json:"visibility_pages"`
	VisibleDeviceTypes     []string            `json:"visibility_devices"`
	Position               string              `json:"position"`
	ThemeColor             string              `json:"theme_color"`
	ButtonSize             string              `json:"button_size"`
	BorderRadius           string              `json:"border_radius"`
	DarkMode               bool                `json:"dark_mode"`
	WorkingHours           workinghours.Config `json:"-"`
	OfflineMessageTemplate string              `json:"offline_message"`
	ConsentRequired        bool                `json:"consent_required"`
	ConsentCookieNames     []string            `json:"consent_cookies"`
	ForceDirectLink        bool                `json:"force_direct_link"`
	TrackingEnabled        bool                `json:"tracking_enabled"`
	TrackingEventName      string              `json:"tracking_event"`
}

// ProductSnapshot is what the page boundary knows about the current
// product. Price arrives already currency-formatted.
type ProductSnapshot struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
	Price     string `json:"price"`
	URL       string `json:"url"`
}

// PageContext describes the page a decision is being made for.
type PageContext struct {
	PageType PageType         `json:"page_type"`
	URL      string           `json:"url"`
	Product  *ProductSnapshot `json:"product,omitempty"`
}

// DeviceHint carries the raw device signals the client observed. The
// classification helpers below are deliberately asymmetric: mobile is
// assumed on any doubt, desktop only on unanimous signals.
type DeviceHint struct {
	UserAgent     string `json:"user_agent"`
	ViewportWidth int    `json:"viewport_width"`
	TouchPoints   int    `json:"touch_points"`
	TouchCapable  bool   `json:"touch_capable"`
}

var mobileUAKeywords = []string{
	"android", "webos", "iphone", "ipad", "ipod",
	"blackberry", "windows phone", "mobile", "tablet",
}

func (d DeviceHint) hasMobileUA() bool {
	ua := strings.ToLower(d.UserAgent)
	for _, keyword := range mobileUAKeywords {
		if strings.Contains(ua, keyword) {
			return true
		}
	}
	return false
}

// Type classifies the device for the visibility allow-list.
func (d DeviceHint) Type() DeviceType {
	if d.hasMobileUA() || (d.ViewportWidth > 0 && d.ViewportWidth <= 768) || d.TouchCapable {
		return DeviceMobile
	}
	return DeviceDesktop
}

// IsConfidentDesktop reports whether every signal agrees on desktop. The
// session-bound web host fails silently for unauthenticated visitors, so
// uncertainty must resolve toward the universal link.
func (d DeviceHint) IsConfidentDesktop() bool {
	return !d.hasMobileUA() &&
		d.ViewportWidth > 1024 &&
		!d.TouchCapable &&
		d.TouchPoints == 0
}

// ConsentState maps each checked key to its raw value in the cookie store
// and the durable local store. Derived fresh on each check; never cached.
type ConsentState struct {
	Cookies    map[string]string `json:"cookies"`
	LocalStore map[string]string `json:"local_store"`
}

// Truthy reports whether name is present and truthy in either store.
// Only the exact values "true" and "1" count.
func (s ConsentState) Truthy(name string) bool {
	return isTruthy(s.LocalStore[name]) || isTruthy(s.Cookies[name])
}

func isTruthy(value string) bool {
	return value == "true" || value == "1"
}

// DecisionInput is composed per render or per click and never persisted.
type DecisionInput struct {
	Page    PageContext
	Device  DeviceType
	Now     time.Time
	Consent ConsentState
}

// RenderBundle is the data contract emitted toward the external markup
// renderer. Field names and shapes are the contract; no markup here.
type RenderBundle struct {
	Phone          string                             `json:"phone"`
	Message        string                             `json:"message"`
	Position       string                             `json:"position"`
	ThemeColor     string                             `json:"theme_color"`
	ButtonSize     string                             `json:"button_size"`
	BorderRadius   string                             `json:"border_radius"`
	DarkMode       bool                               `json:"dark_mode"`
	WorkingEnabled bool                               `json:"working_hours_enabled"`
	WorkingHours   map[string]workinghours.DayWindow  `json:"working_hours"`
	OfflineMessage string                             `json:"offline_message"`
	PageType       PageType                           `json:"page_type"`
}

// RuntimeConfig is the JSON payload injected once per page load for the
// client runtime gate.
type RuntimeConfig struct {
	Phone              string                            `json:"phone"`
	ForceDirectLink    bool                              `json:"forceDirectLink"`
	TrackingEnabled    bool                              `json:"trackingEnabled"`
	TrackingEvent      string                            `json:"trackingEvent"`
	WorkingHoursOn     bool                              `json:"workingHoursEnabled"`
	WorkingHours       map[string]workinghours.DayWindow `json:"workingHours"`
	Timezone           string                            `json:"timezone"`
	ConsentRequired    bool                              `json:"consentRequired"`
	ConsentCookieNames []string                          `json:"consentCookies"`
	PageType           PageType                          `json:"pageType"`
	ProductData        *ProductSnapshot                  `json:"productData"`
	ShopName           string                            `json:"shopName"`
	Currency           string                            `json:"currency"`
}

// Click statuses. The click sequence aborts deterministically at a named
// gate; absence of a URL is the expected, silent outcome.
const (
	ClickStatusOK              = "ok"
	ClickStatusHidden          = "hidden"
	ClickStatusConsentRequired = "consent_required"
	ClickStatusOffline         = "offline"
)

// ClickRequest is what the client runtime sends when the button is
// activated.
type ClickRequest struct {
	Page    PageContext  `json:"page"`
	Device  DeviceHint   `json:"device"`
	Consent ConsentState `json:"consent"`
}

// ClickResponse carries either the outbound link or the gate that aborted
// the sequence.
type ClickResponse struct {
	Status         string `json:"status"`
	TargetURL      string `json:"target_url,omitempty"`
	Message        string `json:"message,omitempty"`
	OfflineMessage string `json:"offline_message,omitempty"`
	NextOpen       string `json:"next_open,omitempty"`
	Tracked        bool   `json:"tracked"`
}

type IWidgetUsecase interface {
	ShouldDisplay(ctx context.Context, page PageContext, device DeviceHint, consent ConsentState) (bool, error)
	RenderBundle(ctx context.Context, page PageContext, device DeviceHint, consent ConsentState) (*RenderBundle, error)
	RuntimeConfig(ctx context.Context, page PageContext, device DeviceHint, consent ConsentState) (*RuntimeConfig, error)
	Click(ctx context.Context, request ClickRequest) (ClickResponse, error)
}
