package admin

import (
	"context"

	"github.com/AzielCF/az-widget/domains/widget"
)

// UpdateConfigRequest is the full admin submission. Every value arrives as
// the raw form string; the usecase validates and sanitizes all of it
// before anything is saved.
type UpdateConfigRequest struct {
	Enabled                bool     `json:"enabled"`
	Phone                  string   `json:"phone"`
	DefaultMessageTemplate string   `json:"default_message"`
	ProductMessageTemplate string   `json:"product_message"`
	VisiblePageTypes       []string `json:"visibility_pages"`
	VisibleDeviceTypes     []string `json:"visibility_devices"`
	Position               string   `json:"position"`
	ThemeColor             string   `json:"theme_color"`
	ButtonSize             string   `json:"button_size"`
	BorderRadius           string   `json:"border_radius"`
	DarkMode               bool     `json:"dark_mode"`
	WorkingHoursEnabled    bool     `json:"working_hours_enabled"`
	WorkingDays            []string `json:"working_days"`
	StartTime              string   `json:"start_time"`
	EndTime                string   `json:"end_time"`
	Timezone               string   `json:"timezone"`
	OfflineMessageTemplate string   `json:"offline_message"`
	ConsentRequired        bool     `json:"consent_required"`
	ConsentCookieNames     string   `json:"consent_cookies"`
	ForceDirectLink        bool     `json:"force_direct_link"`
	TrackingEnabled        bool     `json:"tracking_enabled"`
	TrackingEventName      string   `json:"tracking_event"`

	// Request metadata, filled by the REST layer.
	SessionID string `json:"-"`
	Token     string `json:"-"`
	ClientIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// ConfigResponse is the admin view of the stored configuration plus a
// fresh anti-forgery token for the next submission.
type ConfigResponse struct {
	Config widget.WidgetConfig `json:"config"`
	Token  string              `json:"token"`
}

type IAdminUsecase interface {
	GetConfiguration(ctx context.Context, sessionID string) (ConfigResponse, error)
	UpdateConfiguration(ctx context.Context, request UpdateConfigRequest) (widget.WidgetConfig, error)
}
