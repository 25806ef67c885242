package domain

import "context"

// Setting represents one stored configuration value. All values are opaque
// strings the application layer must parse itself: booleans as "0"/"1",
// sets as JSON arrays.
type Setting struct {
	Key   string
	Value string
}

// ISettingsRepository defines the contract for persisting widget settings.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Keys under the widget namespace.
const (
	KeyEnabled             = "widget_enabled"
	KeyPhone               = "widget_phone"
	KeyDefaultMessage      = "widget_default_message"
	KeyProductMessage      = "widget_product_message"
	KeyVisibilityPages     = "widget_visibility_pages"
	KeyVisibilityDevices   = "widget_visibility_devices"
	KeyPosition            = "widget_position"
	KeyThemeColor          = "widget_theme_color"
	KeyButtonSize          = "widget_button_size"
	KeyBorderRadius        = "widget_border_radius"
	KeyDarkMode            = "widget_dark_mode"
	KeyWorkingHoursEnabled = "widget_working_hours_enabled"
	KeyWorkingDays         = "widget_working_days"
	KeyStartTime           = "widget_start_time"
	KeyEndTime             = "widget_end_time"
	KeyTimezone            = "widget_timezone"
	KeyOfflineMessage      = "widget_offline_message"
	KeyConsentRequired     = "widget_consent_required"
	KeyConsentCookies      = "widget_consent_cookies"
	KeyForceDirectLink     = "widget_force_direct_link"
	KeyTrackingEnabled     = "widget_tracking_enabled"
	KeyTrackingEvent       = "widget_tracking_event"
)

// AllKeys lists every widget setting, used by uninstall.
func AllKeys() []string {
	return []string{
		KeyEnabled,
		KeyPhone,
		KeyDefaultMessage,
		KeyProductMessage,
		KeyVisibilityPages,
		KeyVisibilityDevices,
		KeyPosition,
		KeyThemeColor,
		KeyButtonSize,
		KeyBorderRadius,
		KeyDarkMode,
		KeyWorkingHoursEnabled,
		KeyWorkingDays,
		KeyStartTime,
		KeyEndTime,
		KeyTimezone,
		KeyOfflineMessage,
		KeyConsentRequired,
		KeyConsentCookies,
		KeyForceDirectLink,
		KeyTrackingEnabled,
		KeyTrackingEvent,
	}
}
