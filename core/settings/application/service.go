package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/AzielCF/az-widget/core/settings/domain"
	"github.com/AzielCF/az-widget/core/settings/infrastructure"
	domainWidget "github.com/AzielCF/az-widget/domains/widget"
	"github.com/AzielCF/az-widget/pkg/workinghours"
	"gorm.io/gorm"
)

// Service maps WidgetConfig to and from the opaque key/value settings
// store. Everything is stored as strings: booleans as "0"/"1", sets as
// JSON arrays, exactly what the repository contract demands.
type Service struct {
	repo domain.ISettingsRepository
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		repo: infrastructure.NewWidgetSettingsGormRepository(db),
	}
}

func NewServiceWithRepository(repo domain.ISettingsRepository) *Service {
	return &Service{repo: repo}
}

var installDefaults = map[string]string{
	domain.KeyEnabled:             "0",
	domain.KeyPhone:               "",
	domain.KeyDefaultMessage:      "Hello! I am interested in your products. Page: {page_url}",
	domain.KeyProductMessage:      "Hello! I am interested in this product: {product_name} - {price}. Link: {product_url}",
	domain.KeyVisibilityPages:     `["home","category","product"]`,
	domain.KeyVisibilityDevices:   `["desktop","mobile"]`,
	domain.KeyPosition:            domainWidget.PositionBottomRight,
	domain.KeyThemeColor:          "#25D366",
	domain.KeyButtonSize:          "md",
	domain.KeyBorderRadius:        "lg",
	domain.KeyDarkMode:            "0",
	domain.KeyWorkingHoursEnabled: "0",
	domain.KeyWorkingDays:         `["monday","tuesday","wednesday","thursday","friday"]`,
	domain.KeyStartTime:           "09:00",
	domain.KeyEndTime:             "18:00",
	domain.KeyTimezone:            workinghours.DefaultTimezone,
	domain.KeyOfflineMessage:      "We are currently offline. Please leave a message!",
	domain.KeyConsentRequired:     "0",
	domain.KeyConsentCookies:      "",
	domain.KeyForceDirectLink:     "0",
	domain.KeyTrackingEnabled:     "0",
	domain.KeyTrackingEvent:       "whatsapp_click",
}

// InitSchema prepares the storage table.
func (s *Service) InitSchema(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}

// Install writes the default configuration for every key.
func (s *Service) Install(ctx context.Context) error {
	for key, value := range installDefaults {
		if err := s.repo.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDefaults fills in only the keys that are not stored yet, so a
// restart never clobbers an existing configuration. The enabled flag
// counts as the install marker.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	existing, err := s.repo.Get(ctx, domain.KeyEnabled)
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}
	return s.Install(ctx)
}

// Uninstall removes every widget setting.
func (s *Service) Uninstall(ctx context.Context) error {
	for _, key := range domain.AllKeys() {
		if err := s.repo.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Load reads and parses the full widget configuration.
func (s *Service) Load(ctx context.Context) (domainWidget.WidgetConfig, error) {
	cfg := domainWidget.WidgetConfig{}

	get := func(key string) string {
		value, err := s.repo.Get(ctx, key)
		if err != nil || value == "" {
			return installDefaults[key]
		}
		return value
	}

	cfg.Enabled = parseBool(get(domain.KeyEnabled))
	cfg.Phone = strings.TrimSpace(get(domain.KeyPhone))
	cfg.DefaultMessageTemplate = get(domain.KeyDefaultMessage)
	cfg.ProductMessageTemplate = get(domain.KeyProductMessage)
	cfg.VisiblePageTypes = parseList(get(domain.KeyVisibilityPages))
	cfg.VisibleDeviceTypes = parseList(get(domain.KeyVisibilityDevices))
	cfg.Position = get(domain.KeyPosition)
	cfg.ThemeColor = get(domain.KeyThemeColor)
	cfg.ButtonSize = get(domain.KeyButtonSize)
	cfg.BorderRadius = get(domain.KeyBorderRadius)
	cfg.DarkMode = parseBool(get(domain.KeyDarkMode))
	cfg.OfflineMessageTemplate = get(domain.KeyOfflineMessage)
	cfg.ConsentRequired = parseBool(get(domain.KeyConsentRequired))
	cfg.ConsentCookieNames = parseCSV(get(domain.KeyConsentCookies))
	cfg.ForceDirectLink = parseBool(get(domain.KeyForceDirectLink))
	cfg.TrackingEnabled = parseBool(get(domain.KeyTrackingEnabled))
	cfg.TrackingEventName = get(domain.KeyTrackingEvent)

	cfg.WorkingHours = BuildWorkingHours(
		parseBool(get(domain.KeyWorkingHoursEnabled)),
		get(domain.KeyTimezone),
		parseList(get(domain.KeyWorkingDays)),
		get(domain.KeyStartTime),
		get(domain.KeyEndTime),
	)

	return cfg, nil
}

// Save persists the full configuration. Callers validate first; nothing
// here rejects.
func (s *Service) Save(ctx context.Context, cfg domainWidget.WidgetConfig) error {
	days, start, end := flattenWorkingHours(cfg.WorkingHours)

	values := map[string]string{
		domain.KeyEnabled:             boolString(cfg.Enabled),
		domain.KeyPhone:               cfg.Phone,
		domain.KeyDefaultMessage:      cfg.DefaultMessageTemplate,
		domain.KeyProductMessage:      cfg.ProductMessageTemplate,
		domain.KeyVisibilityPages:     jsonList(cfg.VisiblePageTypes),
		domain.KeyVisibilityDevices:   jsonList(cfg.VisibleDeviceTypes),
		domain.KeyPosition:            cfg.Position,
		domain.KeyThemeColor:          cfg.ThemeColor,
		domain.KeyButtonSize:          cfg.ButtonSize,
		domain.KeyBorderRadius:        cfg.BorderRadius,
		domain.KeyDarkMode:            boolString(cfg.DarkMode),
		domain.KeyWorkingHoursEnabled: boolString(cfg.WorkingHours.Enabled),
		domain.KeyWorkingDays:         jsonList(days),
		domain.KeyStartTime:           start,
		domain.KeyEndTime:             end,
		domain.KeyTimezone:            cfg.WorkingHours.Timezone,
		domain.KeyOfflineMessage:      cfg.OfflineMessageTemplate,
		domain.KeyConsentRequired:     boolString(cfg.ConsentRequired),
		domain.KeyConsentCookies:      strings.Join(cfg.ConsentCookieNames, ","),
		domain.KeyForceDirectLink:     boolString(cfg.ForceDirectLink),
		domain.KeyTrackingEnabled:     boolString(cfg.TrackingEnabled),
		domain.KeyTrackingEvent:       cfg.TrackingEventName,
	}

	for key, value := range values {
		if err := s.repo.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// BuildWorkingHours expands the flat admin shape (day list + one window)
// into the per-weekday schedule the evaluator consumes.
func BuildWorkingHours(enabled bool, timezone string, dayNames []string, start, end string) workinghours.Config {
	active := make(map[time.Weekday]bool, len(dayNames))
	for _, name := range dayNames {
		if d, ok := weekdayByName[strings.ToLower(name)]; ok {
			active[d] = true
		}
	}

	days := make(map[time.Weekday]workinghours.DayWindow, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		days[d] = workinghours.DayWindow{Enabled: active[d], Start: start, End: end}
	}

	if timezone == "" {
		timezone = workinghours.DefaultTimezone
	}
	return workinghours.Config{Enabled: enabled, Timezone: timezone, Days: days}
}

func flattenWorkingHours(cfg workinghours.Config) (days []string, start, end string) {
	start, end = "09:00", "18:00"
	for d := time.Sunday; d <= time.Saturday; d++ {
		window, ok := cfg.Days[d]
		if !ok {
			continue
		}
		if window.Start != "" {
			start, end = window.Start, window.End
		}
		if window.Enabled {
			days = append(days, strings.ToLower(d.String()))
		}
	}
	return days, start, end
}

func parseBool(value string) bool {
	return value == "1" || value == "true"
}

func boolString(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

func parseList(value string) []string {
	var out []string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil
	}
	return out
}

func parseCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func jsonList(values []string) string {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return string(raw)
}
