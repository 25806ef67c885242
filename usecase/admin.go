package usecase

import (
	"context"
	"fmt"
	"strings"

	settingsApp "github.com/AzielCF/az-widget/core/settings/application"
	domainAdmin "github.com/AzielCF/az-widget/domains/admin"
	"github.com/AzielCF/az-widget/domains/widget"
	pkgError "github.com/AzielCF/az-widget/pkg/error"
	"github.com/AzielCF/az-widget/pkg/msgtemplate"
	"github.com/AzielCF/az-widget/pkg/security"
	"github.com/AzielCF/az-widget/pkg/validator"
	"github.com/AzielCF/az-widget/pkg/workinghours"
	"github.com/AzielCF/az-widget/validations"
	"github.com/sirupsen/logrus"
)

type adminService struct {
	settings *settingsApp.Service
	tokens   *security.TokenManager
	limiter  *security.RateLimiter
}

func NewAdminService(settings *settingsApp.Service, tokens *security.TokenManager, limiter *security.RateLimiter) domainAdmin.IAdminUsecase {
	return &adminService{
		settings: settings,
		tokens:   tokens,
		limiter:  limiter,
	}
}

// GetConfiguration returns the stored configuration together with a fresh
// anti-forgery token for the next submission.
func (s *adminService) GetConfiguration(ctx context.Context, sessionID string) (domainAdmin.ConfigResponse, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return domainAdmin.ConfigResponse{}, err
	}

	token, err := s.tokens.Generate(ctx, sessionID)
	if err != nil {
		return domainAdmin.ConfigResponse{}, err
	}

	return domainAdmin.ConfigResponse{Config: cfg, Token: token}, nil
}

// UpdateConfiguration runs the full submission pipeline: anti-forgery
// token, rate limit, structural validation, field validation, allow-list
// filtering, then an atomic save. Field errors are collected across the
// whole form so the admin sees every problem at once.
func (s *adminService) UpdateConfiguration(ctx context.Context, request domainAdmin.UpdateConfigRequest) (widget.WidgetConfig, error) {
	if !s.tokens.Validate(ctx, request.SessionID, request.Token) {
		security.LogSecurityEvent("csrf_validation_failed", logrus.Fields{
			"client_ip":  request.ClientIP,
			"user_agent": request.UserAgent,
		})
		// Generic message on purpose, the log entry carries the detail.
		return widget.WidgetConfig{}, pkgError.SecurityError("security token validation failed, please reload the page and try again")
	}

	if !s.limiter.Allow(ctx, request.ClientIP) {
		security.LogSecurityEvent("rate_limit_exceeded", logrus.Fields{
			"client_ip":  request.ClientIP,
			"user_agent": request.UserAgent,
		})
		return widget.WidgetConfig{}, pkgError.RateLimitError("too many configuration attempts, please wait before trying again")
	}

	if err := validations.ValidateUpdateConfigRequest(ctx, request); err != nil {
		return widget.WidgetConfig{}, err
	}

	var fieldErrors []string
	fail := func(field, message string) {
		fieldErrors = append(fieldErrors, fmt.Sprintf("%s: %s", field, message))
	}

	phone := validator.ValidatePhone(request.Phone)
	if !phone.Valid {
		fail("phone", phone.Error)
	}

	defaultMsg := validator.ValidateMessageTemplate(request.DefaultMessageTemplate)
	if !defaultMsg.Valid {
		fail("default_message", defaultMsg.Error)
	} else if err := msgtemplate.ValidateTokens(defaultMsg.Sanitized, false); err != nil {
		fail("default_message", err.Error())
	}

	productMsg := validator.ValidateMessageTemplate(request.ProductMessageTemplate)
	if !productMsg.Valid {
		fail("product_message", productMsg.Error)
	} else if err := msgtemplate.ValidateTokens(productMsg.Sanitized, true); err != nil {
		fail("product_message", err.Error())
	}

	offlineMsg := validator.ValidateMessageTemplate(request.OfflineMessageTemplate)
	if !offlineMsg.Valid {
		fail("offline_message", offlineMsg.Error)
	} else if err := msgtemplate.ValidateTokens(offlineMsg.Sanitized, false); err != nil {
		fail("offline_message", err.Error())
	}

	color := validator.ValidateColor(request.ThemeColor)
	if !color.Valid {
		fail("theme_color", color.Error)
	}

	event := validator.ValidateEventName(request.TrackingEventName)
	if !event.Valid {
		fail("tracking_event", event.Error)
	}

	cookies := validator.ValidateCookieNames(request.ConsentCookieNames)
	if !cookies.Valid {
		fail("consent_cookies", cookies.Error)
	}

	workingDays := validator.ValidateAllowListed(request.WorkingDays, widget.AllowedWeekdays)
	hours := settingsApp.BuildWorkingHours(
		request.WorkingHoursEnabled,
		strings.TrimSpace(request.Timezone),
		workingDays.Sanitized,
		strings.TrimSpace(request.StartTime),
		strings.TrimSpace(request.EndTime),
	)
	if request.WorkingHoursEnabled {
		start := validator.ValidateTime(request.StartTime)
		if !start.Valid {
			fail("start_time", start.Error)
		}
		end := validator.ValidateTime(request.EndTime)
		if !end.Valid {
			fail("end_time", end.Error)
		}
		if start.Valid && end.Valid {
			for _, problem := range workinghours.ValidateConfig(hours) {
				fail("working_hours", problem)
			}
		}
	}

	if len(fieldErrors) > 0 {
		return widget.WidgetConfig{}, pkgError.ValidationError(strings.Join(fieldErrors, "; "))
	}

	pages := validator.ValidateAllowListed(request.VisiblePageTypes, widget.AllowedPageTypes)
	devices := validator.ValidateAllowListed(request.VisibleDeviceTypes, widget.AllowedDeviceTypes)

	cfg := widget.WidgetConfig{
		Enabled:                request.Enabled,
		Phone:                  phone.Sanitized,
		DefaultMessageTemplate: defaultMsg.Sanitized,
		ProductMessageTemplate: productMsg.Sanitized,
		VisiblePageTypes:       pages.Sanitized,
		VisibleDeviceTypes:     devices.Sanitized,
		Position:               pickAllowed(request.Position, widget.AllowedPositions, widget.PositionBottomRight),
		ThemeColor:             color.Sanitized,
		ButtonSize:             pickAllowed(request.ButtonSize, widget.AllowedButtonSizes, "md"),
		BorderRadius:           pickAllowed(request.BorderRadius, widget.AllowedBorderRadius, "md"),
		DarkMode:               request.DarkMode,
		WorkingHours:           hours,
		OfflineMessageTemplate: offlineMsg.Sanitized,
		ConsentRequired:        request.ConsentRequired,
		ConsentCookieNames:     splitCookieNames(cookies.Sanitized),
		ForceDirectLink:        request.ForceDirectLink,
		TrackingEnabled:        request.TrackingEnabled,
		TrackingEventName:      event.Sanitized,
	}

	if err := s.settings.Save(ctx, cfg); err != nil {
		return widget.WidgetConfig{}, err
	}

	logrus.WithFields(logrus.Fields{
		"enabled":   cfg.Enabled,
		"client_ip": request.ClientIP,
	}).Info("[ADMIN] widget configuration updated")

	return cfg, nil
}

// pickAllowed returns value when it is in allowed, otherwise fallback.
// Single-select fields are corrected rather than rejected.
func pickAllowed(value string, allowed []string, fallback string) string {
	if contains(allowed, value) {
		return value
	}
	return fallback
}

func splitCookieNames(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}
