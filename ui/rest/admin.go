package rest

import (
	domainAdmin "github.com/AzielCF/az-widget/domains/admin"
	domainTracking "github.com/AzielCF/az-widget/domains/tracking"
	"github.com/AzielCF/az-widget/pkg/msgtemplate"
	"github.com/AzielCF/az-widget/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Admin struct {
	Service  domainAdmin.IAdminUsecase
	Tracking domainTracking.ITrackingUsecase
}

func InitRestAdmin(app fiber.Router, service domainAdmin.IAdminUsecase, tracking domainTracking.ITrackingUsecase) Admin {
	rest := Admin{Service: service, Tracking: tracking}
	app.Get("/widget/config", rest.GetConfig)
	app.Put("/widget/config", rest.UpdateConfig)
	app.Get("/widget/tokens", rest.ListTokens)
	app.Get("/widget/events", rest.ListEvents)
	return rest
}

func (controller *Admin) GetConfig(c *fiber.Ctx) error {
	response, err := controller.Service.GetConfiguration(c.UserContext(), sessionID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch widget configuration",
		Results: response,
	})
}

func (controller *Admin) UpdateConfig(c *fiber.Ctx) error {
	var request domainAdmin.UpdateConfigRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	request.SessionID = sessionID(c)
	request.Token = c.Get("X-CSRF-Token")
	request.ClientIP = c.IP()
	request.UserAgent = c.Get(fiber.HeaderUserAgent)

	config, err := controller.Service.UpdateConfiguration(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update widget configuration",
		Results: config,
	})
}

func (controller *Admin) ListTokens(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch message template tokens",
		Results: map[string][]string{
			"general": msgtemplate.AvailableTokens(false),
			"product": msgtemplate.AvailableTokens(true),
		},
	})
}

func (controller *Admin) ListEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	events, err := controller.Tracking.Recent(c.UserContext(), limit)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch recent widget events",
		Results: events,
	})
}

// sessionID is the anti-forgery token scope. Admin clients send a stable
// X-Session-ID; the client address is the fallback scope.
func sessionID(c *fiber.Ctx) string {
	if id := c.Get("X-Session-ID"); id != "" {
		return id
	}
	return c.IP()
}
