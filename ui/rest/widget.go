package rest

import (
	domainWidget "github.com/AzielCF/az-widget/domains/widget"
	"github.com/AzielCF/az-widget/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Widget struct {
	Service domainWidget.IWidgetUsecase
}

func InitRestWidget(app fiber.Router, service domainWidget.IWidgetUsecase) Widget {
	rest := Widget{Service: service}
	app.Get("/widget/display", rest.Display)
	app.Get("/widget/bundle", rest.Bundle)
	app.Get("/widget/runtime-config", rest.RuntimeConfig)
	app.Post("/widget/click", rest.Click)
	return rest
}

func (controller *Widget) Display(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	device := deviceFromRequest(c)
	consent := consentFromRequest(c, nil)

	display, err := controller.Service.ShouldDisplay(c.UserContext(), page, device, consent)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success evaluate widget display",
		Results: map[string]bool{"display": display},
	})
}

func (controller *Widget) Bundle(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	device := deviceFromRequest(c)
	consent := consentFromRequest(c, nil)

	bundle, err := controller.Service.RenderBundle(c.UserContext(), page, device, consent)
	utils.PanicIfNeeded(err)

	// A hidden widget is a normal outcome, not an error. The client gets
	// an empty result and renders nothing.
	if bundle == nil {
		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Widget is not displayed for this context",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch widget bundle",
		Results: bundle,
	})
}

func (controller *Widget) RuntimeConfig(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	device := deviceFromRequest(c)
	consent := consentFromRequest(c, nil)

	config, err := controller.Service.RuntimeConfig(c.UserContext(), page, device, consent)
	utils.PanicIfNeeded(err)

	if config == nil {
		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Widget is not displayed for this context",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch widget runtime config",
		Results: config,
	})
}

func (controller *Widget) Click(c *fiber.Ctx) error {
	var request domainWidget.ClickRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	if request.Device.UserAgent == "" {
		request.Device.UserAgent = c.Get(fiber.HeaderUserAgent)
	}
	request.Consent = consentFromRequest(c, request.Consent.LocalStore)

	response, err := controller.Service.Click(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success process widget click",
		Results: response,
	})
}

func pageFromQuery(c *fiber.Ctx) domainWidget.PageContext {
	page := domainWidget.PageContext{
		PageType: domainWidget.PageType(c.Query("page_type", string(domainWidget.PageOther))),
		URL:      c.Query("url"),
	}

	if page.PageType == domainWidget.PageProduct && c.Query("product_name") != "" {
		page.Product = &domainWidget.ProductSnapshot{
			Name:      c.Query("product_name"),
			Reference: c.Query("product_ref"),
			Price:     c.Query("product_price"),
			URL:       c.Query("product_url"),
		}
	}

	return page
}

func deviceFromRequest(c *fiber.Ctx) domainWidget.DeviceHint {
	return domainWidget.DeviceHint{
		UserAgent:     c.Get(fiber.HeaderUserAgent),
		ViewportWidth: c.QueryInt("viewport_width"),
		TouchPoints:   c.QueryInt("touch_points"),
		TouchCapable:  c.QueryBool("touch_capable"),
	}
}

// consentFromRequest builds the consent state from the request cookies
// plus whatever durable store snapshot the client sent along.
func consentFromRequest(c *fiber.Ctx, localStore map[string]string) domainWidget.ConsentState {
	cookies := map[string]string{}
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		cookies[string(key)] = string(value)
	})

	return domainWidget.ConsentState{
		Cookies:    cookies,
		LocalStore: localStore,
	}
}
