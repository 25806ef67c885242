package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	domainWidget "github.com/AzielCF/az-widget/domains/widget"
	"github.com/AzielCF/az-widget/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
)

// fakeWidgetService records inputs and returns canned outputs.
type fakeWidgetService struct {
	display     bool
	bundle      *domainWidget.RenderBundle
	lastPage    domainWidget.PageContext
	lastConsent domainWidget.ConsentState
	lastClick   domainWidget.ClickRequest
}

func (f *fakeWidgetService) ShouldDisplay(_ context.Context, page domainWidget.PageContext, _ domainWidget.DeviceHint, consent domainWidget.ConsentState) (bool, error) {
	f.lastPage = page
	f.lastConsent = consent
	return f.display, nil
}

func (f *fakeWidgetService) RenderBundle(_ context.Context, page domainWidget.PageContext, _ domainWidget.DeviceHint, _ domainWidget.ConsentState) (*domainWidget.RenderBundle, error) {
	f.lastPage = page
	return f.bundle, nil
}

func (f *fakeWidgetService) RuntimeConfig(_ context.Context, _ domainWidget.PageContext, _ domainWidget.DeviceHint, _ domainWidget.ConsentState) (*domainWidget.RuntimeConfig, error) {
	return nil, nil
}

func (f *fakeWidgetService) Click(_ context.Context, request domainWidget.ClickRequest) (domainWidget.ClickResponse, error) {
	f.lastClick = request
	return domainWidget.ClickResponse{Status: domainWidget.ClickStatusOK, TargetURL: "https://wa.me/905551112233"}, nil
}

func newWidgetTestApp(service *fakeWidgetService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())
	InitRestWidget(app, service)
	return app
}

func TestWidgetDisplayParsesContext(t *testing.T) {
	service := &fakeWidgetService{display: true}
	app := newWidgetTestApp(service)

	request, _ := http.NewRequest(http.MethodGet, "/widget/display?page_type=product&url=https://shop.example/p/1&product_name=Mug&product_ref=MUG-01&product_price=129&product_url=https://shop.example/p/1", nil)
	request.AddCookie(&http.Cookie{Name: "consent", Value: "true"})

	response, err := app.Test(request)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", response.StatusCode)
	}

	if service.lastPage.PageType != domainWidget.PageProduct {
		t.Fatalf("page type = %q", service.lastPage.PageType)
	}
	if service.lastPage.Product == nil || service.lastPage.Product.Name != "Mug" {
		t.Fatalf("product = %+v", service.lastPage.Product)
	}
	if service.lastConsent.Cookies["consent"] != "true" {
		t.Fatalf("consent cookies = %v", service.lastConsent.Cookies)
	}

	envelope := decodeEnvelope(t, response)
	results := envelope["results"].(map[string]any)
	if results["display"] != true {
		t.Fatalf("display = %v", results["display"])
	}
}

func TestWidgetBundleHiddenIsEmptyResult(t *testing.T) {
	app := newWidgetTestApp(&fakeWidgetService{bundle: nil})

	request, _ := http.NewRequest(http.MethodGet, "/widget/bundle?page_type=home", nil)
	response, err := app.Test(request)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("hidden widget must stay 200, got %d", response.StatusCode)
	}

	envelope := decodeEnvelope(t, response)
	if envelope["results"] != nil {
		t.Fatalf("results = %v, want empty", envelope["results"])
	}
}

func TestWidgetClickMergesConsentSources(t *testing.T) {
	service := &fakeWidgetService{}
	app := newWidgetTestApp(service)

	payload, _ := json.Marshal(domainWidget.ClickRequest{
		Page: domainWidget.PageContext{PageType: domainWidget.PageHome, URL: "https://shop.example/"},
		Consent: domainWidget.ConsentState{
			LocalStore: map[string]string{"consent": "1"},
		},
	})
	request, _ := http.NewRequest(http.MethodPost, "/widget/click", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	request.AddCookie(&http.Cookie{Name: "gdpr_ok", Value: "true"})

	response, err := app.Test(request)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", response.StatusCode)
	}

	if service.lastClick.Consent.LocalStore["consent"] != "1" {
		t.Fatalf("local store = %v", service.lastClick.Consent.LocalStore)
	}
	if service.lastClick.Consent.Cookies["gdpr_ok"] != "true" {
		t.Fatalf("cookies = %v", service.lastClick.Consent.Cookies)
	}
	if service.lastClick.Device.UserAgent == "" {
		t.Fatal("user agent must be filled from the request")
	}

	envelope := decodeEnvelope(t, response)
	results := envelope["results"].(map[string]any)
	if results["status"] != domainWidget.ClickStatusOK {
		t.Fatalf("status = %v", results["status"])
	}
}
