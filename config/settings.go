package config

import "time"

var (
	AppVersion             = "v1.0.0"
	AppPort                = "3000"
	AppDebug               = false
	AppBasicAuthCredential []string
	AppBasePath            = ""
	AppTrustedProxies      []string

	PathStorages = "storages"

	DBURI = "file:storages/widget.db?_foreign_keys=on"

	// Shop-level context supplied by the hosting storefront, not by the
	// widget configuration itself.
	ShopName     = ""
	ShopCurrency = "TRY"

	// Valkey-backed session/tracking storage (optional, in-memory default).
	ValkeyEnabled   = false
	ValkeyAddress   = "localhost:6379"
	ValkeyPassword  = ""
	ValkeyDB        = 0
	ValkeyKeyPrefix = "azwidget"

	// Admin surface protection.
	CsrfTokenLifetime = 1800 * time.Second
	RateLimitMax      = 10
	RateLimitWindow   = 300 * time.Second

	// Retained tracking events when the in-memory queue is used.
	TrackingQueueSize = 1000
)
