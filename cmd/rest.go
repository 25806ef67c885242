package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	globalConfig "github.com/AzielCF/az-widget/config"
	settingsApp "github.com/AzielCF/az-widget/core/settings/application"
	settingsInfra "github.com/AzielCF/az-widget/core/settings/infrastructure"
	domainTracking "github.com/AzielCF/az-widget/domains/tracking"
	"github.com/AzielCF/az-widget/infrastructure/valkey"
	"github.com/AzielCF/az-widget/pkg/security"
	"github.com/AzielCF/az-widget/ui/rest"
	"github.com/AzielCF/az-widget/ui/rest/middleware"
	"github.com/AzielCF/az-widget/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the widget engine over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	ctx := context.Background()

	db, err := settingsInfra.OpenDatabase(globalConfig.DBURI)
	if err != nil {
		logrus.Fatalf("[REST] Failed to open settings database: %v", err)
	}

	settingsService := settingsApp.NewService(db)
	if err := settingsService.InitSchema(ctx); err != nil {
		logrus.Fatalf("[REST] Failed to init settings schema: %v", err)
	}
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		logrus.Fatalf("[REST] Failed to ensure default settings: %v", err)
	}

	// Session/token state and the tracking queue move to valkey when it is
	// enabled, so several instances can share them. In-memory otherwise.
	var sessionStore security.SessionStore = security.NewMemoryStore()
	var eventQueue domainTracking.IEventQueue = usecase.NewMemoryEventQueue(globalConfig.TrackingQueueSize)
	var valkeyClient *valkey.Client

	if globalConfig.ValkeyEnabled {
		valkeyClient, err = valkey.NewClient(valkey.Config{
			Address:   globalConfig.ValkeyAddress,
			Password:  globalConfig.ValkeyPassword,
			DB:        globalConfig.ValkeyDB,
			KeyPrefix: globalConfig.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Fatalf("[REST] Failed to connect to valkey: %v", err)
		}
		sessionStore = valkey.NewSessionStore(valkeyClient)
		eventQueue = valkey.NewEventQueue(valkeyClient, globalConfig.TrackingQueueSize)
		logrus.Info("[REST] Valkey backend enabled for sessions and tracking")
	}

	tokenManager := security.NewTokenManager(sessionStore, globalConfig.CsrfTokenLifetime)
	rateLimiter := security.NewRateLimiter(sessionStore, globalConfig.RateLimitMax, globalConfig.RateLimitWindow)

	trackingUsecase := usecase.NewTrackingService(eventQueue)
	widgetUsecase := usecase.NewWidgetService(settingsService, trackingUsecase)
	adminUsecase := usecase.NewAdminService(settingsService, tokenManager, rateLimiter)

	app := fiber.New(fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "Az-Widget Engine " + globalConfig.AppVersion,
		ServerHeader:            "Hidden",
		TrustedProxies:          globalConfig.AppTrustedProxies,
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, X-Session-ID, X-CSRF-Token, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if globalConfig.AppDebug {
		app.Use(logger.New())
	}

	apiGroup := app.Group(globalConfig.AppBasePath + "/api")

	// The widget endpoints are public storefront surface; only the admin
	// group sits behind basic auth.
	adminGroup := apiGroup.Group("/admin")
	if len(globalConfig.AppBasicAuthCredential) > 0 {
		account := make(map[string]string)
		for _, credential := range globalConfig.AppBasicAuthCredential {
			ba := strings.Split(credential, ":")
			if len(ba) != 2 {
				logrus.Fatalln("Basic auth is not valid, please use the format <user>:<secret>")
			}
			account[ba[0]] = ba[1]
		}
		adminGroup.Use(basicauth.New(basicauth.Config{Users: account}))
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH is not set, the admin surface is unprotected")
	}

	rest.InitRestWidget(apiGroup, widgetUsecase)
	rest.InitRestAdmin(adminGroup, adminUsecase, trackingUsecase)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		if valkeyClient != nil {
			valkeyClient.Close()
		}
	}()

	if err := app.Listen(":" + globalConfig.AppPort); err != nil {
		logrus.Fatalln("Failed to start server:", err)
	}
}
