package router

import (
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/zhandosm/baraholka/app/controllers"
	"github.com/zhandosm/baraholka/internal/pkg/middleware"
)

// InstallRoutes mounts the full API surface. Public routes get optional
// auth so responses can personalize for logged-in callers; everything
// else sits behind the bearer token check.
func InstallRoutes(app *fiber.App) {
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}))
	app.Get("/metrics", middleware.RequireAuth, middleware.RequireAdmin, monitor.New())

	api := app.Group("/api", middleware.NewRateLimiter(300, time.Minute))
	api.Get("/health", controllers.HandleHealth)

	auth := api.Group("/auth", middleware.NewRateLimiter(20, time.Minute))
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/refresh", controllers.HandleRefresh)
	auth.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)
	auth.Post("/phone/send-code", middleware.RequireAuth, controllers.HandleSendPhoneCode)
	auth.Post("/phone/verify", middleware.RequireAuth, controllers.HandleVerifyPhone)
	auth.Post("/email/send-verification", middleware.RequireAuth, controllers.HandleSendEmailVerification)
	auth.Get("/verify-email", controllers.HandleVerifyEmail)

	users := api.Group("/users")
	users.Get("/me", middleware.RequireAuth, controllers.HandleGetMe)
	users.Patch("/me", middleware.RequireAuth, controllers.HandleUpdateMe)
	users.Patch("/me/profile", middleware.RequireAuth, controllers.HandleUpdateProfile)
	users.Patch("/me/settings", middleware.RequireAuth, controllers.HandleUpdateSettings)
	users.Put("/me/password", middleware.RequireAuth, controllers.HandleChangePassword)
	users.Post("/me/devices", middleware.RequireAuth, controllers.HandleRegisterDevice)
	users.Delete("/me/devices", middleware.RequireAuth, controllers.HandleUnregisterDevice)
	users.Get("/:id", controllers.HandleGetUser)

	listings := api.Group("/listings")
	listings.Get("/", middleware.OptionalAuth, controllers.HandleSearchListings)
	listings.Post("/", middleware.RequireAuth, controllers.HandleCreateListing)
	listings.Get("/my", middleware.RequireAuth, controllers.HandleMyListings)
	listings.Get("/favorites", middleware.RequireAuth, controllers.HandleListFavorites)
	listings.Get("/:id", middleware.OptionalAuth, controllers.HandleGetListing)
	listings.Patch("/:id", middleware.RequireAuth, controllers.HandleUpdateListing)
	listings.Delete("/:id", middleware.RequireAuth, controllers.HandleDeleteListing)
	listings.Post("/:id/actions", middleware.RequireAuth, controllers.HandleListingAction)
	listings.Post("/:id/favorite", middleware.RequireAuth, controllers.HandleToggleFavorite)
	listings.Post("/:id/report", middleware.RequireAuth, controllers.HandleReportListing)
	listings.Get("/:id/media", controllers.HandleListMedia)
	listings.Post("/:id/media", middleware.RequireAuth, controllers.HandleUploadMedia)

	media := api.Group("/media", middleware.RequireAuth)
	media.Delete("/:mediaId", controllers.HandleDeleteMedia)
	media.Post("/:mediaId/primary", controllers.HandleSetPrimaryMedia)

	locations := api.Group("/locations")
	locations.Get("/countries", controllers.HandleGetCountries)
	locations.Get("/countries/:countryId/regions", controllers.HandleGetRegions)
	locations.Get("/regions/:regionId/cities", controllers.HandleGetCities)
	locations.Get("/currencies", controllers.HandleGetCurrencies)

	cars := api.Group("/cars")
	cars.Get("/brands", controllers.HandleGetBrands)
	cars.Get("/brands/:brandId/models", controllers.HandleGetModels)
	cars.Get("/models/:modelId/generations", controllers.HandleGetGenerations)
	cars.Get("/body-types", controllers.HandleGetBodyTypes)
	cars.Get("/engine-types", controllers.HandleGetEngineTypes)
	cars.Get("/transmissions", controllers.HandleGetTransmissions)
	cars.Get("/drive-types", controllers.HandleGetDriveTypes)
	cars.Get("/colors", controllers.HandleGetColors)
	cars.Get("/features", controllers.HandleGetFeatures)

	conversations := api.Group("/conversations", middleware.RequireAuth)
	conversations.Post("/", controllers.HandleStartConversation)
	conversations.Get("/", controllers.HandleListConversations)
	conversations.Get("/:id/messages", controllers.HandleGetMessages)
	conversations.Post("/:id/messages", controllers.HandleSendMessage)
	conversations.Post("/:id/read", controllers.HandleMarkRead)
	conversations.Post("/:id/leave", controllers.HandleLeaveConversation)

	payments := api.Group("/payments")
	payments.Post("/webhook/:provider", controllers.HandlePaymentWebhook)
	payments.Get("/methods", controllers.HandleGetPaymentMethods)
	payments.Get("/services", controllers.HandleGetPromotionServices)
	payments.Post("/promote", middleware.RequireAuth, controllers.HandlePromoteListing)
	payments.Get("/transactions", middleware.RequireAuth, controllers.HandleListTransactions)
	payments.Get("/balance", middleware.RequireAuth, controllers.HandleGetBalance)
	payments.Get("/promotions", middleware.RequireAuth, controllers.HandleListPromotions)
	payments.Post("/transactions/:id/refund", middleware.RequireAuth, controllers.HandleRefund)

	notifications := api.Group("/notifications", middleware.RequireAuth)
	notifications.Get("/", controllers.HandleListNotifications)
	notifications.Get("/unread-count", controllers.HandleUnreadCount)
	notifications.Post("/read-all", controllers.HandleMarkAllNotificationsRead)
	notifications.Post("/:id/read", controllers.HandleMarkNotificationRead)
	notifications.Get("/settings", controllers.HandleListNotificationSettings)
	notifications.Put("/settings", controllers.HandleUpdateNotificationSetting)

	support := api.Group("/support")
	support.Get("/faq", controllers.HandleListFAQ)
	support.Get("/faq/:id", controllers.HandleGetFAQ)
	support.Post("/tickets", middleware.RequireAuth, controllers.HandleCreateTicket)
	support.Get("/tickets", middleware.RequireAuth, controllers.HandleListMyTickets)
	support.Get("/tickets/:id", middleware.RequireAuth, controllers.HandleGetTicket)
	support.Post("/tickets/:id/rate", middleware.RequireAuth, controllers.HandleRateTicket)

	admin := api.Group("/admin", middleware.RequireAuth, middleware.RequireStaff)
	admin.Get("/dashboard", controllers.HandleAdminDashboard)
	admin.Get("/moderation", controllers.HandleListModerationQueue)
	admin.Post("/moderation/:id", controllers.HandleModerate)
	admin.Get("/reports", controllers.HandleListReports)
	admin.Post("/reports/:id", controllers.HandleResolveReport)
	admin.Get("/tickets", controllers.HandleAdminListTickets)
	admin.Patch("/tickets/:id", controllers.HandleAdminUpdateTicket)
	admin.Get("/users", middleware.RequireAdmin, controllers.HandleAdminListUsers)
	admin.Post("/users/:id", middleware.RequireAdmin, controllers.HandleAdminUserAction)
	admin.Get("/health", middleware.RequireAdmin, controllers.HandleSystemHealth)
}
