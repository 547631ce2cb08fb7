package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/lazos-app/lazos-api/app/controllers"
	"github.com/lazos-app/lazos-api/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := api.Group("/v1")

	// Submissions and reports are rate limited per client IP, reads are not
	writeLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
	})

	v1.Get("/posts", controllers.HandleListPosts)
	v1.Get("/posts/:uuid", controllers.HandleGetPost)
	v1.Post("/posts", writeLimiter, controllers.HandleCreatePost)

	v1.Get("/alerts", controllers.HandleListAlerts)
	v1.Get("/alerts/:uuid", controllers.HandleGetAlert)
	v1.Post("/alerts", writeLimiter, controllers.HandleCreateAlert)

	v1.Post("/reports", writeLimiter, controllers.HandleCreateReport)

	v1.Get("/search", controllers.HandleSearch)

	h.registerAdminRoutes(v1)
}

func (h ApiRouter) registerAdminRoutes(v1 fiber.Router) {
	admin := v1.Group("/admin", middleware.RequireAdmin())

	admin.Get("/reports", controllers.HandleAdminListReports)
	admin.Post("/reports/:uuid/resolve", controllers.HandleAdminResolveReport)

	admin.Get("/posts/pending", controllers.HandleAdminListPendingPosts)
	admin.Get("/posts/:uuid", controllers.HandleAdminGetPost)
	admin.Post("/posts/:uuid/approve", controllers.HandleAdminApprovePost)
	admin.Post("/posts/:uuid/reject", controllers.HandleAdminRejectPost)
	admin.Delete("/posts/:uuid", controllers.HandleAdminDeletePost)

	admin.Delete("/alerts/:uuid", controllers.HandleAdminDeleteAlert)

	admin.Get("/stats", controllers.HandleAdminStats)
}
