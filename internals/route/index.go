// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rojasfit_backend/internals/caches"
	"rojasfit_backend/internals/constants"
	courseService "rojasfit_backend/internals/features/catalog/courses/service"
	statsService "rojasfit_backend/internals/features/stats/admin_stats/service"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
	"rojasfit_backend/internals/middlewares"
	authMiddleware "rojasfit_backend/internals/middlewares/auth"
	routeDetails "rojasfit_backend/internals/route/details"
)

var startTime time.Time

// Deps: semua service yang sudah dirakit di main.
type Deps struct {
	DB        *gorm.DB
	Cache     caches.Store
	CacheKind string // "redis" | "memory"
	KafkaOn   bool
	MailOn    bool
	JWTSecret string

	StorageKind string // "oss" | "local" | ""
	UploadDir   string
	UploadPath  string

	Users   *userRepo.UserRepository
	Courses *courseService.CourseService
	Finance routeDetails.FinanceServices
	Stats   *statsService.AdminStatsService
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d)

	// video modul yang disimpan di disk lokal
	if d.StorageKind == "local" && d.UploadPath != "" {
		app.Static(d.UploadPath, d.UploadDir, fiber.Static{ByteRange: true, MaxAge: 86400})
	}

	auth := authMiddleware.AuthMiddleware(d.Users, d.JWTSecret)

	// ===================== GROUPS =====================
	api := app.Group("/api")

	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := api.Group("/admin",
		auth,
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("admin area"), constants.AdminOnly...),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Finance routes...")
	routeDetails.FinanceRoutes(api, d.Finance, auth, middlewares.SubmitRateLimiter())
	routeDetails.FinanceAdminRoutes(admin, d.Finance)

	log.Println("[INFO] Mounting Catalog routes...")
	routeDetails.CatalogPublicRoutes(api, d.Courses, auth)
	routeDetails.CatalogAdminRoutes(admin, d.Courses)

	log.Println("[INFO] Mounting User routes...")
	routeDetails.UserRoutes(api, d.Users, auth)
	routeDetails.UserAdminRoutes(admin, d.Users, d.Stats)
}
