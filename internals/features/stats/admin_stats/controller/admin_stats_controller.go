// file: internals/features/stats/admin_stats/controller/admin_stats_controller.go
package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/features/stats/admin_stats/service"
	helper "rojasfit_backend/internals/helpers"
)

type AdminStatsController struct {
	Service *service.AdminStatsService
}

func NewAdminStatsController(svc *service.AdminStatsService) *AdminStatsController {
	return &AdminStatsController{Service: svc}
}

/* =========================
   GET /api/admin/stats
========================= */

func (ctl *AdminStatsController) Get(c *fiber.Ctx) error {
	stats, err := ctl.Service.Snapshot(c.UserContext())
	if err != nil {
		log.Printf("[ERROR] admin stats: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "gagal mengambil statistik")
	}
	return helper.JsonOK(c, "ok", stats)
}
