package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"rojasfit_backend/internals/configs"
	database "rojasfit_backend/internals/databases"
	"rojasfit_backend/internals/features/finance/payments/scheduler"
	helper "rojasfit_backend/internals/helpers"
	middlewares "rojasfit_backend/internals/middlewares"
	routes "rojasfit_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Load()

	// body terbesar: upload video modul (multipart)
	bodyLimit := 12 * 1024 * 1024 // proof image base64
	if v := int(cfg.VideoMaxBytes) + 1<<20; v > bodyLimit {
		bodyLimit = v
	}

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.ErrorHandler,
		DisableStartupMessage:   true,
		BodyLimit:               bodyLimit,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	middlewares.SetupMiddlewares(app, cfg)

	// 🔌 DB connect + pool + warm-up
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	database.TunePool(db)
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	database.WarmUp(db)

	infra := routes.OpenInfra(context.Background(), cfg)
	deps := routes.NewDeps(db, cfg, infra)

	// ✅ Routes
	routes.SetupRoutes(app, deps)

	// ⏱ scheduler setelah DB siap
	reconciler, err := scheduler.Start(cfg.ReconcileSchedule, &scheduler.ReconcileJob{
		Service: deps.Finance.Payments,
		Batch:   100,
	})
	if err != nil {
		log.Printf("[WARN] reconcile scheduler disabled: %v", err)
	}

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if reconciler != nil {
		<-reconciler.Stop().Done()
	}
	infra.Close()
	if err := database.Close(db); err != nil {
		log.Printf("[WARN] close db: %v", err)
	}
}
