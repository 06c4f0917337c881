package routes

import (
	"context"
	"log"

	"gorm.io/gorm"

	"rojasfit_backend/internals/caches"
	"rojasfit_backend/internals/configs"
	"rojasfit_backend/internals/events"
	courseRepo "rojasfit_backend/internals/features/catalog/courses/repository"
	courseService "rojasfit_backend/internals/features/catalog/courses/service"
	accessRepo "rojasfit_backend/internals/features/finance/access/repository"
	accessService "rojasfit_backend/internals/features/finance/access/service"
	cartService "rojasfit_backend/internals/features/finance/carts/service"
	paymentRepo "rojasfit_backend/internals/features/finance/payments/repository"
	paymentService "rojasfit_backend/internals/features/finance/payments/service"
	statsService "rojasfit_backend/internals/features/stats/admin_stats/service"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
	"rojasfit_backend/internals/notifications"
	routeDetails "rojasfit_backend/internals/route/details"
	"rojasfit_backend/internals/storage"
)

// Infra: koneksi luar yang opsional (Redis, Kafka, Resend, OSS).
type Infra struct {
	Cache       caches.Store
	CacheKind   string
	Events      events.Publisher
	Mailer      notifications.Mailer
	Storage     storage.Store
	StorageKind string // "oss" | "local" | ""
	KafkaOn     bool
	MailOn      bool
}

// OpenInfra connects whatever the config enables. Anything unset or
// unreachable falls back to the in-process implementation.
func OpenInfra(ctx context.Context, cfg configs.Config) Infra {
	infra := Infra{
		Cache:     caches.NewMemoryStore(),
		CacheKind: "memory",
		Events:    events.NoopPublisher{},
		Mailer:    notifications.LogMailer{},
	}

	if cfg.RedisURL != "" {
		if rs, err := caches.NewRedisStore(ctx, cfg.RedisURL); err != nil {
			log.Printf("[WARN] redis unavailable, using memory store: %v", err)
		} else {
			infra.Cache, infra.CacheKind = rs, "redis"
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		if kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 5); err != nil {
			log.Printf("[WARN] kafka unavailable, events disabled: %v", err)
		} else {
			infra.Events, infra.KafkaOn = kp, true
		}
	}

	if cfg.ResendAPIKey != "" {
		infra.Mailer, infra.MailOn = notifications.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom), true
	} else {
		log.Println("[INFO] RESEND_API_KEY not set, emails are logged only")
	}

	if cfg.OSS.Bucket != "" {
		store, err := storage.NewOSSStore(storage.OSSConfig{
			Endpoint:      cfg.OSS.Endpoint,
			AccessKey:     cfg.OSS.AccessKey,
			SecretKey:     cfg.OSS.SecretKey,
			SecurityToken: cfg.OSS.SecurityToken,
			Bucket:        cfg.OSS.Bucket,
			PublicBase:    cfg.OSS.PublicBase,
		})
		if err != nil {
			log.Printf("[WARN] oss unavailable, storing uploads locally: %v", err)
		} else {
			infra.Storage, infra.StorageKind = store, "oss"
		}
	}
	if infra.Storage == nil {
		if store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadPublicPath); err != nil {
			log.Printf("[WARN] video uploads disabled: %v", err)
		} else {
			infra.Storage, infra.StorageKind = store, "local"
		}
	}
	return infra
}

func (i Infra) Close() {
	if i.Events != nil {
		if err := i.Events.Close(); err != nil {
			log.Printf("[WARN] close kafka: %v", err)
		}
	}
	if i.Cache != nil {
		if err := i.Cache.Close(); err != nil {
			log.Printf("[WARN] close cache: %v", err)
		}
	}
}

// NewDeps merakit repository dan service di atas satu *gorm.DB.
func NewDeps(db *gorm.DB, cfg configs.Config, infra Infra) Deps {
	if infra.Cache == nil {
		infra.Cache = caches.NewMemoryStore()
		infra.CacheKind = "memory"
	}

	users := userRepo.NewUserRepository(db)
	courses := courseRepo.NewCourseRepository(db)
	grants := accessRepo.NewGrantRepository(db)
	claims := paymentRepo.NewPaymentClaimRepository(db)

	access := accessService.NewAccessService(users, grants, infra.Cache, cfg.AccessCacheTTL)

	payments := paymentService.NewPaymentClaimService(claims, grants, users, courses)
	payments.Access = access
	payments.AdminEmail = cfg.AdminNotifyEmail
	if infra.Events != nil {
		payments.Events = infra.Events
	}
	if infra.Mailer != nil {
		payments.Mailer = infra.Mailer
	}

	catalog := courseService.NewCourseService(courses, access)
	catalog.Videos = infra.Storage
	if cfg.VideoMaxBytes > 0 {
		catalog.VideoMaxBytes = cfg.VideoMaxBytes
	}

	return Deps{
		DB:          db,
		Cache:       infra.Cache,
		CacheKind:   infra.CacheKind,
		StorageKind: infra.StorageKind,
		UploadDir:   cfg.UploadDir,
		UploadPath:  cfg.UploadPublicPath,
		KafkaOn:     infra.KafkaOn,
		MailOn:      infra.MailOn,
		JWTSecret:   cfg.JWTSecret,

		Users:   users,
		Courses: catalog,
		Finance: routeDetails.FinanceServices{
			Payments: payments,
			Access:   access,
			Carts:    cartService.NewCartService(infra.Cache, courses, payments, payments, cfg.CartTTL),
			Courses:  courses,
			Users:    users,
		},
		Stats: statsService.NewAdminStatsService(users, courses, claims, grants),
	}
}
