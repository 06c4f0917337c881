package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"rojasfit_backend/internals/configs"
	courseModel "rojasfit_backend/internals/features/catalog/courses/model"
	accessModel "rojasfit_backend/internals/features/finance/access/model"
	paymentModel "rojasfit_backend/internals/features/finance/payments/model"
	userModel "rojasfit_backend/internals/features/users/users/model"
)

// DSN builds the postgres URL with statement_timeout aligned to the HTTP timeout.
func DSN(cfg configs.DBConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + cfg.Port,
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	q.Set("application_name", "rojasfit")
	if cfg.StatementTimeout > 0 {
		q.Set("options", fmt.Sprintf("-c statement_timeout=%d", cfg.StatementTimeout.Milliseconds()))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Connect opens the pool. Callers own the handle and must Close it.
func Connect(cfg configs.DBConfig) (*gorm.DB, error) {
	log.Println("[INFO] Connecting to PostgreSQL...")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(cfg),
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	}), &gorm.Config{
		Logger: configs.NewGormLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	log.Println("[INFO] DB connected.")
	return db, nil
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("[WARN] pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUp(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			log.Printf("[WARN] warm-up ping err: %v", err)
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Models lists every table owned by this service, in dependency order.
func Models() []any {
	return []any{
		&userModel.User{},
		&courseModel.Course{},
		&courseModel.CourseModule{},
		&paymentModel.PaymentClaim{},
		&paymentModel.PaymentClaimItem{},
		&paymentModel.PaymentReviewEvent{},
		&accessModel.CourseAccessGrant{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
