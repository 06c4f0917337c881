package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("[WARN] .env file not found, using system ENV")
		} else {
			log.Println("[INFO] .env file loaded")
		}
	} else {
		log.Println("[INFO] Running in Railway, using system ENV")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvInt(key string, def int) int {
	if v := GetEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[WARN] %s=%q is not an int, using %d", key, v, def)
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	if v := GetEnv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	if v := GetEnv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[WARN] %s=%q is not a duration, using %s", key, v, def)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =======================
// APP CONFIG
// =======================

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
	// DSN overrides the parts above when set (DATABASE_URL).
	DSN              string
	StatementTimeout time.Duration
	LogLevel         gormLogger.LogLevel
}

type Config struct {
	Port           string
	JWTSecret      string
	CorsOrigins    []string
	RequestTimeout time.Duration

	DB DBConfig

	RedisURL       string
	AccessCacheTTL time.Duration
	CartTTL        time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	ResendAPIKey      string
	MailFrom          string
	AdminNotifyEmail  string
	ReconcileSchedule string

	// Upload video modul: OSS kalau ALI_OSS_BUCKET diisi, selain itu disk lokal.
	UploadDir        string
	UploadPublicPath string
	VideoMaxBytes    int64
	OSS              OSSConfig
}

type OSSConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	SecurityToken string
	Bucket        string
	PublicBase    string
}

// Load reads the process environment. Call LoadEnv first when a .env file may exist.
func Load() Config {
	cfg := Config{
		Port:           GetEnv("PORT", "3000"),
		JWTSecret:      GetEnv("JWT_SECRET"),
		CorsOrigins:    splitList(GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RequestTimeout: GetEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		DB: DBConfig{
			User:             GetEnv("DB_USER"),
			Password:         GetEnv("DB_PASSWORD"),
			Host:             GetEnv("DB_HOST", "localhost"),
			Port:             GetEnv("DB_PORT", "5432"),
			Name:             GetEnv("DB_NAME", "rojasfit"),
			SSLMode:          GetEnv("DB_SSLMODE", "require"),
			DSN:              GetEnv("DATABASE_URL"),
			StatementTimeout: GetEnvDuration("DB_STATEMENT_TIMEOUT", 3*time.Second),
			LogLevel:         parseLogLevel(GetEnv("DB_LOG_LEVEL", "warn")),
		},
		RedisURL:          GetEnv("REDIS_URL"),
		AccessCacheTTL:    GetEnvDuration("ACCESS_CACHE_TTL", 5*time.Minute),
		CartTTL:           GetEnvDuration("CART_TTL", 7*24*time.Hour),
		KafkaBrokers:      splitList(GetEnv("KAFKA_BROKERS")),
		KafkaTopic:        GetEnv("KAFKA_PAYMENTS_TOPIC", "payments"),
		ResendAPIKey:      GetEnv("RESEND_API_KEY"),
		MailFrom:          GetEnv("MAIL_FROM", "RojasFit <no-reply@rojasfit.com>"),
		AdminNotifyEmail:  GetEnv("ADMIN_NOTIFY_EMAIL"),
		ReconcileSchedule: GetEnv("RECONCILE_SCHEDULE", "@every 10m"),
		UploadDir:         GetEnv("UPLOAD_DIR", "./uploads"),
		UploadPublicPath:  GetEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
		VideoMaxBytes:     int64(GetEnvInt("VIDEO_MAX_MB", 100)) << 20,
		OSS: OSSConfig{
			Endpoint:      GetEnv("ALI_OSS_ENDPOINT"),
			AccessKey:     GetEnv("ALI_OSS_ACCESS_KEY"),
			SecretKey:     GetEnv("ALI_OSS_SECRET_KEY"),
			SecurityToken: GetEnv("ALI_OSS_SECURITY_TOKEN"),
			Bucket:        GetEnv("ALI_OSS_BUCKET"),
			PublicBase:    GetEnv("ALI_OSS_PUBLIC_BASE"),
		},
	}

	if cfg.JWTSecret == "" {
		log.Println("[ERROR] JWT_SECRET is not set")
	} else {
		log.Println("[INFO] JWT_SECRET loaded")
	}
	return cfg
}

func parseLogLevel(s string) gormLogger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(level gormLogger.LogLevel) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && err != gormLogger.ErrRecordNotFound:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
