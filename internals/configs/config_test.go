package configs

import (
	"testing"
	"time"

	gormLogger "gorm.io/gorm/logger"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("ROJAS_TEST_SET", "  value ")
	t.Setenv("ROJAS_TEST_EMPTY", "")

	if got := GetEnv("ROJAS_TEST_SET", "def"); got != "value" {
		t.Errorf("set key: got %q, want %q", got, "value")
	}
	if got := GetEnv("ROJAS_TEST_EMPTY", "def"); got != "def" {
		t.Errorf("empty key: got %q, want %q", got, "def")
	}
	if got := GetEnv("ROJAS_TEST_MISSING"); got != "" {
		t.Errorf("missing key without default: got %q, want empty", got)
	}
}

func TestTypedEnvFallbacks(t *testing.T) {
	t.Setenv("ROJAS_INT", "abc")
	t.Setenv("ROJAS_BOOL", "true")
	t.Setenv("ROJAS_DUR", "90s")

	if got := GetEnvInt("ROJAS_INT", 7); got != 7 {
		t.Errorf("GetEnvInt invalid: got %d, want 7", got)
	}
	if got := GetEnvBool("ROJAS_BOOL", false); !got {
		t.Error("GetEnvBool: want true")
	}
	if got := GetEnvDuration("ROJAS_DUR", time.Second); got != 90*time.Second {
		t.Errorf("GetEnvDuration: got %s, want 90s", got)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CORS_ORIGINS", "https://rojasfit.com")
	t.Setenv("DB_LOG_LEVEL", "info")
	t.Setenv("VIDEO_MAX_MB", "20")
	t.Setenv("ALI_OSS_BUCKET", "rojasfit")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if len(cfg.CorsOrigins) != 1 {
		t.Errorf("CorsOrigins = %v", cfg.CorsOrigins)
	}
	if cfg.DB.LogLevel != gormLogger.Info {
		t.Errorf("DB.LogLevel = %v", cfg.DB.LogLevel)
	}
	if cfg.ReconcileSchedule != "@every 10m" {
		t.Errorf("ReconcileSchedule default = %q", cfg.ReconcileSchedule)
	}
	if cfg.VideoMaxBytes != 20<<20 {
		t.Errorf("VideoMaxBytes = %d", cfg.VideoMaxBytes)
	}
	if cfg.UploadPublicPath != "/uploads" || cfg.OSS.Bucket != "rojasfit" {
		t.Errorf("upload config = %q, %+v", cfg.UploadPublicPath, cfg.OSS)
	}
}
