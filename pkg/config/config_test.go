package config

import (
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CATEGORY_DELETE_POLICY", "Cascade")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}
	if cfg.Catalog.CategoryDeletePolicy != DeleteCascade {
		t.Errorf("Expected policy to be lower-cased to %q, got %q", DeleteCascade, cfg.Catalog.CategoryDeletePolicy)
	}
	if cfg.DB.MaxOpenConns != 100 {
		t.Errorf("Expected invalid int to fall back to 100, got %d", cfg.DB.MaxOpenConns)
	}
	if cfg.Catalog.DistributionTopN != 5 {
		t.Errorf("Expected top 5 categories by default, got %d", cfg.Catalog.DistributionTopN)
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	t.Setenv("CATEGORY_DELETE_POLICY", "explode")
	if _, err := Load(); err == nil {
		t.Fatal("Expected an error for an unknown delete policy")
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	c.URL = "postgres://u:p@db/n"
	if got := c.DSN(); got != c.URL {
		t.Errorf("Expected DATABASE_URL to win, got %q", got)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_DURATION", "90s")
	t.Setenv("X_LEVEL", "silent")

	if got := getEnvAsDuration("X_DURATION", time.Hour); got != 90*time.Second {
		t.Errorf("Expected 90s, got %v", got)
	}
	if got := getEnvAsDuration("X_MISSING", time.Hour); got != time.Hour {
		t.Errorf("Expected default duration, got %v", got)
	}
	if got := getEnvAsLogLevel("X_LEVEL", logger.Info); got != logger.Silent {
		t.Errorf("Expected silent log level, got %v", got)
	}
}
