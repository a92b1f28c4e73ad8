package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	if c.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite driver by default, got %q", c.DBDriver)
	}
	if c.AppPort == "" || c.NotifyBuffer == 0 || c.HistoryLimit == 0 {
		t.Fatalf("expected defaults to be populated: %+v", c)
	}
	if c.RedisEnabled || c.AuthEnabled {
		t.Fatalf("redis and auth must be opt-in")
	}
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"app": {"AppPort": "9000", "AllowedOrigins": ["http://a", "http://b"]},
		"database": {"Driver": "postgres", "DBName": "tracker"},
		"redis": {"Enabled": true, "CacheTTLSeconds": 42},
		"tracker": {"Timezone": "Europe/Moscow", "NotifyBuffer": 4}
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.AppPort != "9000" || len(c.AllowedOrigins) != 2 {
		t.Fatalf("app section not applied: %+v", c)
	}
	if c.DBDriver != "postgres" || c.DBName != "tracker" {
		t.Fatalf("database section not applied: %+v", c)
	}
	if !c.RedisEnabled || c.CacheTTL() != 42*time.Second {
		t.Fatalf("redis section not applied: %+v", c)
	}
	if c.Timezone != "Europe/Moscow" || c.NotifyBuffer != 4 {
		t.Fatalf("tracker section not applied: %+v", c)
	}
}

func TestLoadJSONConfigMissingFile(t *testing.T) {
	var c AppConfig
	if err := loadJSONConfig(filepath.Join(t.TempDir(), "nope.json"), &c); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("ROLLOVER_SCHEDULER_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://x , ,http://y ")
	var c AppConfig
	applyDefaults(&c)
	applyEnvOverrides(&c)
	if c.DBDriver != "mysql" {
		t.Fatalf("expected lower-cased driver, got %q", c.DBDriver)
	}
	if !c.DisableRolloverScheduler {
		t.Fatalf("expected scheduler disabled")
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "http://y" {
		t.Fatalf("unexpected origins %v", c.AllowedOrigins)
	}
}

func TestLocationFallback(t *testing.T) {
	if loc := (AppConfig{Timezone: "Not/AZone"}).Location(); loc != time.Local {
		t.Fatalf("expected fallback to local, got %v", loc)
	}
	if loc := (AppConfig{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v", loc)
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	if _, err := Dialector(AppConfig{DBDriver: "oracle"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if d, err := Dialector(AppConfig{DBDriver: "postgres", DBHost: "h", DBPort: "5432"}); err != nil || d.Name() != "postgres" {
		t.Fatalf("postgres dialector: %v %v", d, err)
	}
}
