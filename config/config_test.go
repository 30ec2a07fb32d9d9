package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DB_DRIVER", "SERVER_PORT", "SQLITE_PATH", "LOG_LEVEL", "CORS_ORIGINS",
		"PASSIVE_INCOME", "PASSIVE_REVENUE_PERIOD", "SAVE_PERIOD", "FRAME_INTERVAL", "API_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if !cfg.PassiveIncome || cfg.RevenuePeriod != time.Second || cfg.SavePeriod != 30*time.Second {
		t.Errorf("simulation = %v/%v/%v", cfg.PassiveIncome, cfg.RevenuePeriod, cfg.SavePeriod)
	}
	if cfg.FrameInterval != 16*time.Millisecond {
		t.Errorf("FrameInterval = %v", cfg.FrameInterval)
	}
	if cfg.APIURL != "" {
		t.Errorf("APIURL = %q, want empty", cfg.APIURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("PASSIVE_INCOME", "false")
	t.Setenv("SAVE_PERIOD", "5s")
	t.Setenv("DB_MAX_RETRIES", "3")
	t.Setenv("API_URL", "http://localhost:3000/api")

	cfg := Load()
	if cfg.DBDriver != DriverMemory {
		t.Errorf("DBDriver = %q, want memory", cfg.DBDriver)
	}
	if cfg.ServerPort != "8080" || cfg.DBMaxRetries != 3 {
		t.Errorf("ServerPort = %q, DBMaxRetries = %d", cfg.ServerPort, cfg.DBMaxRetries)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.PassiveIncome || cfg.SavePeriod != 5*time.Second {
		t.Errorf("PassiveIncome = %v, SavePeriod = %v", cfg.PassiveIncome, cfg.SavePeriod)
	}
	if cfg.APIURL != "http://localhost:3000/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("PASSIVE_INCOME", "sometimes")
	t.Setenv("SAVE_PERIOD", "-1s")
	t.Setenv("FRAME_INTERVAL", "fast")
	t.Setenv("DB_MAX_RETRIES", "many")

	cfg := Load()
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want sqlite fallback", cfg.DBDriver)
	}
	if !cfg.PassiveIncome {
		t.Error("PassiveIncome fallback = false, want true")
	}
	if cfg.SavePeriod != 30*time.Second || cfg.FrameInterval != 16*time.Millisecond {
		t.Errorf("durations = %v/%v", cfg.SavePeriod, cfg.FrameInterval)
	}
	if cfg.DBMaxRetries != 30 {
		t.Errorf("DBMaxRetries = %d, want 30", cfg.DBMaxRetries)
	}
}
