// FilePath: internal/config/config_test.go
package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Sui.RPCURL != "https://fullnode.testnet.sui.io:443" {
		t.Errorf("rpc url = %s", cfg.Sui.RPCURL)
	}
	if cfg.Sui.ClockObjectID != "0x6" || cfg.Sui.ClockInitialVersion != 1 {
		t.Errorf("clock defaults = %s v%d", cfg.Sui.ClockObjectID, cfg.Sui.ClockInitialVersion)
	}
	if cfg.Sui.GasBudget != 100000000 {
		t.Errorf("gas budget = %d, want 100000000", cfg.Sui.GasBudget)
	}
	if cfg.Throttle.MaxRequests != 10 || cfg.Throttle.Window != 60*time.Second {
		t.Errorf("throttle defaults = %d/%s", cfg.Throttle.MaxRequests, cfg.Throttle.Window)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled without a host")
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled without a host")
	}
}

func TestSuiConfigHelpers(t *testing.T) {
	cfg := SuiConfig{
		Network:      "testnet",
		PackageID:    "0xabc",
		ExplorerBase: "https://suiscan.xyz",
	}

	if got := cfg.ReadingStructType(); got != "0xabc::sensor_storage::SensorData" {
		t.Errorf("struct type = %s", got)
	}
	if got := cfg.ExplorerURL("DIGEST"); got != "https://suiscan.xyz/testnet/tx/DIGEST" {
		t.Errorf("explorer url = %s", got)
	}
}
