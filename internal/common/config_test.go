package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if got := cfg.Clients.Binance.GetTimeout(); got != 30*time.Second {
		t.Errorf("Binance timeout default = %v, want 30s", got)
	}
	if len(cfg.Clients.Binance.Pairs) != 4 {
		t.Errorf("expected 4 default trading pairs, got %v", cfg.Clients.Binance.Pairs)
	}
	if got := cfg.Jobs.GetSnapshotInterval(); got != 60*time.Second {
		t.Errorf("snapshot interval default = %v, want 60s", got)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("COINFOLIO_SERVER_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_PairsEnvOverride(t *testing.T) {
	t.Setenv("COINFOLIO_BINANCE_PAIRS", "btcusdt, adausdt")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	want := []string{"BTCUSDT", "ADAUSDT"}
	if len(cfg.Clients.Binance.Pairs) != len(want) {
		t.Fatalf("Pairs = %v, want %v", cfg.Clients.Binance.Pairs, want)
	}
	for i := range want {
		if cfg.Clients.Binance.Pairs[i] != want[i] {
			t.Errorf("Pairs[%d] = %s, want %s", i, cfg.Clients.Binance.Pairs[i], want[i])
		}
	}
}

func TestConfig_ValidateRejectsNonUSDTPair(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Clients.Binance.Pairs = []string{"BTCEUR"}

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for non-USDT pair")
	}
}

func TestConfig_ValidateEncryptionKeyLength(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.EncryptionKey = "too-short"

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for short encryption key")
	}

	cfg.Auth.EncryptionKey = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error for 32-byte key: %v", err)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coinfolio.toml")
	content := `
environment = "production"

[server]
port = 9000

[clients.binance]
pairs = ["BTCUSDT"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %s, want production", cfg.Environment)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	// Defaults survive for sections the file omits
	if cfg.Clients.Binance.BaseURL != "https://api.binance.com" {
		t.Errorf("Binance BaseURL = %s, want default", cfg.Clients.Binance.BaseURL)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig should tolerate a missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}
