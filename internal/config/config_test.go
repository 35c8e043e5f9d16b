package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bridge.DefaultPort = 70000
	if err := validate(cfg); err == nil {
		t.Fatal("expected validation error for bridge.default_port")
	}
}

func TestValidateRejectsBadLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.Language = "fr"
	if err := validate(cfg); err == nil {
		t.Fatal("expected validation error for ui.language")
	}
}

func TestLoadOptionalMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	cfg, err := LoadOptional(path)
	if err != nil {
		t.Fatalf("load optional error: %v", err)
	}
	if cfg.Bridge.DefaultPort != 5555 {
		t.Fatalf("unexpected default port: %d", cfg.Bridge.DefaultPort)
	}
}

func TestSaveLoadPersistsEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "droidlink.yaml")
	cfg := DefaultConfig()
	cfg.Bridge.Path = "/opt/android-sdk/platform-tools/adb"
	cfg.Device.LastAddress = "192.168.1.20"
	cfg.UI.RefreshInterval = 10 * time.Second
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Bridge.Path != cfg.Bridge.Path || got.Device.LastAddress != "192.168.1.20" {
		t.Fatalf("edits not persisted: %+v", got)
	}
	if got.UI.RefreshInterval != 10*time.Second {
		t.Fatalf("unexpected refresh interval %s", got.UI.RefreshInterval)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "droidlink.yaml")
	if err := os.WriteFile(path, []byte("bridge:\n  path: /usr/bin/adb\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bridge.Path != "/usr/bin/adb" || cfg.Log.Limit != 100 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestWatchErrors(t *testing.T) {
	if _, err := Watch(context.Background(), "", func(Config, error) {}); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Watch(context.Background(), "x.yaml", nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "droidlink.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := make(chan Config, 8)
	stop, err := Watch(context.Background(), path, func(cfg Config, err error) {
		if err != nil {
			return
		}
		select {
		case got <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	cfg := DefaultConfig()
	cfg.Device.LastAddress = "10.0.0.5"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Device.LastAddress == "10.0.0.5" {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}

func TestSetKeys(t *testing.T) {
	cfg := DefaultConfig()
	if err := Set(&cfg, "bridge.default_port", "5037"); err != nil {
		t.Fatalf("set port: %v", err)
	}
	if err := Set(&cfg, "ui.refresh_interval", "30s"); err != nil {
		t.Fatalf("set interval: %v", err)
	}
	if err := Set(&cfg, "bridge.interfaces", "wlan1, eth0"); err != nil {
		t.Fatalf("set interfaces: %v", err)
	}
	if cfg.Bridge.DefaultPort != 5037 || cfg.UI.RefreshInterval != 30*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Bridge.Interfaces) != 2 || cfg.Bridge.Interfaces[0] != "wlan1" {
		t.Fatalf("unexpected interfaces %v", cfg.Bridge.Interfaces)
	}
	if err := Set(&cfg, "log.file", ""); err != nil || cfg.Log.File != "" {
		t.Fatalf("clear log file: %v %q", err, cfg.Log.File)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Set(&cfg, "ui.language", "fr"); err == nil {
		t.Fatal("expected validation error")
	}
	if cfg.UI.Language != "en" {
		t.Fatalf("config changed on error: %s", cfg.UI.Language)
	}
	if err := Set(&cfg, "nope", "x"); err == nil {
		t.Fatal("expected unknown key error")
	}
	if err := Set(&cfg, "log.limit", "many"); err == nil {
		t.Fatal("expected parse error")
	}
}
