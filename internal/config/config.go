package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
	Device DeviceConfig `yaml:"device"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log"`
	Notify NotifyConfig `yaml:"notify"`
}

type BridgeConfig struct {
	Path        string   `yaml:"path"`
	DefaultPort int      `yaml:"default_port"`
	GlobalArgs  string   `yaml:"global_args"`
	Interfaces  []string `yaml:"interfaces"`
}

type DeviceConfig struct {
	LastAddress string `yaml:"last_address"`
	LastPackage string `yaml:"last_package"`
}

type UIConfig struct {
	Language        string        `yaml:"language"`
	Theme           string        `yaml:"theme"`
	AutoRefresh     bool          `yaml:"auto_refresh"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type LogConfig struct {
	Limit int `yaml:"limit"`
	// File is the TUI's log file, relative to the home directory unless
	// absolute. Empty disables it.
	File string `yaml:"file"`
}

type NotifyConfig struct {
	Desktop   bool `yaml:"desktop"`
	TimeoutMs int  `yaml:"timeout_ms"`
}

func DefaultConfig() Config {
	return Config{
		Bridge: BridgeConfig{
			Path:        "",
			DefaultPort: 5555,
			GlobalArgs:  "",
			Interfaces:  []string{"wlan0", "eth0", "eth1"},
		},
		Device: DeviceConfig{
			LastAddress: "",
			LastPackage: "",
		},
		UI: UIConfig{
			Language:        "en",
			Theme:           "dark",
			AutoRefresh:     true,
			RefreshInterval: 5 * time.Second,
		},
		Log: LogConfig{
			Limit: 100,
			File:  "logs/droidlink.log",
		},
		Notify: NotifyConfig{
			Desktop:   false,
			TimeoutMs: 8000,
		},
	}
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return decode(data)
}

func LoadOptional(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	return decode(data)
}

func decode(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(&cfg)
}

func validate(cfg Config) error {
	if cfg.Bridge.DefaultPort < 1 || cfg.Bridge.DefaultPort > 65535 {
		return errors.New("bridge.default_port must be 1..65535")
	}
	for _, iface := range cfg.Bridge.Interfaces {
		if iface == "" {
			return errors.New("bridge.interfaces must not contain empty names")
		}
	}
	switch cfg.UI.Language {
	case "en", "zh":
	default:
		return errors.New("ui.language must be en|zh")
	}
	switch cfg.UI.Theme {
	case "dark", "light":
	default:
		return errors.New("ui.theme must be dark|light")
	}
	if cfg.UI.AutoRefresh && cfg.UI.RefreshInterval < time.Second {
		return fmt.Errorf("ui.refresh_interval must be at least 1s (got %s)", cfg.UI.RefreshInterval)
	}
	if cfg.Log.Limit < 1 || cfg.Log.Limit > 10000 {
		return errors.New("log.limit must be 1..10000")
	}
	if cfg.Notify.TimeoutMs < 0 {
		return errors.New("notify.timeout_ms must not be negative")
	}
	return nil
}
