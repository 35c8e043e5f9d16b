package paths

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	EnvHome    = "DROIDLINK_HOME"
	ConfigName = "droidlink.yaml"
)

func HomeDir() (string, error) {
	if v := os.Getenv(EnvHome); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if home == "" {
		return "", errors.New("home directory not found")
	}
	return filepath.Join(home, ".droidlink"), nil
}

func EnsureDir(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	return os.MkdirAll(path, 0700)
}

// ConfigPath returns explicit when set, otherwise the config file inside the
// home directory. The home directory is created on the way.
func ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	homeDir, err := HomeDir()
	if err != nil {
		return ConfigName
	}
	_ = EnsureDir(homeDir)
	return filepath.Join(homeDir, ConfigName)
}

// ResolveInHome anchors a configured path at the home directory. Absolute
// paths pass through.
func ResolveInHome(homeDir, rel string) string {
	if rel == "" {
		return homeDir
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(homeDir, rel)
}
