package bridge

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Check validates a configured bridge path before any command is issued.
func Check(path string) error {
	if path == "" {
		return fmt.Errorf("%w: bridge path is empty", ErrValidation)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrToolNotFound, path)
	}
	if err := executable(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrToolNotFound, path, err)
	}
	return nil
}

// Locate guesses the bridge path from the Android SDK environment, then PATH.
func Locate() (string, error) {
	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}
	for _, env := range []string{"ANDROID_SDK_ROOT", "ANDROID_HOME"} {
		root := os.Getenv(env)
		if root == "" {
			continue
		}
		candidate := filepath.Join(root, "platform-tools", name)
		if Check(candidate) == nil {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: set ANDROID_SDK_ROOT or add adb to PATH", ErrToolNotFound)
	}
	return path, nil
}
