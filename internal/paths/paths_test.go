package paths

import (
	"path/filepath"
	"testing"
)

func TestHomeDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	got, err := HomeDir()
	if err != nil {
		t.Fatalf("home dir: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %s, got %s", dir, got)
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	if got := ConfigPath(""); got != filepath.Join(dir, ConfigName) {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := ConfigPath("/etc/droidlink.yaml"); got != "/etc/droidlink.yaml" {
		t.Fatalf("explicit path ignored: %s", got)
	}
}

func TestResolveInHome(t *testing.T) {
	if got := ResolveInHome("/home/u/.droidlink", "apks"); got != filepath.Join("/home/u/.droidlink", "apks") {
		t.Fatalf("unexpected path %s", got)
	}
	if got := ResolveInHome("/home/u/.droidlink", ""); got != "/home/u/.droidlink" {
		t.Fatalf("unexpected path %s", got)
	}
	if got := ResolveInHome("/home/u/.droidlink", "logs/droidlink.log"); got != filepath.Join("/home/u/.droidlink", "logs", "droidlink.log") {
		t.Fatalf("unexpected log path %s", got)
	}
	abs := filepath.Join(t.TempDir(), "dl.log")
	if got := ResolveInHome("/home/u/.droidlink", abs); got != abs {
		t.Fatalf("absolute path rewritten: %s", got)
	}
}
