package bridge

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func shellPath(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return path
}

type recorded struct {
	msg     string
	isError bool
}

func recorder(out *[]recorded) Recorder {
	return func(msg string, isError bool) {
		*out = append(*out, recorded{msg: msg, isError: isError})
	}
}

func TestRunSuccess(t *testing.T) {
	sh := shellPath(t)
	r, err := NewRunner("")
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	var logs []recorded
	res := r.Run(sh, []string{"-c", "echo hello"}, recorder(&logs))
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.Output != "hello\n" {
		t.Fatalf("unexpected output %q", res.Output)
	}
	if len(logs) != 1 || !strings.HasPrefix(logs[0].msg, "run: ") || logs[0].isError {
		t.Fatalf("expected one run entry, got %+v", logs)
	}
}

func TestRunEmptyOutputIsSuccess(t *testing.T) {
	sh := shellPath(t)
	r, _ := NewRunner("")
	res := r.Run(sh, []string{"-c", "true"}, nil)
	if !res.OK() || res.Output != "" {
		t.Fatalf("expected empty success, got %+v", res)
	}
}

func TestRunNonZeroWithStderrFails(t *testing.T) {
	sh := shellPath(t)
	r, _ := NewRunner("")
	var logs []recorded
	res := r.Run(sh, []string{"-c", "echo 'error: no devices/emulators found' >&2; exit 1"}, recorder(&logs))
	if !errors.Is(res.Err, ErrProcess) {
		t.Fatalf("expected ErrProcess, got %v", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "no devices/emulators found") {
		t.Fatalf("expected stderr text in error, got %v", res.Err)
	}
	if len(logs) != 2 || !logs[1].isError {
		t.Fatalf("expected run and error entries, got %+v", logs)
	}
}

func TestRunNonZeroWithoutStderrSucceeds(t *testing.T) {
	sh := shellPath(t)
	r, _ := NewRunner("")
	res := r.Run(sh, []string{"-c", "echo partial; exit 3"}, nil)
	if !res.OK() {
		t.Fatalf("expected success without stderr, got %v", res.Err)
	}
	if res.Output != "partial\n" {
		t.Fatalf("unexpected output %q", res.Output)
	}
}

func TestRunLaunchFailure(t *testing.T) {
	r, _ := NewRunner("")
	var logs []recorded
	res := r.Run(filepath.Join(t.TempDir(), "missing-adb"), []string{"devices"}, recorder(&logs))
	if !errors.Is(res.Err, ErrProcess) {
		t.Fatalf("expected ErrProcess, got %v", res.Err)
	}
	if len(logs) != 2 || !logs[1].isError {
		t.Fatalf("expected launch failure entry, got %+v", logs)
	}
}

func TestRunPrependsGlobalArgs(t *testing.T) {
	sh := shellPath(t)
	r, err := NewRunner(`-c 'echo "$0"'`)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	res := r.Run(sh, []string{"from-command"}, nil)
	if !res.OK() || strings.TrimSpace(res.Output) != "from-command" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNewRunnerRejectsBadQuotes(t *testing.T) {
	if _, err := NewRunner(`-H "unterminated`); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	if err := Check(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	dir := t.TempDir()
	if err := Check(filepath.Join(dir, "adb")); !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if err := Check(dir); !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound for directory, got %v", err)
	}
	path := filepath.Join(dir, "adb")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0700); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Check(path); err != nil {
		t.Fatalf("expected valid path, got %v", err)
	}
}

func TestCommandQuoting(t *testing.T) {
	got := Command("install", "-r", "/tmp/my app.apk")
	if got != `install -r "/tmp/my app.apk"` {
		t.Fatalf("unexpected command %q", got)
	}
}

func TestSplitArgs(t *testing.T) {
	parts, err := SplitArgs(`shell "echo hi"`)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(parts) != 2 || parts[1] != "echo hi" {
		t.Fatalf("unexpected parts %v", parts)
	}
	if _, err := SplitArgs("   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
