package ui

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"droidlink/internal/bridge"
	"droidlink/internal/config"
	"droidlink/internal/logsink"
)

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	calls   []string
}

func (f *fakeRunner) Run(path string, args []string, rec bridge.Recorder) bridge.Result {
	cmd := strings.Join(args, " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	return bridge.Result{Output: f.outputs[cmd]}
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestModel(t *testing.T, configPath string) (model, *fakeRunner) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("executable bit check")
	}
	path := filepath.Join(t.TempDir(), "adb")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0700); err != nil {
		t.Fatalf("write bridge: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Bridge.Path = path
	r := &fakeRunner{outputs: map[string]string{
		"devices -l": "List of devices attached\nemulator-5554\tdevice product:sdk\n",
		"-s emulator-5554 shell ip -f inet addr show wlan0": "3: wlan0: <UP>\n    inet 192.168.1.77/24 brd 192.168.1.255 scope global wlan0\n",
	}}
	return newModel(cfg, configPath, r, nil), r
}

func press(m model, k string) model {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(model)
}

// settle applies completions until nothing is in flight.
func settle(t *testing.T, m model) model {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for m.o.Busy() {
		select {
		case c := <-m.o.Completions():
			next, _ := m.Update(completionMsg(c))
			m = next.(model)
		case <-timeout:
			t.Fatal("operation did not complete")
		}
	}
	return m
}

func TestRefreshKey(t *testing.T) {
	m, _ := newTestModel(t, "")
	m = press(m, "r")
	if !m.o.Busy() {
		t.Fatal("expected busy after refresh")
	}
	m = settle(t, m)
	if m.o.Registry().Len() != 1 {
		t.Fatalf("expected one device, got %d", m.o.Registry().Len())
	}
	if !strings.Contains(m.View(), "emulator-5554") {
		t.Fatal("device missing from view")
	}
}

func TestActionsIgnoredWhileBusy(t *testing.T) {
	m, r := newTestModel(t, "")
	m = press(m, "r")
	m = press(m, "r")
	if m.notice == "" {
		t.Fatal("expected busy notice")
	}
	m = settle(t, m)
	if r.count() != 1 {
		t.Fatalf("expected one bridge call, got %d", r.count())
	}
}

func TestFailureNeedsAcknowledgement(t *testing.T) {
	m, r := newTestModel(t, "")
	m = press(m, "c")
	if _, pending := m.o.PendingAck(); !pending {
		t.Fatal("expected pending acknowledgement for empty address")
	}
	if m.o.Busy() {
		t.Fatal("rejected connect must not be busy")
	}
	if !strings.Contains(m.View(), "Operation failed") {
		t.Fatal("modal not rendered")
	}
	m = press(m, "r")
	if m.o.Busy() || r.count() != 0 {
		t.Fatal("keys must be blocked until acknowledged")
	}
	m = press(m, "enter")
	if _, pending := m.o.PendingAck(); pending {
		t.Fatal("acknowledgement not cleared")
	}
}

func TestResolveIPFillsAddress(t *testing.T) {
	m, _ := newTestModel(t, "")
	m = settle(t, press(m, "r"))
	m = settle(t, press(m, "p"))
	if got := m.inputs[fieldAddress].Value(); got != "192.168.1.77" {
		t.Fatalf("address field not filled: %q", got)
	}
	if m.cfg.Device.LastAddress != "192.168.1.77" {
		t.Fatalf("address not kept in config: %q", m.cfg.Device.LastAddress)
	}
}

func TestPersistWritesConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "droidlink.yaml")
	m, _ := newTestModel(t, configPath)
	m.inputs[fieldAddress].SetValue("10.0.0.9")
	m.inputs[fieldPort].SetValue("5037")
	m.persist()
	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Device.LastAddress != "10.0.0.9" || cfg.Bridge.DefaultPort != 5037 {
		t.Fatalf("unexpected saved config %+v", cfg)
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m, _ := newTestModel(t, "")
	for i := 0; i < fieldCount; i++ {
		m = press(m, "tab")
		if m.focused != i {
			t.Fatalf("expected focus %d, got %d", i, m.focused)
		}
	}
	m = press(m, "tab")
	if m.focused != focusDevices {
		t.Fatalf("expected device focus, got %d", m.focused)
	}
}

func TestRenderLog(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local)
	out := renderLog([]logsink.Entry{
		{Time: at, Message: "run: devices -l"},
		{Time: at, Message: "bridge error: boom", IsError: true},
	}, newStyles("dark"))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || lines[0] != "[15:04:05] run: devices -l" || !strings.Contains(lines[1], "bridge error: boom") {
		t.Fatalf("unexpected log render %q", out)
	}
}

func TestSelectionSurvivesRefresh(t *testing.T) {
	m, r := newTestModel(t, "")
	r.outputs["devices -l"] = "List of devices attached\nemulator-5554\tdevice\n192.168.1.77:5555\tdevice\n"
	m = settle(t, press(m, "r"))
	m = press(m, "j")
	if m.selectedID() != "192.168.1.77:5555" {
		t.Fatalf("unexpected selection %q", m.selectedID())
	}
	m = settle(t, press(m, "r"))
	if m.selectedID() != "192.168.1.77:5555" {
		t.Fatalf("selection lost on refresh: %q", m.selectedID())
	}
}

func TestKeyboardOperationTracked(t *testing.T) {
	m, _ := newTestModel(t, "")
	m = settle(t, press(m, "r"))
	if m.inflight != uuid.Nil {
		t.Fatal("refresh still tracked after completion")
	}
	m = press(m, "p")
	if m.inflight == uuid.Nil {
		t.Fatal("resolve ip not tracked")
	}
	m = settle(t, m)
	if m.inflight != uuid.Nil {
		t.Fatal("resolve ip still tracked after completion")
	}
	if got := m.inputs[fieldAddress].Value(); got != "192.168.1.77" {
		t.Fatalf("address field not filled: %q", got)
	}
}
