package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "droidlink.log")
	for _, msg := range []string{"first", "second"} {
		logger, closer, err := NewFile(path)
		if err != nil {
			t.Fatalf("new file: %v", err)
		}
		logger.Println(msg)
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if strings.Count(text, "[droidlink] ") != 2 || !strings.Contains(text, "first") || !strings.Contains(text, "second") {
		t.Fatalf("unexpected log file:\n%s", text)
	}
}
