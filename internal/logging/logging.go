package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

const prefix = "[droidlink] "

func New() *log.Logger {
	return log.New(os.Stdout, prefix, log.LstdFlags)
}

// NewFile appends to path, creating parent directories. The TUI uses it
// because stdout belongs to the terminal renderer.
func NewFile(path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, prefix, log.LstdFlags), f, nil
}
