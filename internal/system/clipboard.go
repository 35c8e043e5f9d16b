package system

import (
	"errors"

	"github.com/atotto/clipboard"
)

func WriteClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard not supported")
	}
	return clipboard.WriteAll(text)
}
