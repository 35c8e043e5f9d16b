//go:build unix

package bridge

import "golang.org/x/sys/unix"

func executable(path string) error {
	return unix.Access(path, unix.X_OK)
}
