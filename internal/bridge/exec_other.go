//go:build !unix

package bridge

func executable(string) error {
	return nil
}
