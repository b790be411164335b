//go:build !linux

package mei

import "os"

func openDevice(path string) (Handle, error) {
	return nil, &os.PathError{Op: "open", Path: path, Err: ErrNotSupported}
}
