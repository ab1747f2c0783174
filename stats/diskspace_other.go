//go:build !(linux || darwin)

package stats

import "errors"

func FreeSpace(dir string) (uint64, error) {
	return 0, errors.New("free space lookup not supported on this platform")
}
