//go:build !linux

package emulator

import (
	"errors"
	"os"
)

var errNoRawMode = errors.New("raw terminal mode unsupported on this platform")

// enterRawMode is unavailable off Linux; the console falls back to the
// cooked line loop.
func enterRawMode(*os.File) (func(), error) {
	return nil, errNoRawMode
}
