//go:build linux

package emulator

import (
	"os"

	"golang.org/x/sys/unix"
)

// enterRawMode disables canonical input and echo on the terminal so the
// console can read single keystrokes. The returned function restores the
// previous settings. Fails when fd is not a TTY.
func enterRawMode(f *os.File) (func(), error) {
	fd := int(f.Fd())
	old, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	raw := *old
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, err
	}

	return func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, old)
	}, nil
}
