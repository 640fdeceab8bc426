//go:build linux

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential hints the kernel that f will be read front to back once.
// Errors are ignored; the hint is optional.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_WILLNEED)
}
