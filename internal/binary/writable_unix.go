//go:build unix

package binary

import "golang.org/x/sys/unix"

// isWritable reports whether the current user may create files in dir.
func isWritable(dir string) bool {
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return false
	}
	return probeWritable(dir)
}
