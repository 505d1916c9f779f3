//go:build !unix

package binary

// isWritable reports whether the current user may create files in dir.
func isWritable(dir string) bool {
	return probeWritable(dir)
}
