package binary

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxExtractBytes bounds the total bytes written by one extraction (500 MB).
const maxExtractBytes = 500 << 20

// Extractor handles archive extraction
type Extractor struct {
	maxBytes int64
}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{maxBytes: maxExtractBytes}
}

// Extract unpacks the gzip-compressed tar archive at archivePath into destDir
// and returns the path of the executable named tool.
//
// A top-level entry named tool wins. Otherwise exactly one nested regular
// file with that base name must exist (archives that wrap their contents in
// a single directory). Entries that would land outside destDir fail the
// whole extraction with ErrCorruptArchive; symlinks, hardlinks and devices
// are skipped.
func (e *Extractor) Extract(archivePath, destDir, tool string) (string, error) {
	if tool == "" || strings.ContainsAny(tool, `/\`) {
		return "", fmt.Errorf("invalid executable name %q", tool)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer gzipReader.Close()

	if err := os.MkdirAll(destDir, 0o700); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}
	root, err := filepath.Abs(destDir)
	if err != nil {
		return "", fmt.Errorf("resolve dest dir: %w", err)
	}

	tarReader := tar.NewReader(corruptOnError{gzipReader})
	remaining := e.maxBytes
	var topLevel string
	nested := make(map[string]struct{})

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: read tar header: %v", ErrCorruptArchive, err)
		}

		rel, err := entryPath(header.Name)
		if err != nil {
			return "", err
		}
		if rel == "." {
			continue
		}
		target := filepath.Join(root, rel)
		if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return "", fmt.Errorf("%w: illegal file path %q", ErrCorruptArchive, header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("create directory %s: %w", rel, err)
			}

		case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // TypeRegA appears in old archives
			if header.Size > remaining {
				return "", fmt.Errorf("%w: %s exceeds extraction limit of %d bytes", ErrCorruptArchive, rel, e.maxBytes)
			}
			n, err := writeEntry(target, tarReader, header.FileInfo().Mode().Perm())
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return "", fmt.Errorf("%w: %s is truncated", ErrCorruptArchive, rel)
			}
			if err != nil {
				return "", fmt.Errorf("write %s: %w", rel, err)
			}
			remaining -= n

			if rel == tool {
				topLevel = target
			} else if filepath.Base(rel) == tool {
				nested[target] = struct{}{}
			}

		default:
			// Skip symlinks, hardlinks, char/block devices and FIFOs
			continue
		}
	}

	if topLevel != "" {
		return topLevel, nil
	}

	switch len(nested) {
	case 0:
		return "", fmt.Errorf("%w: no file named %q", ErrExecutableNotFound, tool)
	case 1:
		for path := range nested {
			return path, nil
		}
	}

	paths := make([]string, 0, len(nested))
	for path := range nested {
		rel, _ := filepath.Rel(root, path)
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return "", fmt.Errorf("%w: %d candidate executables named %q: %s",
		ErrCorruptArchive, len(paths), tool, strings.Join(paths, ", "))
}

// entryPath validates an archive entry name and returns it as a clean
// relative path. Absolute names and ".." components are rejected.
func entryPath(name string) (string, error) {
	slashed := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: absolute path %q", ErrCorruptArchive, name)
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: path traversal in %q", ErrCorruptArchive, name)
		}
	}
	return filepath.Clean(filepath.FromSlash(slashed)), nil
}

// writeEntry copies one archive member to target and returns the byte count.
func writeEntry(target string, r io.Reader, perm os.FileMode) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create parent dir: %w", err)
	}

	// Strip setuid/setgid/sticky and group/other write
	perm &= 0o755
	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		return n, err
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close file: %w", err)
	}
	return n, nil
}

// corruptOnError tags decompression failures as ErrCorruptArchive so they
// can be told apart from local write errors.
type corruptOnError struct {
	r io.Reader
}

func (c corruptOnError) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil && err != io.EOF && !errors.Is(err, ErrCorruptArchive) {
		err = fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return n, err
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
