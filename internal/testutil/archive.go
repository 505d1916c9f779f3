package testutil

import (
	"archive/tar"
	"bytes"
	"os"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// TarEntry describes one member of a test archive. A zero Type is a regular
// file; Mode defaults to 0755 for files and directories.
type TarEntry struct {
	Name     string
	Body     string
	Mode     int64
	Type     byte
	Linkname string
}

// BuildTarGz returns a gzip-compressed tar archive containing entries in order.
// Entry names are written verbatim, so traversal paths can be expressed.
func BuildTarGz(t *testing.T, entries []TarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		typ := e.Type
		if typ == 0 {
			typ = tar.TypeReg
		}
		mode := e.Mode
		if mode == 0 {
			mode = 0o755
		}

		hdr := &tar.Header{
			Name:     e.Name,
			Typeflag: typ,
			Mode:     mode,
			Linkname: e.Linkname,
			Format:   tar.FormatPAX,
		}
		if typ == tar.TypeReg {
			hdr.Size = int64(len(e.Body))
		}

		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %q: %v", e.Name, err)
		}
		if typ == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("write tar body %q: %v", e.Name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}

	return buf.Bytes()
}

// WriteTarGz writes BuildTarGz(entries) to path and returns path.
func WriteTarGz(t *testing.T, path string, entries []TarEntry) string {
	t.Helper()

	if err := os.WriteFile(path, BuildTarGz(t, entries), 0o600); err != nil {
		t.Fatalf("write archive %s: %v", path, err)
	}
	return path
}
