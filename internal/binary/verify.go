package binary

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Verifier checks archives against published SHA256 checksums.
type Verifier struct{}

// NewVerifier creates a new verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifySHA256 checks the file at archivePath against the entry for filename
// in checksums. checksums is either a bare "<hex>" (per-asset .sha256 file) or
// sha256sum output ("<hex>  <name>" per line).
func (v *Verifier) VerifySHA256(archivePath, filename string, checksums []byte) error {
	expected, err := findChecksum(checksums, filename)
	if err != nil {
		return err
	}

	actual, err := calculateSHA256(archivePath)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	// Compare checksums (case-insensitive)
	if !strings.EqualFold(actual, expected) {
		return &ChecksumError{Filename: filename, Expected: expected, Got: actual}
	}

	return nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for a specific filename in checksum data.
// Format: "abc123def456  filename.tar.gz", optionally "*filename" for binary
// mode, or a lone hash.
func findChecksum(data []byte, filename string) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var lone []string

	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		switch len(parts) {
		case 0:
			continue
		case 1:
			lone = append(lone, parts[0])
			continue
		}

		checksumFilename := strings.TrimPrefix(parts[1], "*")
		if checksumFilename == filename || filepath.Base(checksumFilename) == filename {
			return validHash(parts[0], filename)
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	if len(lone) == 1 {
		return validHash(lone[0], filename)
	}

	return "", fmt.Errorf("%w: %s", ErrChecksumMissing, filename)
}

func validHash(h, filename string) (string, error) {
	if len(h) != sha256.Size*2 {
		return "", fmt.Errorf("%w for %s", ErrMalformedChecksum, filename)
	}
	if _, err := hex.DecodeString(h); err != nil {
		return "", fmt.Errorf("%w for %s", ErrMalformedChecksum, filename)
	}
	return h, nil
}
