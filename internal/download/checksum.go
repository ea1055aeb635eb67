package download

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ChecksumError reports a post-download integrity mismatch. The file is
// left on disk for inspection or a retry.
type ChecksumError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("file corrupt: checksum of %s is %s, server declared %s", e.Path, e.Actual, e.Expected)
}

// MD5File computes the hex MD5 digest of the file at path, streaming in
// blocks.
func MD5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksumming: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MD5Matches reports whether the file's MD5 digest equals checksum.
// Comparison is case-insensitive hex equality.
func MD5Matches(path, checksum string) (bool, error) {
	actual, err := MD5File(path)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(actual, checksum), nil
}
