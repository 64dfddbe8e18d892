// Package fileutil provides byte-exact file copies. The pipeline re-encodes
// every image it writes, so archiving the untouched source bytes needs a
// plain copy with integrity verification.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst with 0o644 permissions, creating parent
// directories as needed.
func CopyFile(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create destination directory: %w", err)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileVerified copies src to dst and confirms size and SHA256 match.
// On mismatch dst is removed and an error returned.
func CopyFileVerified(src, dst string) error {
	if err := CopyFile(src, dst); err != nil {
		return err
	}

	srcSum, srcSize, err := digest(src)
	if err != nil {
		return err
	}
	dstSum, dstSize, err := digest(dst)
	if err != nil {
		return err
	}
	if srcSize != dstSize || !bytes.Equal(srcSum, dstSum) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy verification failed for %s", filepath.Base(dst))
	}
	return nil
}

func digest(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return nil, 0, fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	return hasher.Sum(nil), size, nil
}
