package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// resolveCollision returns a path in dstDir for name that does not clash
// with an existing file. Collisions get a numeric suffix: a.pdf, a_1.pdf,
// a_2.pdf, ...
func resolveCollision(dstDir, name string) string {
	dst := filepath.Join(dstDir, name)
	if _, err := os.Lstat(dst); err != nil {
		return dst
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		dst = filepath.Join(dstDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Lstat(dst); err != nil {
			return dst
		}
	}
}

// moveFile moves src into dstDir and returns the final destination path.
// Uses rename when possible, with a copy+remove fallback for cross-device
// moves. Never overwrites an existing file.
func moveFile(src, dstDir string) (string, error) {
	dst := resolveCollision(dstDir, filepath.Base(src))

	err := os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}

	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("%w: remove source after copy: %v", ErrMoveFailed, err)
	}
	return dst, nil
}

// restoreFile moves a sorted file back to its exact original path.
// Unlike moveFile there is no collision handling: the original path is
// expected to be free, and if something took it the error surfaces.
func restoreFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s already exists", ErrMoveFailed, dst)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}

	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("%w: remove source after copy: %v", ErrMoveFailed, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
