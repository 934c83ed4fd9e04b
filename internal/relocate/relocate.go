package relocate

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"modman/internal/domain"
)

// Relocator moves a single file between directories
type Relocator interface {
	Relocate(src, dst string) error
}

// Mover relocates files with a rename, falling back to copy-then-delete when
// the rename fails (cross-device moves, locked files).
type Mover struct {
	rename func(oldpath, newpath string) error
	logger *log.Logger
}

// New creates a Mover. A nil logger discards fallback diagnostics.
func New(logger *log.Logger) *Mover {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Mover{rename: os.Rename, logger: logger}
}

// Relocate moves src to dst, replacing any file already at dst.
// It fails with domain.ErrRelocationFailed only when both the rename and the
// copy fallback fail. A copy whose source cannot be removed afterwards still
// counts as success.
func (m *Mover) Relocate(src, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if src == dst {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: creating destination dir: %w", domain.ErrRelocationFailed, err)
	}

	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		m.logger.Printf("relocate: removing existing %s: %v", dst, err)
	}

	renameErr := m.rename(src, dst)
	if renameErr == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: rename: %v; copy: %w", domain.ErrRelocationFailed, renameErr, err)
	}
	m.logger.Printf("relocate: rename %s failed (%v), copied instead", src, renameErr)

	if err := os.Remove(src); err != nil {
		m.logger.Printf("relocate: copied %s but could not remove source: %v", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("source %s is not a regular file", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("copying file: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("closing destination: %w", err)
	}

	return nil
}
