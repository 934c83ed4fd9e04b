package core

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modman/internal/domain"
)

// extractBlockSize bounds the memory used per entry while streaming.
const extractBlockSize = 1 << 20

// extract7zTimeout is the maximum time allowed for 7z extraction (corrupted archives or hangs).
const extract7zTimeout = 5 * time.Minute

// Extractor handles archive extraction for mod files
type Extractor struct {
	sevenZip string // 7z binary used for .7z and .rar
}

// NewExtractor creates a new Extractor
func NewExtractor() *Extractor {
	return &Extractor{sevenZip: "7z"}
}

// archiveEntry is one eligible file inside an archive, independent of format.
type archiveEntry struct {
	name string // slash-separated path relative to the archive root
	size int64
	mode fs.FileMode
	open func() (io.ReadCloser, error)
}

// Extract unpacks archivePath into destDir and returns the slash-separated
// relative names of the files written. Directory entries and anything under a
// .disabled path segment are skipped. progressFn, if set, receives the
// cumulative percentage of bytes written across all eligible entries.
//
// An archive with no eligible entries yields an empty list and no error.
// The archive itself is never removed and partially written files are left
// in place on failure.
func (e *Extractor) Extract(archivePath, destDir string, progressFn func(float64)) ([]string, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArchive, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidArchive, archivePath)
	}
	format := e.DetectFormat(archivePath)
	if format == "" {
		return nil, fmt.Errorf("%w: unsupported archive format %q", domain.ErrInvalidArchive, filepath.Ext(archivePath))
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating destination directory: %w", domain.ErrExtractionFailed, err)
	}

	var names []string
	switch format {
	case "zip":
		names, err = e.extractZip(archivePath, destDir, progressFn)
	default:
		names, err = e.extract7z(archivePath, destDir, progressFn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return names, nil
}

// CanExtract returns true if the extractor can handle the given filename
func (e *Extractor) CanExtract(filename string) bool {
	return e.DetectFormat(filename) != ""
}

// DetectFormat returns the archive format based on filename extension
func (e *Extractor) DetectFormat(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".zip":
		return "zip"
	case ".7z":
		return "7z"
	case ".rar":
		return "rar"
	default:
		return ""
	}
}

// extractZip extracts a ZIP archive using Go's native archive/zip package
func (e *Extractor) extractZip(archivePath, destDir string, progressFn func(float64)) (names []string, err error) {
	// Non-local names are confined by normalizeEntryName, so ErrInsecurePath is not fatal.
	r, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing zip: %w", cerr)
		}
	}()

	var entries []archiveEntry
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !eligibleEntry(f.Name) || !f.Mode().IsRegular() {
			continue
		}
		entries = append(entries, archiveEntry{
			name: normalizeEntryName(f.Name),
			size: int64(f.UncompressedSize64),
			mode: f.Mode(),
			open: f.Open,
		})
	}

	return writeEntries(entries, destDir, progressFn)
}

// extract7z unpacks .7z and .rar archives with the system 7z command into a
// hidden staging directory, then streams the eligible files into destDir.
func (e *Extractor) extract7z(archivePath, destDir string, progressFn func(float64)) ([]string, error) {
	if _, err := exec.LookPath(e.sevenZip); err != nil {
		return nil, fmt.Errorf("7z command not found: install p7zip-full to extract .7z and .rar files")
	}

	stage, err := os.MkdirTemp(destDir, ".modman-extract-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	ctx, cancel := context.WithTimeout(context.Background(), extract7zTimeout)
	defer cancel()

	// -y: assume yes to all queries; -o: output directory (no space between -o and path)
	cmd := exec.CommandContext(ctx, e.sevenZip, "x", "-y", "-o"+stage, archivePath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("7z extraction timed out after %v", extract7zTimeout)
		}
		return nil, fmt.Errorf("7z extraction failed: %w\nOutput: %s", err, string(output))
	}

	var entries []archiveEntry
	err = filepath.WalkDir(stage, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(stage, p)
		if err != nil {
			return err
		}
		if !eligibleEntry(filepath.ToSlash(rel)) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, archiveEntry{
			name: normalizeEntryName(rel),
			size: info.Size(),
			mode: info.Mode(),
			open: func() (io.ReadCloser, error) { return os.Open(p) },
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning staged files: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	return writeEntries(entries, destDir, progressFn)
}

// writeEntries streams every entry into destDir in fixed-size blocks,
// reporting a single global percentage.
func writeEntries(entries []archiveEntry, destDir string, progressFn func(float64)) ([]string, error) {
	var total int64
	for _, ent := range entries {
		total += ent.size
	}

	names := make([]string, 0, len(entries))
	buf := make([]byte, extractBlockSize)
	var written int64
	report := func() {
		if progressFn == nil {
			return
		}
		if total <= 0 {
			progressFn(100)
			return
		}
		progressFn(min(float64(written)/float64(total)*100, 100))
	}

	for _, ent := range entries {
		destPath, err := sanitizePath(destDir, ent.name)
		if err != nil {
			return nil, err
		}
		n, err := writeEntry(ent, destPath, buf, func(n int) {
			written += int64(n)
			report()
		})
		if err != nil {
			return nil, err
		}
		if n == 0 {
			report()
		}
		names = append(names, ent.name)
	}

	return names, nil
}

func writeEntry(ent archiveEntry, destPath string, buf []byte, onBlock func(int)) (written int64, err error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", ent.name, err)
	}

	rc, err := ent.open()
	if err != nil {
		return 0, fmt.Errorf("opening file %s in archive: %w", ent.name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", ent.name, cerr)
		}
	}()

	perm := ent.mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	for {
		n, rerr := rc.Read(buf)
		if n > 0 {
			if _, werr := outFile.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("writing file %s: %w", destPath, werr)
			}
			written += int64(n)
			onBlock(n)
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("reading %s: %w", ent.name, rerr)
		}
	}
}

// eligibleEntry rejects directory markers and anything that would land in
// the disabled storage layout.
func eligibleEntry(name string) bool {
	if name == "" || strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`) {
		return false
	}
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == domain.DisabledDirName {
			return false
		}
	}
	return true
}

func normalizeEntryName(name string) string {
	name = strings.ReplaceAll(filepath.ToSlash(name), `\`, "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// sanitizePath ensures the extracted file path is within the destination directory
// This prevents "zip slip" attacks where malicious archives contain paths like "../../../etc/passwd"
func sanitizePath(destDir, filePath string) (string, error) {
	cleanPath := filepath.Clean(filepath.FromSlash(filePath))
	destPath := filepath.Join(destDir, cleanPath)

	if !strings.HasPrefix(filepath.Clean(destPath)+string(os.PathSeparator), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", filePath)
	}
	if filepath.Clean(destPath) == filepath.Clean(destDir) {
		return "", fmt.Errorf("entry %q resolves to the destination directory", filePath)
	}

	return destPath, nil
}
