package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"modman/internal/domain"
)

const (
	defaultMaxAttempts = 3
	retryBaseDelay     = 200 * time.Millisecond
)

// DownloadProgress represents the current state of a download
type DownloadProgress struct {
	TotalBytes int64   // Total size in bytes (0 if unknown)
	Downloaded int64   // Bytes downloaded so far
	Percentage float64 // Completion percentage (0-100)
}

// DownloadProgressFunc is called periodically during download with progress updates
type DownloadProgressFunc func(DownloadProgress)

// DownloadResult contains the outcome of a download
type DownloadResult struct {
	Path string // Final file path
	Size int64  // Bytes downloaded
}

// Downloader handles HTTP file downloads with progress tracking
type Downloader struct {
	httpClient  *http.Client
	maxAttempts int
}

// NewDownloader creates a new Downloader with the given HTTP client
// If httpClient is nil, http.DefaultClient is used
func NewDownloader(httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{
		httpClient:  httpClient,
		maxAttempts: defaultMaxAttempts,
	}
}

// SetMaxAttempts sets how many times a download is tried before giving up.
// Values below 1 are treated as 1.
func (d *Downloader) SetMaxAttempts(n int) {
	d.maxAttempts = max(n, 1)
}

// statusError is a non-200 response.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "HTTP " + e.status
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}

// Download fetches a file from the URL and saves it to destPath, retrying
// transient failures. Cancellation and client errors are returned at once.
// Progress updates are sent to the optional progressFn callback; each retry
// starts again from zero.
func (d *Downloader) Download(ctx context.Context, url, destPath string, progressFn DownloadProgressFunc) (*DownloadResult, error) {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		result, err := d.downloadOnce(ctx, url, destPath, progressFn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) || attempt == d.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrDownloadFailed, ctx.Err())
		case <-time.After(retryBaseDelay * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrDownloadFailed, lastErr)
}

func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string, progressFn DownloadProgressFunc) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	// Create a temporary file first for atomic write
	tempPath := destPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		file.Close()
		os.Remove(tempPath) // Clean up temp file on error
	}()

	reader := &progressReader{
		reader:     resp.Body,
		totalBytes: resp.ContentLength,
		progressFn: progressFn,
	}

	written, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return nil, fmt.Errorf("short download: got %d of %d bytes", written, resp.ContentLength)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		return nil, fmt.Errorf("renaming file: %w", err)
	}

	return &DownloadResult{
		Path: destPath,
		Size: written,
	}, nil
}

// progressReader wraps an io.Reader to track download progress
type progressReader struct {
	reader     io.Reader
	totalBytes int64
	downloaded int64
	progressFn DownloadProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		if r.progressFn != nil {
			progress := DownloadProgress{
				TotalBytes: r.totalBytes,
				Downloaded: r.downloaded,
			}
			if r.totalBytes > 0 {
				progress.Percentage = float64(r.downloaded) / float64(r.totalBytes) * 100
			}
			r.progressFn(progress)
		}
	}
	return n, err
}
