package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix = "modman_"
	fileSuffix = ".log"
)

// New creates a logger that writes to a timestamped file inside dir and
// prunes older log files so at most keep remain (keep <= 0 disables pruning).
// The returned closer should be closed when logging is no longer needed.
func New(dir string, keep int) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := filePrefix + time.Now().Format("20060102_150405") + fileSuffix
	filePath := filepath.Join(dir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	if keep > 0 {
		if err := Prune(dir, keep); err != nil {
			logger.Printf("pruning logs: %v", err)
		}
	}
	return logger, file, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// Prune removes all but the newest keep log files in dir. File names embed
// their timestamp, so lexical order is chronological order.
func Prune(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading logs directory: %w", err)
	}

	var logs []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			logs = append(logs, name)
		}
	}
	if len(logs) <= keep {
		return nil
	}

	sort.Strings(logs)
	for _, name := range logs[:len(logs)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}
