package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cleaner removes daily log files older than a retention period.
type Cleaner struct {
	baseDir       string
	retentionDays int
}

// NewCleaner creates a new Cleaner with the specified base directory and retention period.
func NewCleaner(baseDir string, retentionDays int) *Cleaner {
	return &Cleaner{baseDir: baseDir, retentionDays: retentionDays}
}

// Cleanup removes log files older than the retention period.
// Only files the Writer produces are considered. A missing directory is not an error.
// Returns the number of files deleted and any error encountered.
func (c *Cleaner) Cleanup() (int, error) {
	entries, err := os.ReadDir(c.baseDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	threshold := time.Now().AddDate(0, 0, -c.retentionDays)
	var deleted int

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // removed concurrently
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(filepath.Join(c.baseDir, name)); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}
