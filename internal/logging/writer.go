package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FilePrefix is the name prefix shared by every log file the Writer creates.
const FilePrefix = "mrboard-"

// Writer is an io.Writer that appends to one log file per day under baseDir.
// Directory layout: baseDir/mrboard-YYYY-MM-DD.log
type Writer struct {
	baseDir string
	now     func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

// NewWriter creates a new Writer with the specified base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, now: time.Now}
}

// Path returns the log file path used for the day containing t.
func (w *Writer) Path(t time.Time) string {
	return filepath.Join(w.baseDir, FilePrefix+t.Format("2006-01-02")+".log")
}

// Write appends p to the current day's file, opening a new file when the
// date changes.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	day := now.Format("2006-01-02")
	if w.file == nil || day != w.day {
		if err := w.rotate(now); err != nil {
			return 0, err
		}
		w.day = day
	}

	return w.file.Write(p)
}

func (w *Writer) rotate(now time.Time) error {
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(w.Path(now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	w.file = f
	return nil
}

// Close closes the current log file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
