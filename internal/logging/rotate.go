package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultPrefix        = "stock-advisor"
	defaultRetentionDays = 7
	fileDateLayout       = "2006-01-02"
)

// WriterOptions configures a DailyWriter.
type WriterOptions struct {
	Prefix        string
	RetentionDays int
	// Now is the clock used for file names; defaults to time.Now.
	Now func() time.Time
}

// DailyWriter appends to <dir>/<prefix>-YYYY-MM-DD.log, switching files when
// the local date changes and deleting files past the retention window.
type DailyWriter struct {
	dir       string
	prefix    string
	retention int
	now       func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

func NewDailyWriter(dir string, opts WriterOptions) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &DailyWriter{
		dir:       dir,
		prefix:    opts.Prefix,
		retention: opts.RetentionDays,
		now:       opts.Now,
	}
	if w.prefix == "" {
		w.prefix = defaultPrefix
	}
	if w.retention <= 0 {
		w.retention = defaultRetentionDays
	}
	if w.now == nil {
		w.now = time.Now
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.openFor(w.now()); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.openFor(w.now()); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

// Path returns the file currently written to.
func (w *DailyWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pathFor(w.day)
}

func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.day = ""
	return err
}

func (w *DailyWriter) pathFor(day string) string {
	return filepath.Join(w.dir, w.prefix+"-"+day+".log")
}

// openFor must be called with mu held.
func (w *DailyWriter) openFor(t time.Time) error {
	day := t.Format(fileDateLayout)
	if w.file != nil && day == w.day {
		return nil
	}
	file, err := os.OpenFile(w.pathFor(day), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	w.file = file
	w.day = day
	w.prune(t)
	return nil
}

func (w *DailyWriter) prune(t time.Time) {
	matches, err := filepath.Glob(filepath.Join(w.dir, w.prefix+"-*.log"))
	if err != nil {
		return
	}
	cutoff := t.AddDate(0, 0, -w.retention)
	for _, path := range matches {
		stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), w.prefix+"-"), ".log")
		day, err := time.ParseInLocation(fileDateLayout, stamp, t.Location())
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(path)
		}
	}
}
