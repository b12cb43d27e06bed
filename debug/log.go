package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// sink lets loggers handed out before Enable start writing to the file
// once it is open.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *sink) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool

	out  = &sink{w: io.Discard}
	root = log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           log.DebugLevel,
	})
)

// DefaultPath is ~/.config/fractunes/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "fractunes", "debug.log")
}

// Enable starts debug logging to path (DefaultPath if empty).
// The terminal belongs to the TUI, so nothing is logged until this is called.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true
	out.set(f)

	root.WithPrefix("debug").Info("=== Debug logging started ===")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	out.set(io.Discard)
	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// SetOutput redirects all loggers to w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	out.set(w)
}

// For returns a structured logger prefixed with category.
func For(category string) *log.Logger {
	return root.WithPrefix(category)
}

// Log writes a printf-style debug message under category
func Log(category, format string, args ...any) {
	root.WithPrefix(category).Debug(fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// Diagnostic is one reported failure.
type Diagnostic struct {
	Key string
	Err error
	At  time.Time
}

var (
	diagMu      sync.Mutex
	diagSeen    = make(map[string]bool)
	diagnostics []Diagnostic
)

// Report records err under key and logs it. Only the first report for a
// key is kept; repeats are dropped. Reports true if this call recorded it.
func Report(key string, err error) bool {
	if err == nil {
		return false
	}
	diagMu.Lock()
	if diagSeen[key] {
		diagMu.Unlock()
		return false
	}
	diagSeen[key] = true
	diagnostics = append(diagnostics, Diagnostic{Key: key, Err: err, At: time.Now()})
	diagMu.Unlock()

	root.WithPrefix("diag").Error(key, "err", err)
	return true
}

// Forget allows key to be reported again. Mode and device changes call it
// so a fresh attempt that fails again is visible.
func Forget(key string) {
	diagMu.Lock()
	defer diagMu.Unlock()
	if !diagSeen[key] {
		return
	}
	delete(diagSeen, key)
	kept := diagnostics[:0]
	for _, d := range diagnostics {
		if d.Key != key {
			kept = append(kept, d)
		}
	}
	diagnostics = kept
}

// Diagnostics returns the recorded reports, oldest first.
func Diagnostics() []Diagnostic {
	diagMu.Lock()
	defer diagMu.Unlock()
	out := make([]Diagnostic, len(diagnostics))
	copy(out, diagnostics)
	return out
}
