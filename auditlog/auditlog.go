// Package auditlog records mutations performed on the X account in a JSONL file,
// so an agent can review what it has already done.
package auditlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultPath is the log file used when none is configured, relative to the working directory.
const DefaultPath = "x-interactions.jsonl"

const maxLineSize = 1 << 20

// Entry is one recorded mutation.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Action    string         `json:"action"`
	Summary   string         `json:"summary"`
	Details   map[string]any `json:"details"`
}

// Logger appends entries to a single file for its whole lifetime.
// Logging is best effort: I/O failures are swallowed and never reach the caller.
type Logger struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// New binds a Logger to path. An empty path selects DefaultPath.
func New(path string) *Logger {
	if path == "" {
		path = DefaultPath
	}
	return &Logger{path: path, now: time.Now}
}

// Path returns the bound file location.
func (l *Logger) Path() string {
	return l.path
}

// Log appends one entry stamped with the current time. It cannot fail observably.
func (l *Logger) Log(action, summary string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	line, err := json.Marshal(Entry{
		Timestamp: l.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Action:    action,
		Summary:   summary,
		Details:   details,
	})
	if err != nil {
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(line)
}

// Entries returns every readable entry in write order. A missing or unreadable file
// yields an empty slice; lines that fail to parse or exceed maxLineSize are skipped.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := []Entry{}
	f, err := os.Open(l.path)
	if err != nil {
		return entries
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		raw, readErr := r.ReadBytes('\n')
		if line := bytes.TrimSpace(raw); len(line) > 0 && len(line) <= maxLineSize {
			var e Entry
			if err := json.Unmarshal(line, &e); err == nil {
				entries = append(entries, e)
			}
		}
		if readErr != nil {
			break
		}
	}
	return entries
}

// Clear truncates the file. Errors are swallowed like in Log.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = os.WriteFile(l.path, nil, 0o644)
}

// Truncate shortens s to n runes, appending "..." when something was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
