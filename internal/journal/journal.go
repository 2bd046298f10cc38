// Package journal persists the append-only trade log: one line per
// actionable recommendation, `[timestamp] <action-summary>`. The file
// is plain text so it can be tailed and grepped during a session.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// Journal appends to and reads back a single trade-log file. Appends
// are serialized; concurrent readers see complete lines only.
type Journal struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// New ensures the journal's directory exists and returns a handle. The
// file itself is created on first append.
func New(path string, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	return &Journal{
		path:   path,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Append writes one timestamped entry. Embedded newlines are flattened
// so an entry always occupies exactly one line.
func (j *Journal) Append(summary string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	flat := strings.Join(strings.Fields(summary), " ")
	line := fmt.Sprintf("[%s] %s\n", j.now().Format(timeLayout), flat)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing journal entry: %w", err)
	}

	j.logger.Debug("journal entry appended", zap.String("entry", flat))
	return nil
}

// Tail returns the last n entries, oldest first. A missing journal is
// an empty journal, not an error.
func (j *Journal) Tail(n int) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
