package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Tracker remembers the last journaled summary per ticker so restarts
// do not re-announce a recommendation that has not changed.
type Tracker struct {
	mu        sync.Mutex
	stateFile string
	summaries map[string]string
}

func NewTracker(stateFile string) (*Tracker, error) {
	t := &Tracker{
		stateFile: stateFile,
		summaries: make(map[string]string),
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) load() error {
	data, err := os.ReadFile(t.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading state file: %w", err)
	}
	if err := json.Unmarshal(data, &t.summaries); err != nil {
		return fmt.Errorf("parsing state file: %w", err)
	}
	return nil
}

// Changed reports whether summary differs from the last recorded one.
func (t *Tracker) Changed(ticker, summary string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summaries[ticker] != summary
}

// Record stores summary for ticker and persists the state file.
func (t *Tracker) Record(ticker, summary string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summaries[ticker] = summary

	data, err := json.MarshalIndent(t.summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if dir := filepath.Dir(t.stateFile); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}
	if err := os.WriteFile(t.stateFile, data, 0600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}
