// Package archive records session snapshots as zstd-compressed JSONL,
// one file per day and ticker, and reads them back for replay. Files
// are written to a .tmp path and renamed on close so a published day
// is always complete.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/chain"
)

// FileName is the per-ticker snapshot log inside a day directory.
const FileName = "chain.jsonl.zst"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Path returns <dir>/<date>/<ticker>/chain.jsonl.zst.
func Path(dir, date, ticker string) string {
	return filepath.Join(dir, date, ticker, FileName)
}

// Archive manages the writers for one recording session, lazily opened
// per (date, ticker).
type Archive struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	writers map[string]*Writer
}

func New(dir string, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{
		dir:     dir,
		logger:  logger,
		writers: make(map[string]*Writer),
	}
}

// Record appends one snapshot to the day's file for its ticker.
func (a *Archive) Record(date string, snap chain.Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := date + "/" + snap.Ticker
	w, ok := a.writers[key]
	if !ok {
		var err error
		w, err = NewWriter(a.dir, date, snap.Ticker)
		if err != nil {
			return err
		}
		a.writers[key] = w
		a.logger.Debug("archive file opened", zap.String("key", key))
	}
	return w.Record(snap)
}

// Close flushes and publishes every open file.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	for key, w := range a.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing archive %s: %w", key, err)
		}
		delete(a.writers, key)
	}
	return firstErr
}

// Writer streams snapshots for one day and ticker into a compressed
// JSONL file. Nothing is visible at the final path until Close.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *zstd.Encoder
	tmp  string
	path string
}

func NewWriter(dir, date, ticker string) (*Writer, error) {
	path := Path(dir, date, ticker)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	return &Writer{file: f, enc: enc, tmp: tmp, path: path}, nil
}

// Record appends one snapshot as a single JSON line.
func (w *Writer) Record(snap chain.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if _, err := w.enc.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Close flushes the stream and atomically renames the temp file into
// place.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.enc.Close()
	if closeErr := w.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(w.tmp)
		return fmt.Errorf("flushing archive: %w", err)
	}

	// Atomic rename
	if err := os.Rename(w.tmp, w.path); err != nil {
		_ = os.Remove(w.tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadDay loads every snapshot recorded for one day and ticker, in
// recording order.
func ReadDay(dir, date, ticker string) ([]chain.Snapshot, error) {
	f, err := os.Open(Path(dir, date, ticker))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	scanner := bufio.NewScanner(dec)

	// Increase buffer size for large lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	var snaps []chain.Snapshot
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var snap chain.Snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", lineNum, err)
		}
		snaps = append(snaps, snap)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return snaps, nil
}

// LatestDate scans the archive root for non-empty YYYY-MM-DD folders
// and returns the most recent one.
func LatestDate(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading archive directory: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !datePattern.MatchString(name) {
			continue
		}
		// Skip empty day folders
		subEntries, err := os.ReadDir(filepath.Join(dir, name))
		if err == nil && len(subEntries) > 0 {
			dates = append(dates, name)
		}
	}

	if len(dates) == 0 {
		return "", fmt.Errorf("no date folders found in %s", dir)
	}

	// YYYY-MM-DD sorts lexicographically
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates[0], nil
}

// Tickers lists the tickers with a published file for the given day.
func Tickers(dir, date string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, date))
	if err != nil {
		return nil, fmt.Errorf("reading day directory: %w", err)
	}

	var tickers []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(Path(dir, date, entry.Name())); err == nil {
			tickers = append(tickers, entry.Name())
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}
