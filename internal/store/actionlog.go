package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// DefaultActionLogFile is the CSV file scheduler events are appended to
	DefaultActionLogFile = "shutdown_log.csv"

	timestampLayout     = "2006-01-02 15:04:05"
	scheduledTimeLayout = "03:04 PM"
	notApplicable       = "N/A"
)

var actionLogHeader = []string{"Timestamp", "Action", "Scheduled Time"}

// ErrActionLogWrite is reported on the diagnostic logger when a row cannot be written
var ErrActionLogWrite = errors.New("failed to write action log")

// LogEntry is one row of the action log
type LogEntry struct {
	Timestamp time.Time
	Action    string
	// ScheduledTime is the trigger instant at the time of the event; zero means none
	ScheduledTime time.Time
}

// Record is a LogEntry as read back from disk
type Record struct {
	Timestamp     string
	Action        string
	ScheduledTime string
}

// ActionLog is an append-only CSV record of scheduler events
type ActionLog struct {
	fs     afero.Fs
	path   string
	logger logrus.FieldLogger
	mu     sync.Mutex
}

// NewActionLog creates an action log writing to path
func NewActionLog(path string, opts ...StoreOption) *ActionLog {
	o := applyOptions(opts)
	return &ActionLog{
		fs:     o.fs,
		path:   path,
		logger: o.logger.WithField("log_file", path),
	}
}

// Append writes entry, creating the file with its header row first if needed.
// Write errors are logged and dropped.
func (l *ActionLog) Append(entry LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.append(entry); err != nil {
		l.logger.WithError(fmt.Errorf("%w: %w", ErrActionLogWrite, err)).
			WithField("action", entry.Action).
			Warn("Could not record scheduler action")
	}
}

func (l *ActionLog) append(entry LogEntry) error {
	exists, err := afero.Exists(l.fs, l.path)
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if !exists {
		if dir := filepath.Dir(l.path); dir != "." {
			if err := l.fs.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
	}

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(actionLogHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(formatEntry(entry)); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func formatEntry(entry LogEntry) []string {
	scheduled := notApplicable
	if !entry.ScheduledTime.IsZero() {
		scheduled = entry.ScheduledTime.Format(scheduledTimeLayout)
	}
	return []string{entry.Timestamp.Format(timestampLayout), entry.Action, scheduled}
}

// Entries reads every row after the header. A missing log has no entries.
func (l *ActionLog) Entries() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.fs.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(actionLogHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse log file: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 && row[0] == actionLogHeader[0] {
			continue
		}
		records = append(records, Record{Timestamp: row[0], Action: row[1], ScheduledTime: row[2]})
	}
	return records, nil
}
