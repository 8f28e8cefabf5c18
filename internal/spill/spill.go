// Package spill keeps completed records the sink permanently rejected, as
// line-delimited JSON in a local file, so an operator can recover them
// instead of losing the whole submission.
package spill

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"casebot/internal/domain"
)

// record is the on-disk shape of one spilled submission.
type record struct {
	Timestamp   time.Time         `json:"timestamp"`
	Identity    int64             `json:"identity"`
	DisplayName string            `json:"display_name"`
	Answers     map[string]string `json:"answers"`
}

// FileRecorder appends spilled records to a single JSONL file. Safe for
// concurrent use.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

// NewFileRecorder creates a recorder writing to path. The file is created
// lazily on first append.
func NewFileRecorder(path string) (*FileRecorder, error) {
	if path == "" {
		return nil, errors.New("spill: path must not be empty")
	}
	return &FileRecorder{path: path}, nil
}

// Append writes one record as a JSON line.
func (r *FileRecorder) Append(rec domain.CompletedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("spill: open %s: %w", r.path, err)
	}
	defer f.Close()

	line := record{
		Timestamp:   time.Now().UTC(),
		Identity:    rec.Identity,
		DisplayName: rec.DisplayName,
		Answers:     rec.Answers,
	}
	if err := json.NewEncoder(f).Encode(line); err != nil {
		return fmt.Errorf("spill: encode record: %w", err)
	}
	return nil
}
