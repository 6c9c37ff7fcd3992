// Package trace records pipeline state snapshots as an append-only event log
// and serves them to a polling viewer.
//
// A [Recorder] is shared between the turn-processing path, which appends one
// event per pipeline stage, and the HTTP serving path, which reads
// incrementally. One mutex guards the in-memory list and the on-disk append
// together so the two views never diverge.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one recorded observation of pipeline state at a stage boundary.
// Events are immutable once recorded; ids start at 1 and increase strictly.
type Event struct {
	ID        int64          `json:"id"`
	Timestamp float64        `json:"timestamp"`
	Stage     string         `json:"stage"`
	State     map[string]any `json:"state"`
}

// Recorder is the process-wide append-only trace log. The zero value is a
// disabled recorder whose Record is a no-op; use [NewRecorder] to enable.
type Recorder struct {
	enabled bool

	mu     sync.Mutex
	events []Event
	nextID int64
	file   *os.File
}

// NewRecorder returns an enabled recorder. When dir is non-empty, events are
// additionally appended to <dir>/trace.jsonl, which is created or truncated.
func NewRecorder(dir string) (*Recorder, error) {
	r := &Recorder{enabled: true, nextID: 1}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("trace: create output dir: %w", err)
		}
		path := filepath.Join(dir, "trace.jsonl")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("trace: open log file: %w", err)
		}
		r.file = f
	}
	return r, nil
}

// Enabled reports whether the recorder is capturing events.
func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled
}

// Record appends one event snapshotting state at the end of stage. It is a
// no-op on a disabled recorder, checked before any lock is taken. The state
// snapshot is produced by the total encoder in this package and can not fail;
// a file write failure loses the on-disk copy of that one event but never the
// in-memory one.
func (r *Recorder) Record(stage string, state map[string]any) {
	if !r.Enabled() {
		return
	}

	encoded := encodeState(state)

	r.mu.Lock()
	defer r.mu.Unlock()

	event := Event{
		ID:        r.nextID,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Stage:     stage,
		State:     encoded,
	}
	r.nextID++
	r.events = append(r.events, event)

	if r.file != nil {
		if line, err := json.Marshal(event); err == nil {
			r.file.Write(append(line, '\n'))
		}
	}
}

// EventsSince returns all events with id greater than lastID, in id order,
// and the id of the newest event. When nothing new exists the returned
// lastID is unchanged, so callers can pass it straight back on the next poll.
func (r *Recorder) EventsSince(lastID int64) ([]Event, int64) {
	if !r.Enabled() {
		return nil, lastID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.events) == 0 {
		return nil, lastID
	}
	var out []Event
	for _, e := range r.events {
		if e.ID > lastID {
			out = append(out, e)
		}
	}
	return out, r.events[len(r.events)-1].ID
}

// Close releases the on-disk log file, if any.
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}
