package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// ErrNoCheckpoint is returned when resuming without a saved scan.
var ErrNoCheckpoint = errors.New("no checkpoint found")

// Progress is the durable record of one scan. Completed holds only
// terminal outcomes keyed by work-item key; recording the same item
// twice keeps the first outcome so replays during resume are harmless.
type Progress struct {
	ScanID    string                       `json:"scan_id"`
	StartedAt time.Time                    `json:"started_at"`
	Pending   []contracts.WorkItem         `json:"pending"`
	Completed map[string]contracts.Outcome `json:"completed"`
}

// NewProgress starts a fresh record over the full work list.
func NewProgress(scanID string, items []contracts.WorkItem) *Progress {
	return &Progress{
		ScanID:    scanID,
		StartedAt: time.Now(),
		Pending:   items,
		Completed: make(map[string]contracts.Outcome),
	}
}

// Record stores a terminal outcome. Idempotent: the first outcome per
// key wins.
func (p *Progress) Record(item contracts.WorkItem, out contracts.Outcome) {
	key := item.Key()
	if _, done := p.Completed[key]; done {
		return
	}
	p.Completed[key] = out
}

// Remaining returns the pending items that have no recorded outcome.
func (p *Progress) Remaining() []contracts.WorkItem {
	var out []contracts.WorkItem
	for _, item := range p.Pending {
		if _, done := p.Completed[item.Key()]; !done {
			out = append(out, item)
		}
	}
	return out
}

// Done reports whether every pending item has a terminal outcome.
func (p *Progress) Done() bool {
	return len(p.Remaining()) == 0
}

// Checkpoint persists Progress as a single JSON file with atomic
// replacement, so a crash mid-save leaves the previous checkpoint
// intact.
type Checkpoint struct {
	path string
}

// NewCheckpoint stores under dir/scan_checkpoint.json.
func NewCheckpoint(dir string) (*Checkpoint, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &Checkpoint{path: filepath.Join(dir, "scan_checkpoint.json")}, nil
}

// Save writes the progress via temp file and rename.
func (c *Checkpoint) Save(p *Progress) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp checkpoint: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

// Load reads the saved progress, or ErrNoCheckpoint when absent.
func (c *Checkpoint) Load() (*Progress, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCheckpoint
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	if p.Completed == nil {
		p.Completed = make(map[string]contracts.Outcome)
	}
	return &p, nil
}

// Archive renames the checkpoint to a scan-stamped name so a finished
// scan is kept for inspection but never resumed.
func (c *Checkpoint) Archive(scanID string) error {
	dest := filepath.Join(filepath.Dir(c.path), fmt.Sprintf("scan_%s.json", scanID))
	if err := os.Rename(c.path, dest); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("archive checkpoint: %w", err)
	}
	return nil
}
