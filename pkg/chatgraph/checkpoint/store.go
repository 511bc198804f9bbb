// Package checkpoint provides persistent snapshot storage for conversation
// turns. The executor saves a snapshot of the turn state after every node,
// so a crashed or interrupted turn can be inspected or replayed.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists turn snapshots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a snapshot for a turn at a specific node.
	// Overwrites if a snapshot for (runID, nodeID) already exists.
	Save(runID, nodeID string, data []byte) error

	// Load retrieves a snapshot.
	// Returns ErrNotFound if the snapshot doesn't exist.
	Load(runID, nodeID string) ([]byte, error)

	// List returns all snapshots for a turn, ordered by sequence.
	// Returns empty slice (not error) if the turn has no snapshots.
	List(runID string) ([]Info, error)

	// Delete removes a specific snapshot.
	// Returns nil if the snapshot doesn't exist.
	Delete(runID, nodeID string) error

	// DeleteRun removes all snapshots for a turn.
	// Returns nil if the turn has no snapshots.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides snapshot metadata without loading the full turn state.
type Info struct {
	RunID     string
	NodeID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
