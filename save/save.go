// Package save persists pet vitals and session totals as versioned JSON.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/rampet/pet"
)

// Version is incremented when the format changes.
const Version = 1

var (
	ErrNoPet              = errors.New("save: snapshot has no pet")
	ErrUnsupportedVersion = errors.New("save: unsupported snapshot version")
)

// Snapshot holds everything needed to resume a session.
type Snapshot struct {
	Version int      `json:"version"`
	Pet     *pet.Pet `json:"pet"`

	TotalMBEaten   int     `json:"total_mb_eaten"`
	FeedingCount   int     `json:"feeding_count"`
	MaxSizeReached int     `json:"max_size_reached"`
	PlayTimeSec    float64 `json:"play_time_sec"`

	SavedAt time.Time `json:"saved_at"`
}

// Write stores a snapshot at path, creating parent directories.
// The file is replaced atomically so a crash never leaves half a save.
func Write(path string, snap *Snapshot) error {
	if snap.Pet == nil {
		return ErrNoPet
	}
	if snap.Version == 0 {
		snap.Version = Version
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot from path.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	if snap.Pet == nil {
		return nil, ErrNoPet
	}
	return &snap, nil
}
