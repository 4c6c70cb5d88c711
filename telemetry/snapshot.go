package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/swirl/fluid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a JSON dump of one published frame.
type Snapshot struct {
	Version    int       `json:"version"`
	Tick       uint64    `json:"tick"`
	SimTimeSec float64   `json:"sim_time_sec"`
	GridSize   int       `json:"grid_size"`
	Density    []float32 `json:"density"`
	VelX       []float32 `json:"vel_x"`
	VelY       []float32 `json:"vel_y"`
}

// NewSnapshot copies a frame into a snapshot.
func NewSnapshot(f fluid.Frame, simTime float64) *Snapshot {
	s := &Snapshot{
		Version:    SnapshotVersion,
		Tick:       f.Tick,
		SimTimeSec: simTime,
		GridSize:   f.N,
		Density:    append([]float32(nil), f.Density...),
		VelX:       make([]float32, len(f.Velocity)),
		VelY:       make([]float32, len(f.Velocity)),
	}
	for i, v := range f.Velocity {
		s.VelX[i] = v.X
		s.VelY[i] = v.Y
	}
	return s
}

// Frame rebuilds a detached frame from the snapshot.
func (s *Snapshot) Frame() (fluid.Frame, error) {
	cells := s.GridSize * s.GridSize
	if s.GridSize <= 0 || len(s.Density) != cells || len(s.VelX) != cells || len(s.VelY) != cells {
		return fluid.Frame{}, fmt.Errorf("snapshot: grid %d does not match field lengths", s.GridSize)
	}
	f := fluid.Frame{
		N:        s.GridSize,
		Tick:     s.Tick,
		Density:  append([]float32(nil), s.Density...),
		Velocity: make([]fluid.Vec2, cells),
	}
	for i := range f.Velocity {
		f.Velocity[i] = fluid.Vec2{X: s.VelX[i], Y: s.VelY[i]}
	}
	return f, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Tick))

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
