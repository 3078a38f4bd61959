// Package store persists completed runs. Each run gets its own directory
// under the base dir with a metadata.json and a trajectory.csv; the CSV
// column layout matches the measurement post-processing scripts
// (time, dof, velocity, ext_force, lenz_force, angles in degrees).
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/alessandroarduino/lenz-effect/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Horizon    float64            `json:"horizon"`
	Integrator string             `json:"integrator"`
	Rotational bool               `json:"rotational"`
	NoMagnet   bool               `json:"no_magnet"`
	Reason     string             `json:"reason"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one completed run and returns its ID.
func (s *Store) Save(meta RunMetadata, traj *sim.Trajectory) (string, error) {
	runID := fmt.Sprintf("%s_%s", meta.Scenario, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Reason = traj.Reason.String()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, traj, meta.Rotational); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads a saved trajectory back into SI units (radians for
// rotations, regardless of the degree columns on disk).
func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &sim.Trajectory{}, nil
	}

	traj := &sim.Trajectory{
		Times: make([]float64, 0, len(records)-1),
		Poses: make([]float64, 0, len(records)-1),
		Vels:  make([]float64, 0, len(records)-1),
		Drive: make([]float64, 0, len(records)-1),
		Drag:  make([]float64, 0, len(records)-1),
	}

	for _, record := range records[1:] {
		if len(record) != 5 {
			return nil, fmt.Errorf("store: malformed trajectory row in %s", runID)
		}
		vals := make([]float64, 5)
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("store: malformed trajectory row in %s: %v", runID, err)
			}
			vals[j] = v
		}
		q, v := vals[1], vals[2]
		if meta.Rotational {
			q = q * degToRad
			v = v * degToRad
		}
		traj.Times = append(traj.Times, vals[0])
		traj.Poses = append(traj.Poses, q)
		traj.Vels = append(traj.Vels, v)
		traj.Drive = append(traj.Drive, vals[3])
		traj.Drag = append(traj.Drag, vals[4])
	}
	return traj, nil
}
